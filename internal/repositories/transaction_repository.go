package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
)

func (t *pgTx) InsertTransaction(ctx context.Context, tr *models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = time.Now()
	}

	query, args, err := t.tx.BindNamed(
		`insert into transactions (account_id, amount, kind, status, wallet_address, network, created_at)
		 values (:account_id, :amount, :kind, :status, :wallet_address, :network, :created_at)
		 returning id`,
		tr,
	)
	if err != nil {
		log.Error("Failed insert transaction ", err)
		return err
	}
	if err := t.tx.QueryRowxContext(ctx, query, args...).Scan(&tr.Id); err != nil {
		log.Error("Failed save transaction ", err)
		return err
	}
	return nil
}

func (t *pgTx) TransactionById(ctx context.Context, id int64) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var tr models.Transaction
	if err := t.tx.GetContext(ctx, &tr, "select * from transactions where id=$1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tr, nil
}

func (s *Store) TransactionById(ctx context.Context, id int64) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var tr models.Transaction
	if err := s.db.GetContext(ctx, &tr, "select * from transactions where id=$1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tr, nil
}

func (t *pgTx) TransitionStatus(ctx context.Context, txId int64, from, to models.TxStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := t.tx.ExecContext(ctx,
		"update transactions set status=$1 where id=$2 and status=$3",
		to, txId, from)
	if err != nil {
		log.Error("Failed transition transaction status ", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *pgTx) SumApprovedDeposits(ctx context.Context, accountId int64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sum float64
	err := t.tx.GetContext(ctx, &sum,
		"select coalesce(sum(amount), 0) from transactions where account_id=$1 and kind=$2 and status=$3",
		accountId, models.TxDeposit, models.StatusApproved)
	if err != nil {
		return 0, err
	}
	return sum, nil
}

func (t *pgTx) HasPendingWithdrawal(ctx context.Context, accountId int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	err := t.tx.GetContext(ctx, &exists,
		"select exists(select 1 from transactions where account_id=$1 and kind=$2 and status=$3)",
		accountId, models.TxWithdrawal, models.StatusPending)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) ListTransactions(ctx context.Context, accountId int64, limit int) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	trs := make([]models.Transaction, 0)
	err := s.db.SelectContext(ctx, &trs,
		"select * from transactions where account_id=$1 order by created_at desc, id desc limit $2",
		accountId, limit)
	if err != nil {
		log.Error("Failed to list transactions ", err)
		return nil, err
	}
	return trs, nil
}

func (s *Store) TotalApprovedDeposits(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sum float64
	err := s.db.GetContext(ctx, &sum,
		"select coalesce(sum(amount), 0) from transactions where kind=$1 and status=$2",
		models.TxDeposit, models.StatusApproved)
	if err != nil {
		return 0, err
	}
	return sum, nil
}

func (s *Store) BeginDistribution(ctx context.Context, period string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		"insert into distribution_run (period) values ($1) on conflict (period) do nothing",
		period)
	if err != nil {
		log.Error("Failed to claim distribution run ", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
