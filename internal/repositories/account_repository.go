package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
)

func (s *Store) CreateAccount(ctx context.Context, acc *models.Account) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}

	tx, err := s.db.Beginx()
	if err != nil {
		log.Error("Failed to begin transaction: ", err)
		return err
	}
	query, args, err := tx.BindNamed(
		`insert into account (telegram_id, username, first_name, last_name, balance, referral_code, referred_by, banned, daily_referral_income, created_at)
		 values (:telegram_id, :username, :first_name, :last_name, :balance, :referral_code, :referred_by, :banned, :daily_referral_income, :created_at)
		 returning id`,
		acc,
	)
	if err != nil {
		log.Error("Failed insert account ", err)
		if er := tx.Rollback(); er != nil {
			log.Error("Failed to rollback transaction: ", er)
		}
		return err
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&acc.Id); err != nil {
		log.Error("Failed save account ", err)
		if er := tx.Rollback(); er != nil {
			log.Error("Failed to rollback transaction: ", er)
		}
		if isUniqueViolation(err) {
			return models.ErrAccountExists
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction")
		if er := tx.Rollback(); er != nil {
			log.Error("Failed to rollback transaction: ", er)
			return er
		}
		return err
	}

	return nil
}

func (s *Store) AccountById(ctx context.Context, id int64) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc models.Account
	if err := s.db.GetContext(ctx, &acc, "select * from account where id=$1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (s *Store) AccountByTelegramId(ctx context.Context, telegramId int64) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc models.Account
	if err := s.db.GetContext(ctx, &acc, "select * from account where telegram_id=$1", telegramId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (s *Store) AccountByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc models.Account
	if err := s.db.GetContext(ctx, &acc, "select * from account where referral_code=$1", code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (s *Store) AccountIds(ctx context.Context, includeBanned bool) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ids := make([]int64, 0)
	query := "select id from account order by id"
	if !includeBanned {
		query = "select id from account where banned = false order by id"
	}
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		log.Error("Failed to list account ids ", err)
		return nil, err
	}
	return ids, nil
}

func (s *Store) CountAccounts(ctx context.Context) (int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var res struct {
		Total  int `db:"total"`
		Banned int `db:"banned"`
	}
	err := s.db.GetContext(ctx, &res,
		"select count(*) as total, count(*) filter (where banned) as banned from account")
	if err != nil {
		return 0, 0, err
	}
	return res.Total, res.Banned, nil
}

func (t *pgTx) LockAccount(ctx context.Context, id int64) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc models.Account
	if err := t.tx.GetContext(ctx, &acc, "select * from account where id=$1 for update", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (t *pgTx) UpdateAccount(ctx context.Context, acc *models.Account) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := t.tx.NamedExecContext(
		ctx,
		`update account
		 set username = :username,
		     first_name = :first_name,
		     last_name = :last_name,
		     balance = :balance,
		     referral_code = :referral_code,
		     referred_by = :referred_by,
		     banned = :banned,
		     daily_referral_income = :daily_referral_income
		 where id = :id`,
		acc,
	)
	if err != nil {
		log.Error("Failed update account: ", err)
		return err
	}
	return nil
}
