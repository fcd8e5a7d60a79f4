package repositories

import (
	"context"

	"github.com/saske7779/Web-app-granja/internal/models"
)

func (t *pgTx) InsertReferralEdge(ctx context.Context, edge *models.ReferralEdge) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := t.tx.BindNamed(
		`insert into referral_edge (referrer_id, referred_id, earned)
		 values (:referrer_id, :referred_id, :earned)
		 returning id`,
		edge,
	)
	if err != nil {
		log.Error("Failed insert referral edge ", err)
		return err
	}
	if err := t.tx.QueryRowxContext(ctx, query, args...).Scan(&edge.Id); err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateReferral
		}
		log.Error("Failed save referral edge ", err)
		return err
	}
	return nil
}

func (t *pgTx) HasReferralEdgeFor(ctx context.Context, referredId int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	err := t.tx.GetContext(ctx, &exists,
		"select exists(select 1 from referral_edge where referred_id=$1)", referredId)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (t *pgTx) ReferralCount(ctx context.Context, referrerId int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	err := t.tx.GetContext(ctx, &count,
		"select count(*) from referral_edge where referrer_id=$1", referrerId)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ReferralCount(ctx context.Context, referrerId int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	err := s.db.GetContext(ctx, &count,
		"select count(*) from referral_edge where referrer_id=$1", referrerId)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ReferralEarnings(ctx context.Context, referrerId int64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sum float64
	err := s.db.GetContext(ctx, &sum,
		"select coalesce(sum(earned), 0) from referral_edge where referrer_id=$1", referrerId)
	if err != nil {
		return 0, err
	}
	return sum, nil
}

func (t *pgTx) AddEdgeEarned(ctx context.Context, referrerId, referredId int64, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := t.tx.ExecContext(ctx,
		"update referral_edge set earned = earned + $1 where referrer_id=$2 and referred_id=$3",
		amount, referrerId, referredId)
	if err != nil {
		log.Error("Failed update referral earnings ", err)
		return err
	}
	return nil
}

func (t *pgTx) DeleteEdgesFor(ctx context.Context, accountId int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := t.tx.ExecContext(ctx,
		"delete from referral_edge where referrer_id=$1 or referred_id=$1", accountId)
	if err != nil {
		log.Error("Failed delete referral edges ", err)
		return err
	}
	return nil
}
