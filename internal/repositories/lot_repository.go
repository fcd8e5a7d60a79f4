package repositories

import (
	"context"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
)

type typeTotal struct {
	Type  models.AssetType `db:"type"`
	Total int              `db:"total"`
}

func (s *Store) ActiveQuantities(ctx context.Context, accountId int64, now time.Time) (map[models.AssetType]int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows []typeTotal
	err := s.db.SelectContext(ctx, &rows,
		`select type, coalesce(sum(quantity), 0) as total
		 from asset_lot
		 where account_id=$1 and quantity > 0 and expires_at > $2
		 group by type`,
		accountId, now)
	if err != nil {
		log.Error("Failed to sum active lots ", err)
		return nil, err
	}
	return quantitiesFromRows(rows), nil
}

func (t *pgTx) ActiveQuantities(ctx context.Context, accountId int64, now time.Time) (map[models.AssetType]int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows []typeTotal
	err := t.tx.SelectContext(ctx, &rows,
		`select type, coalesce(sum(quantity), 0) as total
		 from asset_lot
		 where account_id=$1 and quantity > 0 and expires_at > $2
		 group by type`,
		accountId, now)
	if err != nil {
		return nil, err
	}
	return quantitiesFromRows(rows), nil
}

func quantitiesFromRows(rows []typeTotal) map[models.AssetType]int {
	q := make(map[models.AssetType]int)
	for _, at := range models.AssetTypes() {
		q[at] = 0
	}
	for _, r := range rows {
		q[r.Type] = r.Total
	}
	return q
}

func (t *pgTx) InsertLot(ctx context.Context, lot *models.AssetLot) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if lot.PurchasedAt.IsZero() {
		lot.PurchasedAt = time.Now()
	}

	query, args, err := t.tx.BindNamed(
		`insert into asset_lot (account_id, type, quantity, purchased_at, expires_at)
		 values (:account_id, :type, :quantity, :purchased_at, :expires_at)
		 returning id`,
		lot,
	)
	if err != nil {
		log.Error("Failed insert lot ", err)
		return err
	}
	if err := t.tx.QueryRowxContext(ctx, query, args...).Scan(&lot.Id); err != nil {
		log.Error("Failed save lot ", err)
		return err
	}
	return nil
}

func (t *pgTx) DecrementLotQuantity(ctx context.Context, accountId int64, at models.AssetType, quantity int, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var lots []models.AssetLot
	err := t.tx.SelectContext(ctx, &lots,
		`select * from asset_lot
		 where account_id=$1 and type=$2 and quantity > 0 and expires_at > $3
		 order by purchased_at
		 for update`,
		accountId, at, now)
	if err != nil {
		return err
	}

	remaining := quantity
	for i := range lots {
		if remaining == 0 {
			break
		}
		take := lots[i].Quantity
		if take > remaining {
			take = remaining
		}
		_, err := t.tx.ExecContext(ctx,
			"update asset_lot set quantity = quantity - $1 where id=$2",
			take, lots[i].Id.Int64)
		if err != nil {
			return err
		}
		remaining -= take
	}
	if remaining > 0 {
		return models.ErrInsufficientQuantity
	}
	return nil
}

func (t *pgTx) DeleteLots(ctx context.Context, accountId int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := t.tx.ExecContext(ctx, "delete from asset_lot where account_id=$1", accountId); err != nil {
		log.Error("Failed delete lots ", err)
		return err
	}
	return nil
}

func (s *Store) PurgeExpiredLots(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, "delete from asset_lot where expires_at <= $1", now)
	if err != nil {
		log.Error("Failed to purge expired lots ", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
