package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/saske7779/Web-app-granja/internal/config"
	"github.com/saske7779/Web-app-granja/internal/storage"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var log = config.InitLogger()

const queryTimeout = 10 * time.Second

// Store implements storage.Store on Postgres. Per-account exclusion comes
// from "select ... for update" row locks taken inside Atomic.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.db.Beginx()
	if err != nil {
		log.Error("Failed to begin transaction: ", err)
		return err
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		if er := tx.Rollback(); er != nil {
			log.Error("Failed to rollback transaction: ", er)
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

// pgTx is the storage.Tx handle bound to one sqlx transaction.
type pgTx struct {
	tx *sqlx.Tx
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
