package postgres

import (
	"context"
	"errors"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager implements domain.TxManager on a pgx pool.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

func (m *TxManager) BeginTx(ctx context.Context) (domain.Tx, error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: tx}, nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// pgxFrom unwraps the pgx transaction behind a domain.Tx handle.
func pgxFrom(tx domain.Tx) (pgx.Tx, error) {
	t, ok := tx.(*pgxTx)
	if !ok {
		return nil, errors.New("postgres: transaction was not started by this package")
	}
	return t.tx, nil
}
