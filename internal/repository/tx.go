package repository

import (
	"context"
	"errors"
	"log"
)

// TxManager wraps multi-repository units of work in one pgx transaction.
// Balance, level and streak mutations plus their ledger appends must land
// together or not at all, and the row locks taken inside fn serialize
// concurrent flows touching the same user.
type TxManager struct {
	conn PgConnection
}

func NewTxManager(conn PgConnection) *TxManager {
	if conn == nil {
		log.Fatal("on tx manager provided nil connection")
	}
	return &TxManager{conn: conn}
}

func (tm *TxManager) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := tm.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.New("committing tx error: " + err.Error())
	}
	return nil
}
