package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/transaction"
)

var ErrInvalidTx = errors.New("PostgreSQL用のトランザクションではありません")

// pgTx は sqlx.Tx を transaction.Tx として扱う
// Commit 後の Rollback は何もしない
type pgTx struct {
	tx   *sqlx.Tx
	done bool
}

func (t *pgTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗しました: %w", err)
	}
	t.done = true
	return nil
}

func (t *pgTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("ロールバックに失敗しました: %w", err)
	}
	return nil
}

// TxManager は READ COMMITTED でトランザクションを開始する
type TxManager struct {
	db *sqlx.DB
}

var _ transaction.Manager = (*TxManager)(nil)

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
func UnwrapTx(tx transaction.Tx) (*sqlx.Tx, error) {
	if t, ok := tx.(*pgTx); ok && t != nil {
		return t.tx, nil
	}
	return nil, ErrInvalidTx
}
