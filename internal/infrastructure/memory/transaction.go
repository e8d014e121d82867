package memory

import (
	"context"
	"errors"
	"maps"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/transaction"
)

var (
	ErrTxDone    = errors.New("トランザクションは既に終了しています")
	ErrInvalidTx = errors.New("メモリストア用のトランザクションではありません")
)

// Tx は予約の書き込みをコミットまで保留するトランザクション
type Tx struct {
	store *Store
	ops   []func(bookings map[int64]booking.Booking) error
	done  bool
}

// Commit は保留中の書き込みをまとめて適用する
// 途中で失敗した場合はコミット前の状態に戻す
func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	snapshot := maps.Clone(t.store.bookings)
	for _, op := range t.ops {
		if err := op(t.store.bookings); err != nil {
			t.store.bookings = snapshot
			return err
		}
	}
	return nil
}

// Rollback は保留中の書き込みを破棄する
func (t *Tx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.ops = nil
	return nil
}

func (t *Tx) stage(op func(bookings map[int64]booking.Booking) error) error {
	if t.done {
		return ErrTxDone
	}
	t.ops = append(t.ops, op)
	return nil
}

// TxManager はメモリストアのトランザクションを管理する
type TxManager struct {
	store *Store
}

var _ transaction.Manager = (*TxManager)(nil)

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin は新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store}, nil
}

func unwrapTx(tx transaction.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, ErrInvalidTx
	}
	return t, nil
}
