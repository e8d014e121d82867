package lock

import (
	"context"
	"errors"
	"fmt"
)

// ロック操作のエラー定義
var (
	ErrNotAcquired = errors.New("ロックを取得できませんでした")
	ErrNotOwned    = errors.New("ロックの所有者ではありません")
)

// Lock は取得済みのロックを表す
type Lock interface {
	Release(ctx context.Context) error
}

// Manager はキー単位の排他ロックを提供するインターフェース
// Acquire は設定された待ち時間内に取得できなければ ErrNotAcquired を返す
type Manager interface {
	Acquire(ctx context.Context, key string) (Lock, error)
}

// RoomKey は客室ロックのキーを返す
func RoomKey(roomID int64) string {
	return fmt.Sprintf("room:%d", roomID)
}
