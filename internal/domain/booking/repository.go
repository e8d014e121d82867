package booking

import (
	"context"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/transaction"
)

// Query は予約一覧の検索条件
// Within を指定した場合、期間内に完全に収まる予約のみを返す
type Query struct {
	CustomerID       int64
	RoomID           int64
	Within           *DateRange
	IncludeCancelled bool
	Limit            int
	Offset           int
}

// Repository は予約台帳のインターフェース
type Repository interface {
	// Create は新しい予約を登録し、採番したIDを設定する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する（キャンセル済みも含む）
	GetByID(ctx context.Context, id int64) (*Booking, error)

	// List は条件に一致する予約一覧をチェックイン日順に取得する
	List(ctx context.Context, q Query) ([]*Booking, error)

	// FindOverlapping は期間が重なる有効な予約を取得する
	// roomID が0の場合は全客室、excludeID が0でない場合はそのIDを除外する
	FindOverlapping(ctx context.Context, roomID int64, stay DateRange, excludeID int64) ([]*Booking, error)
}
