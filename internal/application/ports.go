package application

import (
	"context"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

// AvailabilityCache は空室検索結果のキャッシュ
// 結果はバージョンごとに保存され、Invalidate でバージョンが進む。
// 1回の検索では Version を一度だけ読み、その値で Get と Set を行う
type AvailabilityCache interface {
	Version(ctx context.Context) (int64, error)
	GetAvailableRooms(ctx context.Context, version int64, key string) ([]*room.Room, bool, error)
	SetAvailableRooms(ctx context.Context, version int64, key string, rooms []*room.Room) error
	Invalidate(ctx context.Context) error
}

// EventPublisher は予約イベントの配信先
type EventPublisher interface {
	Publish(ctx context.Context, ev booking.Event) error
}
