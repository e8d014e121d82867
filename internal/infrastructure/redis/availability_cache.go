package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

const availabilityVersionKey = "availability:version"

// AvailabilityCache は空室検索結果のキャッシュ
// キーに台帳のバージョンを含めるため、Invalidate 後は古い結果を参照しない
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

type cachedRoom struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Description   string          `json:"description"`
	TypeID        int64           `json:"type_id"`
	MaxCapacity   int             `json:"max_capacity"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Status        room.Status     `json:"status"`
}

// Version は現在のキャッシュバージョンを返す。未設定なら0
func (c *AvailabilityCache) Version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, availabilityVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("キャッシュバージョンの取得に失敗: %w", err)
	}
	return version, nil
}

// GetAvailableRooms は version で保存された空室一覧を返す。見つからない場合は ok=false
func (c *AvailabilityCache) GetAvailableRooms(ctx context.Context, version int64, key string) ([]*room.Room, bool, error) {
	raw, err := c.client.Get(ctx, versionedKey(version, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var cached []cachedRoom
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	rooms := make([]*room.Room, 0, len(cached))
	for _, cr := range cached {
		rooms = append(rooms, &room.Room{
			ID:            cr.ID,
			Number:        cr.Number,
			Description:   cr.Description,
			TypeID:        cr.TypeID,
			MaxCapacity:   cr.MaxCapacity,
			PricePerNight: cr.PricePerNight,
			Status:        cr.Status,
		})
	}
	return rooms, true, nil
}

// SetAvailableRooms は空室一覧を version のキーに保存する
// 読み取り後に Invalidate されていれば、古いバージョンのキーに書かれるため参照されない
func (c *AvailabilityCache) SetAvailableRooms(ctx context.Context, version int64, key string, rooms []*room.Room) error {
	cached := make([]cachedRoom, 0, len(rooms))
	for _, r := range rooms {
		cached = append(cached, cachedRoom{
			ID:            r.ID,
			Number:        r.Number,
			Description:   r.Description,
			TypeID:        r.TypeID,
			MaxCapacity:   r.MaxCapacity,
			PricePerNight: r.PricePerNight,
			Status:        r.Status,
		})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("キャッシュのシリアライズに失敗: %w", err)
	}
	if err := c.client.Set(ctx, versionedKey(version, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は台帳のバージョンを進め、既存のキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, availabilityVersionKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func versionedKey(version int64, key string) string {
	return fmt.Sprintf("availability:v%d:%s", version, key)
}
