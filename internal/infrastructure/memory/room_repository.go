package memory

import (
	"context"
	"sort"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

// RoomRepository は客室カタログのメモリ実装
type RoomRepository struct {
	store *Store
}

var _ room.Repository = (*RoomRepository)(nil)

func NewRoomRepository(store *Store) *RoomRepository {
	return &RoomRepository{store: store}
}

func (r *RoomRepository) Create(ctx context.Context, rm *room.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.checkWritable(rm); err != nil {
		return err
	}
	r.store.roomSeq++
	rm.ID = r.store.roomSeq
	r.store.rooms[rm.ID] = *rm
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*room.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rm, ok := r.store.rooms[id]
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	return &rm, nil
}

func (r *RoomRepository) List(ctx context.Context, f room.Filter) ([]*room.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	result := make([]*room.Room, 0, len(r.store.rooms))
	for _, rm := range r.store.rooms {
		if !f.Accepts(&rm) {
			continue
		}
		rm := rm
		result = append(result, &rm)
	}
	r.store.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *RoomRepository) Update(ctx context.Context, rm *room.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.rooms[rm.ID]; !ok {
		return room.ErrRoomNotFound
	}
	if err := r.checkWritable(rm); err != nil {
		return err
	}
	r.store.rooms[rm.ID] = *rm
	return nil
}

// checkWritable は客室タイプの存在と部屋番号の一意性を確認する（ロック取得済みで呼ぶ）
func (r *RoomRepository) checkWritable(rm *room.Room) error {
	if _, ok := r.store.roomTypes[rm.TypeID]; !ok {
		return room.ErrRoomTypeNotFound
	}
	if rm.IsDeleted() {
		return nil
	}
	for id, other := range r.store.rooms {
		if id != rm.ID && !other.IsDeleted() && other.Number == rm.Number {
			return room.ErrRoomNumberAlreadyExists
		}
	}
	return nil
}

func (r *RoomRepository) ListTypes(ctx context.Context) ([]*room.RoomType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	result := make([]*room.RoomType, 0, len(r.store.roomTypes))
	for _, rt := range r.store.roomTypes {
		rt := rt
		result = append(result, &rt)
	}
	r.store.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *RoomRepository) GetTypeByID(ctx context.Context, id int64) (*room.RoomType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rt, ok := r.store.roomTypes[id]
	if !ok {
		return nil, room.ErrRoomTypeNotFound
	}
	return &rt, nil
}
