package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/logger"
)

type RoomService struct {
	roomRepo room.Repository
	cache    AvailabilityCache
}

// NewRoomService は RoomService を作成する（cache は nil でもよい）
func NewRoomService(rr room.Repository, cache AvailabilityCache) *RoomService {
	return &RoomService{roomRepo: rr, cache: cache}
}

type CreateRoomInput struct {
	Number        string
	Description   string
	TypeID        int64
	MaxCapacity   int
	PricePerNight decimal.Decimal
}

func (s *RoomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*room.Room, error) {
	r := room.NewRoom(input.Number, input.Description, input.TypeID, input.MaxCapacity, input.PricePerNight)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.roomRepo.GetTypeByID(ctx, r.TypeID); err != nil {
		return nil, err
	}
	if err := s.roomRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return r, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id int64) (*room.Room, error) {
	return s.roomRepo.GetByID(ctx, id)
}

// ListRooms は削除済み以外の客室を検索する
func (s *RoomService) ListRooms(ctx context.Context, f room.Filter) ([]*room.Room, error) {
	return s.roomRepo.List(ctx, f)
}

func (s *RoomService) ListRoomTypes(ctx context.Context) ([]*room.RoomType, error) {
	return s.roomRepo.ListTypes(ctx)
}

type UpdateRoomInput struct {
	ID            int64
	Number        string
	Description   string
	TypeID        int64
	MaxCapacity   int
	PricePerNight decimal.Decimal
	Status        room.Status
}

// UpdateRoom は客室を更新する。削除済みの客室は更新できない
func (s *RoomService) UpdateRoom(ctx context.Context, input UpdateRoomInput) (*room.Room, error) {
	r, err := s.roomRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if r.IsDeleted() {
		return nil, room.ErrRoomNotFound
	}
	r.Number = input.Number
	r.Description = input.Description
	r.TypeID = input.TypeID
	r.MaxCapacity = input.MaxCapacity
	r.PricePerNight = input.PricePerNight
	if input.Status != "" {
		r.Status = input.Status
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.roomRepo.GetTypeByID(ctx, r.TypeID); err != nil {
		return nil, err
	}
	if err := s.roomRepo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("客室更新に失敗しました: %w", err)
	}
	s.invalidate(ctx)
	return r, nil
}

// DeleteRoom は客室を論理削除する
func (s *RoomService) DeleteRoom(ctx context.Context, id int64) error {
	r, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.IsDeleted() {
		return room.ErrRoomNotFound
	}
	r.Delete()
	if err := s.roomRepo.Update(ctx, r); err != nil {
		return fmt.Errorf("客室削除に失敗しました: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("空室キャッシュ無効化エラー", zap.Error(err))
	}
}
