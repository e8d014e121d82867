package application

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

// OccupancyStats は本日時点の稼働状況
type OccupancyStats struct {
	Date           time.Time
	TotalRooms     int
	OccupiedRooms  int
	OccupancyRate  float64
	ActiveBookings int
	TotalRevenue   decimal.Decimal
}

type StatsService struct {
	roomRepo    room.Repository
	bookingRepo booking.Repository
	now         func() time.Time
}

func NewStatsService(rr room.Repository, br booking.Repository, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{roomRepo: rr, bookingRepo: br, now: now}
}

// Occupancy は予約可能な客室のうち本日宿泊中の割合（%）と有効な予約の合計金額を返す
func (s *StatsService) Occupancy(ctx context.Context) (*OccupancyStats, error) {
	today := booking.TruncateToDate(s.now())
	tonight := booking.DateRange{CheckIn: today, CheckOut: today.AddDate(0, 0, 1)}

	rooms, err := s.roomRepo.List(ctx, room.ActiveOnly())
	if err != nil {
		return nil, booking.NewStorageError("room.list", err)
	}
	staying, err := s.bookingRepo.FindOverlapping(ctx, 0, tonight, 0)
	if err != nil {
		return nil, booking.NewStorageError("booking.find_overlapping", err)
	}
	active, err := s.bookingRepo.List(ctx, booking.Query{})
	if err != nil {
		return nil, booking.NewStorageError("booking.list", err)
	}

	activeRooms := make(map[int64]struct{}, len(rooms))
	for _, r := range rooms {
		activeRooms[r.ID] = struct{}{}
	}
	occupied := make(map[int64]struct{})
	for _, b := range staying {
		if _, ok := activeRooms[b.RoomID]; ok {
			occupied[b.RoomID] = struct{}{}
		}
	}

	revenue := decimal.Zero
	for _, b := range active {
		revenue = revenue.Add(b.TotalAmount)
	}

	stats := &OccupancyStats{
		Date:           today,
		TotalRooms:     len(rooms),
		OccupiedRooms:  len(occupied),
		ActiveBookings: len(active),
		TotalRevenue:   revenue,
	}
	if stats.TotalRooms > 0 {
		rate := float64(stats.OccupiedRooms) / float64(stats.TotalRooms) * 100
		stats.OccupancyRate = math.Round(rate*100) / 100
	}
	return stats, nil
}
