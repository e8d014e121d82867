package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/lock"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/metrics"
)

// BookingService は空室判定と予約の重複防止を担う
type BookingService struct {
	txManager    transaction.Manager
	bookingRepo  booking.Repository
	roomRepo     room.Repository
	customerRepo customer.Repository
	lockManager  lock.Manager
	cache        AvailabilityCache
	publisher    EventPublisher
	metrics      *metrics.Metrics
	now          func() time.Time
}

// BookingOption は BookingService の任意設定
type BookingOption func(*BookingService)

// WithAvailabilityCache は空室検索キャッシュを設定する
func WithAvailabilityCache(c AvailabilityCache) BookingOption {
	return func(s *BookingService) { s.cache = c }
}

// WithEventPublisher は予約イベントの配信先を設定する
func WithEventPublisher(p EventPublisher) BookingOption {
	return func(s *BookingService) { s.publisher = p }
}

// WithMetrics はメトリクスを設定する
func WithMetrics(m *metrics.Metrics) BookingOption {
	return func(s *BookingService) { s.metrics = m }
}

// WithClock は「今日」の判定に使う時計を設定する
func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

// NewBookingService は BookingService を作成する
// lm が nil の場合はロックを取らない（ストレージの制約のみで重複を防ぐ）
func NewBookingService(tm transaction.Manager, br booking.Repository, rr room.Repository, cr customer.Repository, lm lock.Manager, opts ...BookingOption) *BookingService {
	s := &BookingService{
		txManager:    tm,
		bookingRepo:  br,
		roomRepo:     rr,
		customerRepo: cr,
		lockManager:  lm,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AvailabilityFilter は空室検索の絞り込み条件（どちらも任意）
type AvailabilityFilter struct {
	TypeID      *int64
	MinCapacity *int
}

func (f AvailabilityFilter) cacheKey(stay booking.DateRange) string {
	var typeID int64
	var minCap int
	if f.TypeID != nil {
		typeID = *f.TypeID
	}
	if f.MinCapacity != nil {
		minCap = *f.MinCapacity
	}
	return fmt.Sprintf("%s:%s:t%d:c%d",
		stay.CheckIn.Format(booking.DateLayout), stay.CheckOut.Format(booking.DateLayout), typeID, minCap)
}

// FindAvailableRooms は期間中に有効な予約が無い予約可能な客室をID順に返す
// 過去の期間も検索できる
func (s *BookingService) FindAvailableRooms(ctx context.Context, checkIn, checkOut time.Time, f AvailabilityFilter) ([]*room.Room, error) {
	stay := booking.NewDateRange(checkIn, checkOut)
	if err := stay.Validate(); err != nil {
		return nil, err
	}

	key := f.cacheKey(stay)
	version, useCache := s.cacheVersion(ctx)
	if useCache {
		rooms, ok, err := s.cache.GetAvailableRooms(ctx, version, key)
		switch {
		case err != nil:
			s.metrics.RecordCache("error")
			logger.Warn("空室キャッシュ取得エラー", zap.String("key", key), zap.Error(err))
		case ok:
			s.metrics.RecordCache("hit")
			logger.Debug("空室キャッシュヒット", zap.String("key", key), zap.Int("count", len(rooms)))
			return rooms, nil
		default:
			s.metrics.RecordCache("miss")
		}
	}

	filter := room.ActiveOnly()
	if f.TypeID != nil {
		filter.TypeID = *f.TypeID
	}
	if f.MinCapacity != nil {
		filter.MinCapacity = *f.MinCapacity
	}
	candidates, err := s.roomRepo.List(ctx, filter)
	if err != nil {
		return nil, booking.NewStorageError("room.list", err)
	}
	overlapping, err := s.bookingRepo.FindOverlapping(ctx, 0, stay, 0)
	if err != nil {
		return nil, booking.NewStorageError("booking.find_overlapping", err)
	}

	occupied := make(map[int64]struct{}, len(overlapping))
	for _, b := range overlapping {
		occupied[b.RoomID] = struct{}{}
	}
	available := make([]*room.Room, 0, len(candidates))
	for _, r := range candidates {
		if _, busy := occupied[r.ID]; !busy {
			available = append(available, r)
		}
	}
	sort.Slice(available, func(i, j int) bool { return available[i].ID < available[j].ID })

	if useCache {
		if err := s.cache.SetAvailableRooms(ctx, version, key, available); err != nil {
			logger.Warn("空室キャッシュ保存エラー", zap.String("key", key), zap.Error(err))
		}
	}
	return available, nil
}

// cacheVersion は検索開始時点のキャッシュバージョンを返す
// 取得できない場合はキャッシュを使わない
func (s *BookingService) cacheVersion(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	version, err := s.cache.Version(ctx)
	if err != nil {
		s.metrics.RecordCache("error")
		logger.Warn("空室キャッシュバージョン取得エラー", zap.Error(err))
		return 0, false
	}
	return version, true
}

// FindAvailableRoomsByType は客室タイプで絞り込んだ空室を返す
func (s *BookingService) FindAvailableRoomsByType(ctx context.Context, checkIn, checkOut time.Time, typeID int64) ([]*room.Room, error) {
	return s.FindAvailableRooms(ctx, checkIn, checkOut, AvailabilityFilter{TypeID: &typeID})
}

// FindAvailableRoomsByCapacity は最大収容人数が minCapacity 以上の空室を返す
func (s *BookingService) FindAvailableRoomsByCapacity(ctx context.Context, checkIn, checkOut time.Time, minCapacity int) ([]*room.Room, error) {
	return s.FindAvailableRooms(ctx, checkIn, checkOut, AvailabilityFilter{MinCapacity: &minCapacity})
}

// FindConflicts は客室の期間と重なる有効な予約を返す（excludeID が0でなければ除外する）
func (s *BookingService) FindConflicts(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) ([]*booking.Booking, error) {
	stay := booking.NewDateRange(checkIn, checkOut)
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	conflicts, err := s.bookingRepo.FindOverlapping(ctx, roomID, stay, excludeID)
	if err != nil {
		return nil, booking.NewStorageError("booking.find_overlapping", err)
	}
	return conflicts, nil
}

// CreateBookingInput は予約作成の入力
type CreateBookingInput struct {
	CustomerID int64
	RoomID     int64
	CheckIn    time.Time
	CheckOut   time.Time
	Notes      string
}

// CreateBooking は検証を行い、重複が無ければ予約を登録する
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	b, err := s.createBooking(ctx, input)
	s.metrics.RecordBooking("create", resultOf(err))
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, booking.EventCreated, b)
	return b, nil
}

func (s *BookingService) createBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	stay := booking.NewDateRange(input.CheckIn, input.CheckOut)
	if err := s.validateStay(stay); err != nil {
		return nil, err
	}

	release, err := s.lockRooms(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	rm, err := s.bookableRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}
	if err := s.checkNoConflict(ctx, rm.ID, stay, 0); err != nil {
		return nil, err
	}

	b := booking.NewBooking(input.CustomerID, rm.ID, stay, rm.PricePerNight, input.Notes, s.now())
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.bookingRepo.Create(ctx, tx, b)
	}); err != nil {
		return nil, wrapWriteError("booking.create", err)
	}
	return b, nil
}

// UpdateBookingInput は予約変更の入力
// 顧客は変更できない
type UpdateBookingInput struct {
	ID       int64
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
	Notes    string
}

// UpdateBooking は客室・期間・備考を変更し、金額を再計算する
// 重複判定では自身を除外する
func (s *BookingService) UpdateBooking(ctx context.Context, input UpdateBookingInput) (*booking.Booking, error) {
	b, err := s.updateBooking(ctx, input)
	s.metrics.RecordBooking("update", resultOf(err))
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, booking.EventUpdated, b)
	return b, nil
}

func (s *BookingService) updateBooking(ctx context.Context, input UpdateBookingInput) (*booking.Booking, error) {
	current, err := s.activeBooking(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	stay := booking.NewDateRange(input.CheckIn, input.CheckOut)
	if err := s.validateStay(stay); err != nil {
		return nil, err
	}

	release, err := s.lockRooms(ctx, current.RoomID, input.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	// ロック取得までに変更されている可能性があるため読み直す
	b, err := s.activeBooking(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if b.RoomID != current.RoomID {
		return nil, fmt.Errorf("%w: 予約が並行して変更されました", booking.ErrRoomBusy)
	}

	rm, err := s.bookableRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCustomer(ctx, b.CustomerID); err != nil {
		return nil, err
	}
	if err := s.checkNoConflict(ctx, rm.ID, stay, b.ID); err != nil {
		return nil, err
	}

	b.Reschedule(rm.ID, stay, rm.PricePerNight, input.Notes, s.now())
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.bookingRepo.Update(ctx, tx, b)
	}); err != nil {
		return nil, wrapWriteError("booking.update", err)
	}
	return b, nil
}

// CancelBooking は予約をキャンセルする
// キャンセル済みの予約に対しては何もせずそのまま返す
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	b, changed, err := s.cancelBooking(ctx, id)
	s.metrics.RecordBooking("cancel", resultOf(err))
	if err != nil {
		return nil, err
	}
	if changed {
		s.afterWrite(ctx, booking.EventCancelled, b)
	}
	return b, nil
}

func (s *BookingService) cancelBooking(ctx context.Context, id int64) (*booking.Booking, bool, error) {
	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if b.IsCancelled() {
		return b, false, nil
	}

	release, err := s.lockRooms(ctx, b.RoomID)
	if err != nil {
		return nil, false, err
	}
	defer release()

	b, err = s.getBooking(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !b.Cancel(s.now()) {
		return b, false, nil
	}

	if err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.bookingRepo.Update(ctx, tx, b)
	}); err != nil {
		return nil, false, wrapWriteError("booking.cancel", err)
	}
	return b, true, nil
}

// GetBooking はIDから予約を取得する（キャンセル済みも含む）
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	return s.getBooking(ctx, id)
}

// BookingQuery は予約一覧の検索条件
// From/To を指定した場合は期間内に完全に収まる予約のみを返す
type BookingQuery struct {
	CustomerID       int64
	RoomID           int64
	From             *time.Time
	To               *time.Time
	IncludeCancelled bool
	Limit            int
	Offset           int
}

var (
	openStart = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	openEnd   = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// ListBookings は条件に一致する予約をチェックイン日順に返す
func (s *BookingService) ListBookings(ctx context.Context, q BookingQuery) ([]*booking.Booking, error) {
	query := booking.Query{
		CustomerID:       q.CustomerID,
		RoomID:           q.RoomID,
		IncludeCancelled: q.IncludeCancelled,
		Limit:            q.Limit,
		Offset:           q.Offset,
	}
	if q.From != nil || q.To != nil {
		from, to := openStart, openEnd
		if q.From != nil {
			from = *q.From
		}
		if q.To != nil {
			to = *q.To
		}
		window := booking.NewDateRange(from, to)
		if err := window.Validate(); err != nil {
			return nil, err
		}
		query.Within = &window
	}

	list, err := s.bookingRepo.List(ctx, query)
	if err != nil {
		return nil, booking.NewStorageError("booking.list", err)
	}
	return list, nil
}

// GetCustomerBookings は顧客の予約をチェックイン日順に返す
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID int64, includeCancelled bool) ([]*booking.Booking, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return nil, err
		}
		return nil, booking.NewStorageError("customer.get", err)
	}
	return s.ListBookings(ctx, BookingQuery{CustomerID: customerID, IncludeCancelled: includeCancelled})
}

func (s *BookingService) validateStay(stay booking.DateRange) error {
	if err := stay.Validate(); err != nil {
		return err
	}
	if stay.StartsBefore(s.now()) {
		return booking.ErrPastCheckIn
	}
	return nil
}

func (s *BookingService) getBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return nil, err
		}
		return nil, booking.NewStorageError("booking.get", err)
	}
	return b, nil
}

// activeBooking はキャンセル済みの予約を存在しないものとして扱う
func (s *BookingService) activeBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsActive() {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

func (s *BookingService) bookableRoom(ctx context.Context, roomID int64) (*room.Room, error) {
	rm, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return nil, room.ErrRoomUnavailable
		}
		return nil, booking.NewStorageError("room.get", err)
	}
	if !rm.IsBookable() {
		return nil, room.ErrRoomUnavailable
	}
	return rm, nil
}

func (s *BookingService) checkCustomer(ctx context.Context, customerID int64) error {
	c, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return customer.ErrCustomerInactive
		}
		return booking.NewStorageError("customer.get", err)
	}
	if !c.IsActive() {
		return customer.ErrCustomerInactive
	}
	return nil
}

func (s *BookingService) checkNoConflict(ctx context.Context, roomID int64, stay booking.DateRange, excludeID int64) error {
	conflicts, err := s.bookingRepo.FindOverlapping(ctx, roomID, stay, excludeID)
	if err != nil {
		return booking.NewStorageError("booking.find_overlapping", err)
	}
	if len(conflicts) > 0 {
		return booking.ErrBookingConflict
	}
	return nil
}

// lockRooms は客室IDの昇順にロックを取得し、解放関数を返す
func (s *BookingService) lockRooms(ctx context.Context, roomIDs ...int64) (func(), error) {
	if s.lockManager == nil {
		return func() {}, nil
	}

	ids := uniqueSorted(roomIDs)
	held := make([]lock.Lock, 0, len(ids))
	release := func() {
		// リクエストがキャンセルされていても解放する
		rctx := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(rctx); err != nil {
				logger.Warn("客室ロック解放エラー", zap.Error(err))
			}
		}
	}

	for _, id := range ids {
		l, err := s.lockManager.Acquire(ctx, lock.RoomKey(id))
		if err != nil {
			release()
			return nil, fmt.Errorf("%w: %w", booking.ErrRoomBusy, err)
		}
		held = append(held, l)
	}
	return release, nil
}

func uniqueSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// afterWrite はキャッシュの無効化とイベント配信を行う
// 予約は確定済みのため、失敗はログに残すだけにする
func (s *BookingService) afterWrite(ctx context.Context, t booking.EventType, b *booking.Booking) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn("空室キャッシュ無効化エラー", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, booking.NewEvent(t, b, s.now())); err != nil {
			logger.Error("予約イベント配信エラー",
				zap.String("type", string(t)),
				zap.Int64("booking_id", b.ID),
				zap.Error(err),
			)
		}
	}
	logger.Info("予約を更新しました",
		zap.String("event", string(t)),
		zap.Int64("booking_id", b.ID),
		zap.Int64("room_id", b.RoomID),
	)
}

// wrapWriteError は書き込み時のドメインエラーをそのまま返し、それ以外をストレージエラーにする
func wrapWriteError(op string, err error) error {
	if errors.Is(err, booking.ErrBookingConflict) || errors.Is(err, booking.ErrBookingNotFound) {
		return err
	}
	return booking.NewStorageError(op, err)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, booking.ErrBookingConflict):
		return metrics.ResultConflict
	case errors.Is(err, booking.ErrRoomBusy):
		return metrics.ResultLockFailed
	case errors.Is(err, room.ErrRoomUnavailable), errors.Is(err, customer.ErrCustomerInactive):
		return metrics.ResultUnavailable
	case errors.Is(err, booking.ErrStorage):
		return metrics.ResultError
	default:
		return metrics.ResultInvalid
	}
}
