package booking

import "time"

// EventType は予約ドメインイベントの種別
type EventType string

const (
	EventCreated   EventType = "booking.created"
	EventUpdated   EventType = "booking.updated"
	EventCancelled EventType = "booking.cancelled"
)

// Event は予約台帳の変更を通知するイベント
type Event struct {
	Type        EventType `json:"type"`
	BookingID   int64     `json:"booking_id"`
	CustomerID  int64     `json:"customer_id"`
	RoomID      int64     `json:"room_id"`
	CheckIn     string    `json:"check_in"`
	CheckOut    string    `json:"check_out"`
	TotalAmount string    `json:"total_amount"`
	Status      Status    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// DateLayout は日付のみを表す書式
const DateLayout = "2006-01-02"

// NewEvent は予約の現在の状態からイベントを作成する
func NewEvent(t EventType, b *Booking, at time.Time) Event {
	return Event{
		Type:        t,
		BookingID:   b.ID,
		CustomerID:  b.CustomerID,
		RoomID:      b.RoomID,
		CheckIn:     b.CheckIn.Format(DateLayout),
		CheckOut:    b.CheckOut.Format(DateLayout),
		TotalAmount: b.TotalAmount.StringFixed(2),
		Status:      b.Status,
		OccurredAt:  at,
	}
}

// RoutingKey はメッセージブローカーのルーティングキーを返す
func (e Event) RoutingKey() string {
	return string(e.Type)
}
