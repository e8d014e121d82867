package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-booking/internal/config"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/logger"
)

// Publisher は予約イベントを topic exchange に配信する
// ルーティングキーはイベント種別（booking.created 等）
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	timeout  time.Duration
}

// NewPublisher はブローカーに接続し、exchange を宣言する
func NewPublisher(cfg *config.AMQPConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続エラー: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("チャネル作成エラー: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("exchange宣言エラー: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: cfg.Exchange, timeout: 5 * time.Second}, nil
}

// Publish はイベントをJSONで永続メッセージとして配信する
func (p *Publisher) Publish(ctx context.Context, ev booking.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("イベントのエンコードに失敗しました: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, ev.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt.UTC(),
		MessageId:    fmt.Sprintf("%s-%d-%d", ev.Type, ev.BookingID, ev.OccurredAt.UnixNano()),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("イベント配信エラー: %w", err)
	}
	return nil
}

// Close はチャネルと接続を閉じる
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher はブローカー未設定時にイベントをログへ出力するだけの配信先
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, ev booking.Event) error {
	logger.Debug("予約イベント",
		zap.String("type", string(ev.Type)),
		zap.Int64("booking_id", ev.BookingID),
		zap.Int64("room_id", ev.RoomID),
		zap.String("check_in", ev.CheckIn),
		zap.String("check_out", ev.CheckOut),
	)
	return nil
}
