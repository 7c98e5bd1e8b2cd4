package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Searching96/flight-management-system-sub002/internal/config"
)

// BookingEvent は監査・通知コンシューマ向けの予約イベント
type BookingEvent struct {
	Type             string    `json:"type"` // booking_confirmed, tickets_paid, ticket_cancelled, hold_expired
	ConfirmationCode string    `json:"confirmation_code"`
	FlightID         string    `json:"flight_id"`
	TicketClassID    string    `json:"ticket_class_id,omitempty"`
	SeatNumbers      []string  `json:"seat_numbers,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher は予約イベントをKafkaへ配信する
type Publisher struct {
	writer *kafka.Writer
	topic  string
}

// NewPublisher は新しいPublisherを作成する
func NewPublisher(cfg *config.KafkaConfig) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Publisher{writer: writer, topic: cfg.Topic}
}

// Publish はイベントを配信する
// 配信失敗は呼び出し側でログのみ（予約トランザクションには影響させない）
func (p *Publisher) Publish(ctx context.Context, event BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.ConfirmationCode),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("イベント配信に失敗: %w", err)
	}
	return nil
}

// Close はwriterを閉じる
func (p *Publisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
