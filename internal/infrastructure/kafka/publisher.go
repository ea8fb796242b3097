package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
)

// MessageWriter は kafka.Writer のうち送信に必要な部分
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// seatsChangedMessage はトピックに送るJSONペイロード
type seatsChangedMessage struct {
	WebinarID     string    `json:"webinar_id"`
	OrganizerID   string    `json:"organizer_id"`
	PreviousSeats int       `json:"previous_seats"`
	Seats         int       `json:"seats"`
	ChangedAt     time.Time `json:"changed_at"`
}

// SeatsChangedPublisher は座席数変更イベントをKafkaへ送信する
type SeatsChangedPublisher struct {
	writer MessageWriter
}

// NewWriter はトピック向けの kafka.Writer を作成する
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // 同じウェビナーのイベントは同じパーティションへ
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

func NewSeatsChangedPublisher(writer MessageWriter) *SeatsChangedPublisher {
	return &SeatsChangedPublisher{writer: writer}
}

// PublishSeatsChanged はイベントをウェビナーIDをキーとして送信する
func (p *SeatsChangedPublisher) PublishSeatsChanged(ctx context.Context, ev webinar.SeatsChanged) error {
	value, err := json.Marshal(seatsChangedMessage{
		WebinarID:     ev.WebinarID,
		OrganizerID:   ev.OrganizerID,
		PreviousSeats: ev.PreviousSeats,
		Seats:         ev.Seats,
		ChangedAt:     ev.ChangedAt,
	})
	if err != nil {
		return fmt.Errorf("イベントのエンコードに失敗: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.WebinarID),
		Value: value,
		Time:  ev.ChangedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("webinar.seats_changed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("イベント送信に失敗: %w", err)
	}
	return nil
}

// Close は内部の writer を閉じる
func (p *SeatsChangedPublisher) Close() error {
	return p.writer.Close()
}
