package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// KafkaSender publishes messages to a topic; a Relay on the other side
// hands them to the mail transport.
type KafkaSender struct {
	writer messageWriter
}

func NewKafkaSender(writer *kafka.Writer) *KafkaSender {
	return &KafkaSender{writer: writer}
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// notification.order_confirmation.ORD-1700000000000-abc123
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("notification.%s.%s", msg.Kind, msg.OrderID)),
		Value: payload,
	})
}

// Relay consumes published notifications and delivers them with a Sender.
type Relay struct {
	reader messageReader
	sender Sender
}

func NewRelay(reader *kafka.Reader, sender Sender) *Relay {
	return &Relay{reader: reader, sender: sender}
}

// Run blocks until ctx is cancelled. Undeliverable messages are logged and
// skipped.
func (r *Relay) Run(ctx context.Context) error {
	for {
		kmsg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			logger.Error().Err(err).Msg("Error reading notification message")
			continue
		}
		r.process(ctx, kmsg)
	}
}

func (r *Relay) process(ctx context.Context, kmsg kafka.Message) {
	var msg Message
	if err := json.Unmarshal(kmsg.Value, &msg); err != nil {
		logger.Error().Err(err).Msgf("Error unmarshalling notification %s", string(kmsg.Key))
		return
	}

	if err := r.sender.Send(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error delivering %s notification for order %s", msg.Kind, msg.OrderID)
		return
	}
	logger.Info().Msgf("Delivered %s notification for order %s", msg.Kind, msg.OrderID)
}
