package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

// KafkaStream publishes order.created keyed by store id. Without brokers it does nothing.
type KafkaStream struct {
	writer *kafka.Writer
	clock  clock.Clock
}

func NewKafkaStream(cfg config.KafkaConfig, clk clock.Clock) *KafkaStream {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return &KafkaStream{clock: clk}
	}
	return &KafkaStream{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        cfg.OrderTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		clock: clk,
	}
}

var _ shared.EventStream = (*KafkaStream)(nil)

func (s *KafkaStream) Enabled() bool {
	return s.writer != nil
}

func (s *KafkaStream) PublishOrderCreated(ctx context.Context, p event.OrderCreatedPayload) error {
	if !s.Enabled() {
		return nil
	}
	msg, err := s.message(p)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Wrap(err, "publish order.created")
	}
	return nil
}

func (s *KafkaStream) message(p event.OrderCreatedPayload) (kafka.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafka.Message{}, errs.Wrap(err, "marshal order.created")
	}
	return kafka.Message{
		Key:   []byte(p.StoreID.String()),
		Value: data,
		Time:  s.clock.Now(),
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(p.Event)},
		},
	}, nil
}

func (s *KafkaStream) Close() error {
	if !s.Enabled() {
		return nil
	}
	slog.Info("closing order stream writer")
	return s.writer.Close()
}
