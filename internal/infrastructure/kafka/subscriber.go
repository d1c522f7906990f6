package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	minReadBackoff = 200 * time.Millisecond
	maxReadBackoff = 30 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type DefaultKafkaSubscriber struct {
	ctx     context.Context
	brokers []string

	newReader  func(topic, groupID string) messageReader
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewDefaultKafkaSubscriber returns a subscriber whose readers stop when ctx
// is cancelled. Read errors before that are retried with backoff.
func NewDefaultKafkaSubscriber(ctx context.Context, brokers []string) *DefaultKafkaSubscriber {
	k := &DefaultKafkaSubscriber{
		ctx:        ctx,
		brokers:    brokers,
		minBackoff: minReadBackoff,
		maxBackoff: maxReadBackoff,
	}
	k.newReader = func(topic, groupID string) messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers: k.brokers,
			Topic:   topic,
			GroupID: groupID,
		})
	}
	return k
}

func (k *DefaultKafkaSubscriber) Subscribe(topic, groupID string) (<-chan domain.Message, error) {
	reader := k.newReader(topic, groupID)
	out := make(chan domain.Message)
	go func() {
		defer close(out)
		defer reader.Close()
		k.pump(reader, topic, out)
	}()
	return out, nil
}

func (k *DefaultKafkaSubscriber) pump(reader messageReader, topic string, out chan<- domain.Message) {
	backoff := k.minBackoff
	for {
		m, err := reader.ReadMessage(k.ctx)
		if err != nil {
			if k.ctx.Err() != nil {
				return
			}
			slog.Warn("kafka read failed, retrying", "topic", topic, "backoff", backoff, "error", err)
			select {
			case <-time.After(backoff):
			case <-k.ctx.Done():
				return
			}
			backoff = min(backoff*2, k.maxBackoff)
			continue
		}
		backoff = k.minBackoff
		select {
		case out <- domain.Message{Key: m.Key, Value: m.Value}:
		case <-k.ctx.Done():
			return
		}
	}
}
