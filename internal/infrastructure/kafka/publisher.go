package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/segmentio/kafka-go"
)

const writeTimeout = 10 * time.Second

// DefaultKafkaPublisher writes raw messages to any topic.
type DefaultKafkaPublisher struct {
	writer *kafka.Writer
}

func NewDefaultKafkaPublisher(brokers []string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *DefaultKafkaPublisher) Publish(topic string, msgs ...domain.Message) error {
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
			Topic: topic,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return k.writer.WriteMessages(ctx, km...)
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}

// CouponEventPublisher encodes coupon events as JSON keyed by store id, so
// all events of one store land on the same partition in order.
type CouponEventPublisher struct {
	port  domain.PublisherPort
	topic string
}

func NewCouponEventPublisher(port domain.PublisherPort, topic string) *CouponEventPublisher {
	return &CouponEventPublisher{port: port, topic: topic}
}

func (p *CouponEventPublisher) PublishCouponEvent(event domain.CouponEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := []byte(strconv.FormatInt(event.StoreID, 10))
	return p.port.Publish(p.topic, domain.Message{Key: key, Value: v})
}
