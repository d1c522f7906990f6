package kafka

import (
	"sync"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

const localBufferSize = 256

// LocalBus stands in for the broker when kafka-service is disabled. Every
// subscriber of a topic gets every message; a full subscriber buffer drops
// the message for that subscriber only.
type LocalBus struct {
	mu     sync.RWMutex
	subs   map[string][]chan domain.Message
	closed bool
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: map[string][]chan domain.Message{}}
}

func (b *LocalBus) Publish(topic string, msgs ...domain.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, ch := range b.subs[topic] {
		for _, m := range msgs {
			select {
			case ch <- m:
			default:
			}
		}
	}
	return nil
}

// Subscribe ignores groupID: there is a single process.
func (b *LocalBus) Subscribe(topic, _ string) (<-chan domain.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan domain.Message, localBufferSize)
	if b.closed {
		close(ch)
		return ch, nil
	}
	b.subs[topic] = append(b.subs[topic], ch)
	return ch, nil
}

// Close ends every subscription channel.
func (b *LocalBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, chans := range b.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
}
