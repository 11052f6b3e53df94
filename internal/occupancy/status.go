package occupancy

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jaevanlith/lorre-app/internal/logger"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

type statusEvent struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Status is the venue's Open/Closed gate. The venue starts closed; toggling
// to closed triggers the mass checkout.
type Status struct {
	mu      sync.Mutex
	open    bool
	counter *Counter

	producer Publisher
	topic    string
	logger   *logger.Logger
}

func NewStatus(counter *Counter, producer Publisher, topic string, log *logger.Logger) *Status {
	return &Status{counter: counter, producer: producer, topic: topic, logger: log}
}

// Current returns "open" or "closed".
func (s *Status) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return StatusOpen
	}
	return StatusClosed
}

// Toggle flips the gate and returns the new status. Closing the venue
// checks everyone out; opening has no side effect.
func (s *Status) Toggle(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = !s.open
	status := StatusClosed
	if s.open {
		status = StatusOpen
	}

	if !s.open {
		if err := s.counter.ResetOnVenueClose(ctx); err != nil {
			return status, fmt.Errorf("failed to check out visitors on close: %w", err)
		}
	}

	s.publish(status)
	return status, nil
}

func (s *Status) publish(status string) {
	if s.producer == nil {
		return
	}
	value, err := json.Marshal(statusEvent{Status: status, Timestamp: time.Now()})
	if err != nil {
		return
	}
	if err := s.producer.Publish(s.topic, status, value); err != nil && s.logger != nil {
		s.logger.Warn("KAFKA", fmt.Sprintf("Failed to publish venue status event: %v", err))
	}
}
