package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jaevanlith/lorre-app/internal/config"
	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/models"
)

// Notifier pushes owner-facing notifications out of the backend. The
// consumer on the other side turns events into emails.
type Notifier interface {
	SendPurchaseConfirmation(ctx context.Context, ownerID, kind string) error
	SendExpiryReminder(ctx context.Context, pass models.Pass) error
}

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

type purchaseEvent struct {
	OwnerID   string    `json:"owner_id"`
	PassKind  string    `json:"pass_kind"`
	Timestamp time.Time `json:"timestamp"`
}

type expiryEvent struct {
	OwnerID    string    `json:"owner_id"`
	PassID     string    `json:"pass_id"`
	PassKind   string    `json:"pass_kind"`
	ValidUntil time.Time `json:"valid_until"`
}

// KafkaNotifier publishes notification events to the configured topics.
type KafkaNotifier struct {
	Producer Publisher
	Topics   config.TopicConfig
	Logger   *logger.Logger
}

func NewKafkaNotifier(producer Publisher, topics config.TopicConfig, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{Producer: producer, Topics: topics, Logger: log}
}

func (n *KafkaNotifier) SendPurchaseConfirmation(ctx context.Context, ownerID, kind string) error {
	value, err := json.Marshal(purchaseEvent{OwnerID: ownerID, PassKind: kind, Timestamp: time.Now()})
	if err != nil {
		return err
	}
	if err := n.Producer.Publish(n.Topics.PurchaseConfirmation, ownerID, value); err != nil {
		return fmt.Errorf("failed to publish purchase confirmation: %w", err)
	}
	n.Logger.Info("NOTIFY", fmt.Sprintf("Purchase confirmation queued for owner %s", ownerID))
	return nil
}

func (n *KafkaNotifier) SendExpiryReminder(ctx context.Context, pass models.Pass) error {
	value, err := json.Marshal(expiryEvent{
		OwnerID:    pass.OwnerID,
		PassID:     pass.PassID,
		PassKind:   pass.Kind,
		ValidUntil: pass.ValidUntil,
	})
	if err != nil {
		return err
	}
	if err := n.Producer.Publish(n.Topics.ExpiryReminder, pass.OwnerID, value); err != nil {
		return fmt.Errorf("failed to publish expiry reminder: %w", err)
	}
	n.Logger.Info("NOTIFY", fmt.Sprintf("Expiry reminder queued for pass %s", pass.PassID))
	return nil
}

// NoopNotifier is used when kafka is disabled; events are logged and
// dropped.
type NoopNotifier struct {
	Logger *logger.Logger
}

func (n *NoopNotifier) SendPurchaseConfirmation(ctx context.Context, ownerID, kind string) error {
	n.Logger.Debug("NOTIFY", fmt.Sprintf("Kafka disabled, dropping purchase confirmation for owner %s", ownerID))
	return nil
}

func (n *NoopNotifier) SendExpiryReminder(ctx context.Context, pass models.Pass) error {
	n.Logger.Debug("NOTIFY", fmt.Sprintf("Kafka disabled, dropping expiry reminder for pass %s", pass.PassID))
	return nil
}
