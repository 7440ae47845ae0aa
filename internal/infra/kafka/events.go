package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishClaimsSynced publishes iam.claims.synced events.
func (p *EventPublisher) PublishClaimsSynced(ctx context.Context, event domain.ClaimsSyncedEvent) error {
	payload := struct {
		UserID          string    `json:"user_id"`
		Role            string    `json:"role"`
		PermissionCount int       `json:"permission_count"`
		Wildcard        bool      `json:"wildcard"`
		SyncedAt        time.Time `json:"synced_at"`
	}{
		UserID:          event.UserID,
		Role:            event.Role,
		PermissionCount: event.PermissionCount,
		Wildcard:        event.Wildcard,
		SyncedAt:        event.SyncedAt.UTC(),
	}

	return p.publish(ctx, "iam.claims.synced", event.UserID, event.SyncedAt, payload)
}

// PublishStaffPromoted publishes iam.staff.promoted events.
func (p *EventPublisher) PublishStaffPromoted(ctx context.Context, event domain.StaffPromotedEvent) error {
	payload := struct {
		StaffID     string    `json:"staff_id"`
		AdminUserID string    `json:"admin_user_id"`
		Email       string    `json:"email"`
		PromotedBy  string    `json:"promoted_by"`
		PromotedAt  time.Time `json:"promoted_at"`
	}{
		StaffID:     event.StaffID,
		AdminUserID: event.AdminUserID,
		Email:       event.Email,
		PromotedBy:  event.PromotedBy,
		PromotedAt:  event.PromotedAt.UTC(),
	}

	return p.publish(ctx, "iam.staff.promoted", event.StaffID, event.PromotedAt, payload)
}

// PublishRoleChanged publishes iam.role.changed events.
func (p *EventPublisher) PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error {
	payload := struct {
		RoleID    string    `json:"role_id"`
		Name      string    `json:"name"`
		Action    string    `json:"action"`
		ChangedBy string    `json:"changed_by"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		RoleID:    event.RoleID,
		Name:      event.Name,
		Action:    event.Action,
		ChangedBy: event.ChangedBy,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, "iam.role.changed", event.ChangedBy, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
