package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "iam",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "access-service",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func TestPublishClaimsSynced(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	syncedAt := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	event := domain.ClaimsSyncedEvent{
		UserID:          "user-789",
		Role:            "admin",
		PermissionCount: 4,
		Wildcard:        false,
		SyncedAt:        syncedAt,
	}

	if err := publisher.PublishClaimsSynced(context.Background(), event); err != nil {
		t.Fatalf("PublishClaimsSynced returned error: %v", err)
	}

	msg := <-asyncProducer.input
	if msg.Topic != "iam.claims.synced" {
		t.Fatalf("expected topic iam.claims.synced, got %s", msg.Topic)
	}

	raw, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode message value: %v", err)
	}

	var envelope struct {
		EventID   string    `json:"event_id"`
		EventType string    `json:"event_type"`
		UserID    string    `json:"user_id"`
		Timestamp time.Time `json:"timestamp"`
		Version   string    `json:"version"`
		Payload   struct {
			UserID          string    `json:"user_id"`
			Role            string    `json:"role"`
			PermissionCount int       `json:"permission_count"`
			Wildcard        bool      `json:"wildcard"`
			SyncedAt        time.Time `json:"synced_at"`
		} `json:"payload"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	if envelope.EventID == "" {
		t.Fatalf("expected generated event id")
	}
	if envelope.EventType != "iam.claims.synced" {
		t.Fatalf("expected event type iam.claims.synced, got %s", envelope.EventType)
	}
	if envelope.UserID != "user-789" {
		t.Fatalf("expected user-789, got %s", envelope.UserID)
	}
	if !envelope.Timestamp.Equal(syncedAt) {
		t.Fatalf("expected timestamp %v, got %v", syncedAt, envelope.Timestamp)
	}
	if envelope.Payload.Role != "admin" || envelope.Payload.PermissionCount != 4 {
		t.Fatalf("unexpected payload: %+v", envelope.Payload)
	}
	if envelope.Metadata["service"] != "access-service" {
		t.Fatalf("expected service metadata, got %v", envelope.Metadata)
	}
}

func TestPublishStaffPromoted(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	promotedAt := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	event := domain.StaffPromotedEvent{
		StaffID:     "staff-1",
		AdminUserID: "idp-001",
		Email:       "tha***@example.com",
		PromotedBy:  "actor-1",
		PromotedAt:  promotedAt,
	}

	if err := publisher.PublishStaffPromoted(context.Background(), event); err != nil {
		t.Fatalf("PublishStaffPromoted returned error: %v", err)
	}

	msg := <-asyncProducer.input
	if msg.Topic != "iam.staff.promoted" {
		t.Fatalf("expected topic iam.staff.promoted, got %s", msg.Topic)
	}

	key, err := msg.Key.Encode()
	if err != nil {
		t.Fatalf("encode message key: %v", err)
	}
	if string(key) != "staff-1" {
		t.Fatalf("expected partition key staff-1, got %s", key)
	}
}

func TestPublishCancelledContext(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	// Fill the buffered input channel so publish has to wait.
	asyncProducer.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishRoleChanged(ctx, domain.RoleChangedEvent{
		RoleID:    "role-1",
		Name:      "admin",
		Action:    "updated",
		ChangedBy: "actor-1",
		ChangedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatalf("expected context error when producer input is full")
	}
}
