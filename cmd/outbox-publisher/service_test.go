package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/nmarchetti/wearhaus-backend/pkg/config"
	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	"github.com/nmarchetti/wearhaus-backend/pkg/enums"
	"github.com/nmarchetti/wearhaus-backend/pkg/logger"
	"github.com/nmarchetti/wearhaus-backend/pkg/outbox"
)

func TestProcessBatchPublishesAndMarksEvents(t *testing.T) {
	events := []models.OutboxEvent{
		outboxRow(t, enums.EventOrderPaid, enums.AggregateOrder),
		outboxRow(t, enums.EventCartConverted, enums.AggregateCart),
	}
	repo := &fakeRepo{events: events}
	pub := &fakePublisher{results: []publishResult{
		fakePublishResult{},
		fakePublishResult{},
	}}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report processed")
	}
	if got := len(repo.published); got != 2 {
		t.Fatalf("expected 2 published rows, got %d", got)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("expected no failed rows, got %d", len(repo.failed))
	}
	if got := len(pub.messages); got != 2 {
		t.Fatalf("expected 2 messages, got %d", got)
	}
	if pub.messages[0].Attributes["event_type"] != string(enums.EventOrderPaid) {
		t.Fatalf("unexpected event_type attribute: %s", pub.messages[0].Attributes["event_type"])
	}
	if pub.messages[0].Attributes["aggregate_id"] != events[0].AggregateID.String() {
		t.Fatalf("unexpected aggregate_id attribute: %s", pub.messages[0].Attributes["aggregate_id"])
	}
}

func TestProcessBatchContinuesAfterPublishFailure(t *testing.T) {
	events := []models.OutboxEvent{
		outboxRow(t, enums.EventOrderPaid, enums.AggregateOrder),
		outboxRow(t, enums.EventOrderPaid, enums.AggregateOrder),
	}
	repo := &fakeRepo{events: events}
	pub := &fakePublisher{results: []publishResult{
		fakePublishResult{err: errors.New("transient")},
		fakePublishResult{},
	}}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("expected 1 failed row, got %d", got)
	}
	if repo.failed[0] != events[0].ID {
		t.Fatal("failed row recorded wrong ID")
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("expected 1 published row, got %d", got)
	}
	if repo.published[0] != events[1].ID {
		t.Fatal("published row recorded wrong ID")
	}
}

func TestProcessBatchReportsIdleWhenEmpty(t *testing.T) {
	repo := &fakeRepo{}
	service := newTestService(t, repo, &fakePublisher{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatal("expected idle batch")
	}
}

func TestProcessBatchPropagatesFetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("db down")}
	service := newTestService(t, repo, &fakePublisher{})

	if _, err := service.processBatch(context.Background()); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}

func TestNewServiceAppliesConfigDefaults(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{})

	if service.batchSize != defaultBatchSize {
		t.Fatalf("unexpected batch size %d", service.batchSize)
	}
	if service.maxAttempts != defaultMaxAttempts {
		t.Fatalf("unexpected max attempts %d", service.maxAttempts)
	}
	if service.pollInterval != time.Duration(defaultPollMs)*time.Millisecond {
		t.Fatalf("unexpected poll interval %v", service.pollInterval)
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{}),
		DB:         fakePinger{},
		PubSub:     fakePinger{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return service
}

func outboxRow(t *testing.T, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType) models.OutboxEvent {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}

type fakePinger struct{}

func (fakePinger) Ping(context.Context) error { return nil }

type fakeRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit < len(f.events) {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if len(f.results) == 0 {
		return fakePublishResult{}
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "msg-id", nil
}
