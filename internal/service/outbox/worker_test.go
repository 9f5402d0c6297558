package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

type stubOutbox struct {
	mu        sync.Mutex
	pending   []domain.OutboxMessage
	sentIDs   []string
	failedIDs []string
	statsErr  error
}

func (s *stubOutbox) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, msg)
	return msg, nil
}

func (s *stubOutbox) PullPending(_ context.Context, _ int) ([]domain.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxMessage(nil), s.pending...), nil
}

func (s *stubOutbox) Stats(_ context.Context) (domain.OutboxStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statsErr != nil {
		return domain.OutboxStats{}, s.statsErr
	}
	return domain.OutboxStats{PendingCount: len(s.pending)}, nil
}

func (s *stubOutbox) MarkSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentIDs = append(s.sentIDs, id)
	s.removePending(id)
	return nil
}

func (s *stubOutbox) MarkFailed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedIDs = append(s.failedIDs, id)
	s.removePending(id)
	return nil
}

func (s *stubOutbox) removePending(id string) {
	for i, msg := range s.pending {
		if msg.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

type stubPublisher struct {
	mu        sync.Mutex
	published int
	err       error
}

func (p *stubPublisher) Publish(_ domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published++
	return p.err
}

func (p *stubPublisher) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}

func TestWorker_ProcessOnce_MarkSent(t *testing.T) {
	t.Parallel()

	repo := &stubOutbox{
		pending: []domain.OutboxMessage{
			{
				ID:            "msg-1",
				AggregateType: "order",
				AggregateID:   "order-1",
				EventType:     "order.payment_processed",
				Payload:       []byte(`{"payment_id":"pay-1"}`),
			},
		},
	}
	publisher := &stubPublisher{}

	worker := NewWorker(repo, publisher, WithRetryBaseDelay(0), WithMaxAttempts(3))
	sent, failed := worker.ProcessOnce(context.Background())

	if sent != 1 || failed != 0 {
		t.Fatalf("expected 1 sent and 0 failed, got %d/%d", sent, failed)
	}
	if got := len(repo.sentIDs); got != 1 {
		t.Fatalf("expected 1 sent mark, got %d", got)
	}
	if repo.sentIDs[0] != "msg-1" {
		t.Fatalf("expected sent id msg-1, got %s", repo.sentIDs[0])
	}
	if got := publisher.calls(); got != 1 {
		t.Fatalf("expected 1 publish call, got %d", got)
	}
}

func TestWorker_ProcessOnce_MarkFailedAfterRetries(t *testing.T) {
	t.Parallel()

	repo := &stubOutbox{
		pending: []domain.OutboxMessage{
			{
				ID:            "msg-2",
				AggregateType: "order",
				AggregateID:   "order-2",
				EventType:     "order.changed",
				Payload:       []byte(`{"status":"cancelled"}`),
			},
		},
	}
	publisher := &stubPublisher{err: errors.New("publish failed")}

	worker := NewWorker(repo, publisher, WithRetryBaseDelay(0), WithMaxAttempts(3))
	sent, failed := worker.ProcessOnce(context.Background())

	if sent != 0 || failed != 1 {
		t.Fatalf("expected 0 sent and 1 failed, got %d/%d", sent, failed)
	}
	if got := publisher.calls(); got != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", got)
	}
	if got := len(repo.failedIDs); got != 1 {
		t.Fatalf("expected 1 failed mark, got %d", got)
	}
}

func TestWorker_ProcessOnce_EmptyOutboxNoPublishes(t *testing.T) {
	t.Parallel()

	repo := &stubOutbox{}
	publisher := &stubPublisher{}

	worker := NewWorker(repo, publisher)
	sent, failed := worker.ProcessOnce(context.Background())

	if sent != 0 || failed != 0 {
		t.Fatalf("expected nothing processed, got %d/%d", sent, failed)
	}
	if got := publisher.calls(); got != 0 {
		t.Fatalf("expected no publish calls, got %d", got)
	}
}

func TestWorker_ProcessOnce_CanceledContext(t *testing.T) {
	t.Parallel()

	repo := &stubOutbox{
		pending: []domain.OutboxMessage{{ID: "msg-3", AggregateType: "order"}},
	}
	publisher := &stubPublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	worker := NewWorker(repo, publisher)
	sent, failed := worker.ProcessOnce(ctx)

	if sent != 0 || failed != 0 {
		t.Fatalf("expected nothing processed after cancel, got %d/%d", sent, failed)
	}
	if got := publisher.calls(); got != 0 {
		t.Fatalf("expected no publish calls after cancel, got %d", got)
	}
}

func TestWorker_RetryBackoffGrowth(t *testing.T) {
	t.Parallel()

	worker := NewWorker(&stubOutbox{}, &stubPublisher{}, WithRetryBaseDelay(50))
	if got := worker.retryBackoff(1); got != 50 {
		t.Fatalf("expected base delay, got %d", got)
	}
	if got := worker.retryBackoff(3); got != 200 {
		t.Fatalf("expected exponential growth, got %d", got)
	}
}
