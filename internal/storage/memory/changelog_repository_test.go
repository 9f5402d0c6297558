package memory

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

func TestChangeLog_AppendAssignsID(t *testing.T) {
	repo := NewChangeLogRepository()

	err := repo.Append(context.Background(), domain.OperationLog{
		OrderID:       "order-1",
		OperationType: "OrderCreatedFromCart",
		UserName:      "manager",
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := repo.List(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" {
		t.Fatal("expected generated entry id")
	}
}

func TestChangeLog_ListChronological(t *testing.T) {
	repo := NewChangeLogRepository()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, op := range []string{"PaymentInitiated", "OrderCreatedFromCart", "OrderUpdated"} {
		err := repo.Append(context.Background(), domain.OperationLog{
			OrderID:       "order-1",
			OperationType: op,
			CreatedAt:     base.Add(time.Duration(2-i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := repo.List(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].OperationType != "OrderUpdated" || entries[2].OperationType != "PaymentInitiated" {
		t.Fatalf("entries not in chronological order: %v", entries)
	}
}

func TestChangeLog_ListUnknownOrderIsEmpty(t *testing.T) {
	repo := NewChangeLogRepository()

	entries, err := repo.List(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
