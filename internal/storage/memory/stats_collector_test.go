package memory

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

func TestStatsCollector_AggregatesWindow(t *testing.T) {
	orders := NewOrderRepository()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	orders.Seed(
		domain.CustomerOrder{ID: "order-1", Number: "ORD-1", CustomerID: "c-1", TotalMinor: 1000, CreatedAt: base},
		domain.CustomerOrder{ID: "order-2", Number: "ORD-2", CustomerID: "c-2", TotalMinor: 3000, CreatedAt: base.Add(24 * time.Hour)},
		domain.CustomerOrder{ID: "order-3", Number: "ORD-3", CustomerID: "c-1", TotalMinor: 2000, CreatedAt: base.Add(48 * time.Hour)},
		domain.CustomerOrder{ID: "order-4", Number: "ORD-4", CustomerID: "c-3", TotalMinor: 9999, CreatedAt: base.Add(-time.Hour)},
	)

	collector := NewStatsCollector(orders)
	result, err := collector.CollectStatistics(context.Background(), base, base.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OrderCount != 3 {
		t.Fatalf("unexpected order count: %d", result.OrderCount)
	}
	if result.RevenueMinor != 6000 {
		t.Fatalf("unexpected revenue: %d", result.RevenueMinor)
	}
	if result.CustomerCount != 2 {
		t.Fatalf("unexpected customer count: %d", result.CustomerCount)
	}
	if result.AvgOrderValueMinor != 2000 {
		t.Fatalf("unexpected avg order value: %d", result.AvgOrderValueMinor)
	}
}

func TestStatsCollector_EmptyWindow(t *testing.T) {
	collector := NewStatsCollector(NewOrderRepository())

	result, err := collector.CollectStatistics(context.Background(), time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OrderCount != 0 || result.RevenueMinor != 0 || result.AvgOrderValueMinor != 0 {
		t.Fatalf("expected zero statistics, got %+v", result)
	}
}
