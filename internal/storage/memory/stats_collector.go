package memory

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/order-module/internal/service/stats"
)

// statsCollector считает агрегаты дашборда по in-memory репозиторию заказов.
type statsCollector struct {
	orders *orderRepositoryInMemory
}

// NewStatsCollector возвращает Collector поверх in-memory репозитория.
func NewStatsCollector(orders *orderRepositoryInMemory) *statsCollector {
	return &statsCollector{orders: orders}
}

// CollectStatistics агрегирует заказы, созданные в интервале [start, end].
func (c *statsCollector) CollectStatistics(_ context.Context, start, end time.Time) (stats.Statistics, error) {
	result := stats.Statistics{StartDate: start, EndDate: end}
	customers := make(map[string]struct{})

	for _, order := range c.orders.All() {
		if order.CreatedAt.Before(start) || order.CreatedAt.After(end) {
			continue
		}
		result.OrderCount++
		result.RevenueMinor += order.TotalMinor
		if order.CustomerID != "" {
			customers[order.CustomerID] = struct{}{}
		}
	}

	result.CustomerCount = len(customers)
	if result.OrderCount > 0 {
		result.AvgOrderValueMinor = result.RevenueMinor / int64(result.OrderCount)
	}
	return result, nil
}

var _ stats.Collector = (*statsCollector)(nil)
