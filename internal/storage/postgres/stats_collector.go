package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/order-module/internal/service/stats"
)

// statsCollector считает агрегаты дашборда одним SQL-запросом.
type statsCollector struct {
	db *sql.DB
}

// NewStatsCollector возвращает Collector поверх PostgreSQL.
func NewStatsCollector(store *Store) *statsCollector {
	return &statsCollector{db: store.DB()}
}

// CollectStatistics агрегирует заказы, созданные в интервале [start, end].
func (c *statsCollector) CollectStatistics(ctx context.Context, start, end time.Time) (stats.Statistics, error) {
	result := stats.Statistics{StartDate: start, EndDate: end}

	err := c.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT customer_id) FILTER (WHERE customer_id <> ''),
			COALESCE(SUM(total_minor), 0)
		FROM customer_orders
		WHERE created_at BETWEEN $1 AND $2
	`, start, end).Scan(&result.OrderCount, &result.CustomerCount, &result.RevenueMinor)
	if err != nil {
		return stats.Statistics{}, fmt.Errorf("collect order statistics: %w", err)
	}

	if result.OrderCount > 0 {
		result.AvgOrderValueMinor = result.RevenueMinor / int64(result.OrderCount)
	}
	return result, nil
}

var _ stats.Collector = (*statsCollector)(nil)
