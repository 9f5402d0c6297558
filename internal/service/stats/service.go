// Package stats отдаёт агрегированную статистику заказов для дашборда.
// Заполнение кэша дедуплицируется через singleflight: на один ключ
// одновременно выполняется не более одного расчёта, все конкурентные
// запросы того же интервала получают общий результат.
package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Statistics — агрегаты по заказам за интервал.
type Statistics struct {
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	OrderCount         int       `json:"order_count"`
	CustomerCount      int       `json:"customer_count"`
	RevenueMinor       int64     `json:"revenue_minor"`
	AvgOrderValueMinor int64     `json:"avg_order_value_minor"`
}

// Collector считает статистику по первичному хранилищу.
type Collector interface {
	CollectStatistics(ctx context.Context, start, end time.Time) (Statistics, error)
}

type cacheEntry struct {
	value     Statistics
	expiresAt time.Time
}

// Service кэширует результаты Collector-а по ключу интервала (день-точность).
type Service struct {
	collector Collector
	ttl       time.Duration
	logger    *log.Entry

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewService создаёт сервис статистики с TTL-кэшем.
func NewService(collector Collector, ttl time.Duration, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "stats")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		collector: collector,
		ttl:       ttl,
		logger:    logger,
		cache:     make(map[string]cacheEntry),
	}
}

// Collect возвращает статистику за интервал, при необходимости запуская
// расчёт. Пустые границы дают интервал «последний год до сегодня».
func (s *Service) Collect(ctx context.Context, start, end time.Time) (Statistics, error) {
	now := time.Now().UTC()
	if start.IsZero() {
		start = now.AddDate(-1, 0, 0)
	}
	if end.IsZero() {
		end = now
	}

	key := cacheKey(start, end)

	if cached, ok := s.lookup(key); ok {
		return cached, nil
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		// Повторная проверка: пока мы ждали очередь singleflight,
		// другой вызов мог уже заполнить кэш.
		if cached, ok := s.lookup(key); ok {
			return cached, nil
		}

		computed, err := s.collector.CollectStatistics(ctx, start, end)
		if err != nil {
			return Statistics{}, err
		}

		s.mu.Lock()
		s.cache[key] = cacheEntry{value: computed, expiresAt: time.Now().Add(s.ttl)}
		s.mu.Unlock()

		s.logger.WithField("cache_key", key).Debug("dashboard statistics recomputed")
		return computed, nil
	})
	if err != nil {
		return Statistics{}, fmt.Errorf("collect statistics %s: %w", key, err)
	}

	return value.(Statistics), nil
}

func (s *Service) lookup(key string) (Statistics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return Statistics{}, false
	}
	return entry.value, true
}

func cacheKey(start, end time.Time) string {
	return fmt.Sprintf("statistic:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}
