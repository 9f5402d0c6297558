package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// changeLogInMemory хранит историю изменений заказов в памяти.
type changeLogInMemory struct {
	mu      sync.RWMutex
	entries map[string][]domain.OperationLog
}

// NewChangeLogRepository создаёт in-memory реализацию ChangeLogRepository.
func NewChangeLogRepository() *changeLogInMemory {
	return &changeLogInMemory{entries: make(map[string][]domain.OperationLog)}
}

// Append добавляет запись в историю заказа.
func (r *changeLogInMemory) Append(_ context.Context, entry domain.OperationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.entries[entry.OrderID] = append(r.entries[entry.OrderID], entry)
	return nil
}

// List возвращает записи заказа в хронологическом порядке.
func (r *changeLogInMemory) List(_ context.Context, orderID string) ([]domain.OperationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[orderID]
	result := make([]domain.OperationLog, len(entries))
	copy(result, entries)

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

var _ domain.ChangeLogRepository = (*changeLogInMemory)(nil)
