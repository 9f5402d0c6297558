package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// storeRepositoryInMemory — in-memory реализация StoreService.
type storeRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]*domain.Store
}

// NewStoreRepository возвращает in-memory справочник магазинов.
func NewStoreRepository(stores ...*domain.Store) *storeRepositoryInMemory {
	r := &storeRepositoryInMemory{items: make(map[string]*domain.Store)}
	for _, s := range stores {
		r.items[s.ID] = s
	}
	return r
}

// Add регистрирует магазин.
func (r *storeRepositoryInMemory) Add(store *domain.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[store.ID] = store
}

// GetByID возвращает магазин или ErrStoreNotFound.
func (r *storeRepositoryInMemory) GetByID(_ context.Context, id string) (*domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.items[id]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	return store, nil
}

var _ domain.StoreService = (*storeRepositoryInMemory)(nil)
