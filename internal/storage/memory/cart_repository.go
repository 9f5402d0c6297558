package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// cartRepositoryInMemory — in-memory реализация CartService.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Cart
}

// NewCartRepository возвращает in-memory хранилище корзин.
func NewCartRepository(carts ...domain.Cart) *cartRepositoryInMemory {
	r := &cartRepositoryInMemory{items: make(map[string]domain.Cart)}
	for _, c := range carts {
		r.items[c.ID] = c
	}
	return r
}

// Add регистрирует корзину.
func (r *cartRepositoryInMemory) Add(cart domain.Cart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cart.ID] = cart
}

// GetByID возвращает корзину или ErrCartNotFound.
func (r *cartRepositoryInMemory) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.items[id]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	result := cart
	return &result, nil
}

// Remove удаляет корзину. Отсутствие корзины — ErrCartNotFound.
func (r *cartRepositoryInMemory) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrCartNotFound
	}
	delete(r.items, id)
	return nil
}

var _ domain.CartService = (*cartRepositoryInMemory)(nil)
