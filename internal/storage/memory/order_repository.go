package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository для
// локальной разработки и тестов.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.CustomerOrder
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() *orderRepositoryInMemory {
	return &orderRepositoryInMemory{items: make(map[string]domain.CustomerOrder)}
}

// Seed кладёт заказ в хранилище без проверки версии (для тестов и демо-данных).
func (r *orderRepositoryInMemory) Seed(orders ...domain.CustomerOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range orders {
		r.items[order.ID] = cloneOrder(order)
	}
}

// Search фильтрует заказы по критериям и возвращает страницу результатов.
func (r *orderRepositoryInMemory) Search(_ context.Context, criteria domain.SearchCriteria) (domain.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.CustomerOrder, 0, len(r.items))
	for _, order := range r.items {
		if !matches(order, criteria) {
			continue
		}
		matched = append(matched, projectOrder(order, criteria.ResponseGroup))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if criteria.Skip > 0 {
		if criteria.Skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[criteria.Skip:]
		}
	}
	if criteria.Take > 0 && len(matched) > criteria.Take {
		matched = matched[:criteria.Take]
	}

	return domain.SearchResult{Orders: matched, TotalCount: total}, nil
}

// GetByIDs возвращает найденные заказы; отсутствующие id просто пропускаются.
func (r *orderRepositoryInMemory) GetByIDs(_ context.Context, ids []string, respGroup string) ([]domain.CustomerOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CustomerOrder, 0, len(ids))
	for _, id := range ids {
		if order, ok := r.items[id]; ok {
			result = append(result, projectOrder(order, respGroup))
		}
	}
	return result, nil
}

// Save upsert-ит агрегаты с проверкой версии (optimistic locking).
func (r *orderRepositoryInMemory) Save(_ context.Context, orders []domain.CustomerOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, order := range orders {
		if current, ok := r.items[order.ID]; ok && current.Version != order.Version {
			return domain.ErrVersionConflict
		}
		order.Version++
		// Транзиентные scope-строки не персистятся.
		order.Scopes = nil
		r.items[order.ID] = cloneOrder(order)
	}
	return nil
}

// All возвращает копии всех заказов (для статистики и тестов).
func (r *orderRepositoryInMemory) All() []domain.CustomerOrder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CustomerOrder, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, cloneOrder(order))
	}
	return result
}

func matches(order domain.CustomerOrder, criteria domain.SearchCriteria) bool {
	if criteria.Number != "" && !strings.EqualFold(order.Number, criteria.Number) {
		return false
	}
	if len(criteria.StoreIDs) > 0 {
		found := false
		for _, id := range criteria.StoreIDs {
			if order.StoreID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if criteria.EmployeeID != "" && order.EmployeeID != criteria.EmployeeID {
		return false
	}
	if criteria.CustomerID != "" && order.CustomerID != criteria.CustomerID {
		return false
	}
	if criteria.StartDate != nil && order.CreatedAt.Before(*criteria.StartDate) {
		return false
	}
	if criteria.EndDate != nil && order.CreatedAt.After(*criteria.EndDate) {
		return false
	}
	return true
}

// projectOrder возвращает копию заказа в составе respGroup: без ценовой
// группы денежные поля обнуляются и наружу не выдаются.
func projectOrder(order domain.CustomerOrder, respGroup string) domain.CustomerOrder {
	result := cloneOrder(order)
	if respGroup == domain.ResponseGroupWithPrices || respGroup == domain.ResponseGroupFull {
		return result
	}
	result.TotalMinor = 0
	for i := range result.InPayments {
		result.InPayments[i].SumMinor = 0
	}
	return result
}

func cloneOrder(order domain.CustomerOrder) domain.CustomerOrder {
	result := order
	result.InPayments = append([]domain.PaymentIn(nil), order.InPayments...)
	result.Shipments = append([]domain.Shipment(nil), order.Shipments...)
	result.Scopes = append([]string(nil), order.Scopes...)
	return result
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
