// Package payment содержит реестр платёжных шлюзов и оркестратор
// платёжных операций: инициация платежа и reconciliation асинхронных
// callback-ов внешних платёжных систем.
package payment

import (
	"strings"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// Registry резолвит платёжный метод магазина по коду шлюза.
// Чистый lookup без side effects.
type Registry struct{}

// NewRegistry создаёт реестр.
func NewRegistry() *Registry {
	return &Registry{}
}

// Resolve возвращает активный платёжный метод магазина с данным кодом.
// Сравнение кодов регистронезависимое. Отсутствие метода —
// ErrPaymentMethodNotFound.
func (r *Registry) Resolve(store *domain.Store, code string) (domain.PaymentMethod, error) {
	for _, m := range store.ActivePaymentMethods() {
		if strings.EqualFold(m.Code(), code) {
			return m, nil
		}
	}
	return nil, domain.ErrPaymentMethodNotFound
}

// Candidates возвращает активные методы магазина, коды которых входят в
// codes, в порядке конфигурации магазина. Порядок детерминирован: именно
// в нём оркестратор опрашивает шлюзы при обработке callback-а.
func (r *Registry) Candidates(store *domain.Store, codes []string) []domain.PaymentMethod {
	result := make([]domain.PaymentMethod, 0, len(codes))
	for _, m := range store.ActivePaymentMethods() {
		for _, code := range codes {
			if strings.EqualFold(m.Code(), code) {
				result = append(result, m)
				break
			}
		}
	}
	return result
}
