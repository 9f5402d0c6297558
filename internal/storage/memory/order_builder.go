package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// OrderNumberTemplate — шаблон номера нового заказа.
const OrderNumberTemplate = "CO{0:yyMMdd}-{1:D5}"

// orderBuilder — упрощённый OrderBuilder для разработки и тестов: создаёт
// заказ из корзины и сразу персистит его. Полное размещение заказа (позиции,
// итоги, нотификации) — ответственность платформы.
type orderBuilder struct {
	orders  domain.OrderRepository
	numbers domain.NumberGenerator
}

// NewOrderBuilder возвращает in-memory реализацию OrderBuilder.
func NewOrderBuilder(orders domain.OrderRepository, numbers domain.NumberGenerator) *orderBuilder {
	return &orderBuilder{orders: orders, numbers: numbers}
}

// PlaceOrderFromCart создаёт и сохраняет заказ на основе корзины.
func (b *orderBuilder) PlaceOrderFromCart(ctx context.Context, cart *domain.Cart) (*domain.CustomerOrder, error) {
	now := time.Now().UTC()
	order := domain.CustomerOrder{
		ID:         uuid.NewString(),
		Number:     b.numbers.GenerateNumber(OrderNumberTemplate),
		StoreID:    cart.StoreID,
		CustomerID: cart.CustomerID,
		Currency:   cart.Currency,
		Status:     domain.OrderStatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := b.orders.Save(ctx, []domain.CustomerOrder{order}); err != nil {
		return nil, fmt.Errorf("save order from cart %q: %w", cart.ID, err)
	}
	order.Version++
	return &order, nil
}

var _ domain.OrderBuilder = (*orderBuilder)(nil)
