// Package order реализует верхнюю границу модуля заказов: scope-ограниченный
// поиск, чтение по id/номеру с post-fetch авторизацией, конвертацию корзины
// в заказ под keyed-lock-ом и вспомогательные read-пути.
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
	"github.com/vladislavdragonenkov/order-module/internal/keymutex"
	"github.com/vladislavdragonenkov/order-module/internal/service/scope"
)

// Service — фасад модуля заказов, потребляемый тонким транспортным слоем.
type Service struct {
	orders    domain.OrderRepository
	stores    domain.StoreService
	carts     domain.CartService
	builder   domain.OrderBuilder
	numbers   domain.NumberGenerator
	changeLog domain.ChangeLogRepository
	outbox    domain.EventOutbox
	filter    *scope.Filter
	cartLocks *keymutex.KeyMutex
	logger    *log.Entry
}

// NewService конструирует сервис с зависимостями.
func NewService(
	orders domain.OrderRepository,
	stores domain.StoreService,
	carts domain.CartService,
	builder domain.OrderBuilder,
	numbers domain.NumberGenerator,
	changeLog domain.ChangeLogRepository,
	outbox domain.EventOutbox,
	filter *scope.Filter,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		orders:    orders,
		stores:    stores,
		carts:     carts,
		builder:   builder,
		numbers:   numbers,
		changeLog: changeLog,
		outbox:    outbox,
		filter:    filter,
		cartLocks: keymutex.New(),
		logger:    logger,
	}
}

// Search выполняет поиск заказов, предварительно сузив критерии до области
// видимости caller-а. Переданные критерии после диспатча не мутируются.
func (s *Service) Search(ctx context.Context, userName string, criteria domain.SearchCriteria) (domain.SearchResult, error) {
	narrowed, err := s.filter.Narrow(ctx, userName, criteria)
	if err != nil {
		return domain.SearchResult{}, err
	}
	return s.orders.Search(ctx, narrowed)
}

// GetByID возвращает заказ по id. Конвейер: корректировка response group →
// загрузка → post-fetch авторизация (проставляет Scopes) → выдача.
func (s *Service) GetByID(ctx context.Context, userName, id, respGroup string) (*domain.CustomerOrder, error) {
	respGroup, err := s.filter.ApplyResponseGroup(ctx, userName, respGroup)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.GetByIDs(ctx, []string{id}, respGroup)
	if err != nil {
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order %q: %w", id, domain.ErrOrderNotFound)
	}

	return s.authorize(ctx, userName, &orders[0])
}

// GetByNumber возвращает заказ по номеру тем же конвейером, что и GetByID:
// ценовую фильтрацию нельзя обойти альтернативным путём загрузки.
func (s *Service) GetByNumber(ctx context.Context, userName, number, respGroup string) (*domain.CustomerOrder, error) {
	respGroup, err := s.filter.ApplyResponseGroup(ctx, userName, respGroup)
	if err != nil {
		return nil, err
	}

	result, err := s.orders.Search(ctx, domain.SearchCriteria{
		Number:        number,
		ResponseGroup: respGroup,
		Take:          1,
	})
	if err != nil {
		return nil, fmt.Errorf("search order by number %q: %w", number, err)
	}
	if len(result.Orders) == 0 {
		return nil, fmt.Errorf("order %q: %w", number, domain.ErrOrderNotFound)
	}

	return s.authorize(ctx, userName, &result.Orders[0])
}

// authorize — стадия post-fetch проверки конвейера чтения.
func (s *Service) authorize(ctx context.Context, userName string, order *domain.CustomerOrder) (*domain.CustomerOrder, error) {
	if err := s.filter.Authorize(ctx, userName, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrderFromCart создаёт заказ из корзины. Операция сериализуется по id
// корзины: конкурентные дубли (double click, retry после таймаута) не должны
// конвертировать одну корзину в два заказа.
func (s *Service) CreateOrderFromCart(ctx context.Context, userName, cartID string) (*domain.CustomerOrder, error) {
	ok, err := s.filter.HasPermission(ctx, userName, domain.PermissionOrderCreate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("create order: %w", domain.ErrAccessDenied)
	}

	var order *domain.CustomerOrder
	err = s.cartLocks.WithLock(cartID, func() error {
		cart, err := s.carts.GetByID(ctx, cartID)
		if err != nil {
			return fmt.Errorf("cart %q: %w", cartID, err)
		}
		order, err = s.builder.PlaceOrderFromCart(ctx, cart)
		if err != nil {
			return err
		}
		// Корзина потребляется конвертацией: повторный запрос с тем же id
		// получит ErrCartNotFound вместо второго заказа.
		if err := s.carts.Remove(ctx, cartID); err != nil {
			s.logger.WithError(err).WithField("cart_id", cartID).Warn("remove converted cart failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.appendChangeLog(ctx, order.ID, "OrderCreatedFromCart", cartID, userName)
	s.emitEvent(ctx, order, "order.created_from_cart", map[string]any{"cart_id": cartID})

	s.logger.WithFields(log.Fields{
		"cart_id":  cartID,
		"order_id": order.ID,
		"user":     userName,
	}).Info("order created from cart")

	return order, nil
}

// Update сохраняет изменённый заказ после scope-проверки.
func (s *Service) Update(ctx context.Context, userName string, order *domain.CustomerOrder) error {
	if err := s.filter.Authorize(ctx, userName, order); err != nil {
		return err
	}

	order.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(ctx, []domain.CustomerOrder{*order}); err != nil {
		return fmt.Errorf("save order %q: %w", order.ID, err)
	}
	order.Version++

	s.appendChangeLog(ctx, order.ID, "OrderUpdated", "", userName)
	s.emitEvent(ctx, order, "order.changed", nil)
	return nil
}

// Changes возвращает историю операций заказа в хронологическом порядке.
func (s *Service) Changes(ctx context.Context, orderID string) ([]domain.OperationLog, error) {
	orders, err := s.orders.GetByIDs(ctx, []string{orderID}, domain.ResponseGroupDefault)
	if err != nil {
		return nil, fmt.Errorf("get order %q: %w", orderID, err)
	}
	if len(orders) == 0 {
		return []domain.OperationLog{}, nil
	}
	return s.changeLog.List(ctx, orderID)
}

func (s *Service) appendChangeLog(ctx context.Context, orderID, operation, detail, userName string) {
	if s.changeLog == nil {
		return
	}
	entry := domain.OperationLog{
		OrderID:       orderID,
		OperationType: operation,
		Detail:        detail,
		UserName:      userName,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.changeLog.Append(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("append change log failed")
	}
}

func (s *Service) emitEvent(ctx context.Context, order *domain.CustomerOrder, eventType string, extra map[string]any) {
	if s.outbox == nil {
		return
	}
	body := map[string]any{
		"order_id": order.ID,
		"number":   order.Number,
		"store_id": order.StoreID,
		"status":   string(order.Status),
		"ts":       time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range extra {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("marshal order event failed")
		return
	}
	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       payload,
	}
	if _, err := s.outbox.Enqueue(ctx, msg); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("enqueue order event failed")
	}
}
