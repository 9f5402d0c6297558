package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// NewShipmentDocument возвращает прототип отгрузки для заказа: новый id,
// валюта заказа и номер по шаблону из настроек магазина. Документ не
// персистится — его доводит до ума и сохраняет вызывающая сторона.
func (s *Service) NewShipmentDocument(ctx context.Context, orderID string) (*domain.Shipment, error) {
	order, store, err := s.orderWithStore(ctx, orderID)
	if err != nil {
		return nil, err
	}

	template := store.Setting(domain.SettingShipmentNumberTemplate, domain.DefaultShipmentNumberTemplate)
	return &domain.Shipment{
		ID:       uuid.NewString(),
		Number:   s.numbers.GenerateNumber(template),
		Currency: order.Currency,
		Status:   "New",
	}, nil
}

// NewPaymentDocument возвращает прототип входящего платежа для заказа.
func (s *Service) NewPaymentDocument(ctx context.Context, orderID string) (*domain.PaymentIn, error) {
	order, store, err := s.orderWithStore(ctx, orderID)
	if err != nil {
		return nil, err
	}

	template := store.Setting(domain.SettingPaymentNumberTemplate, domain.DefaultPaymentNumberTemplate)
	return &domain.PaymentIn{
		ID:         uuid.NewString(),
		Number:     s.numbers.GenerateNumber(template),
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Currency:   order.Currency,
		Status:     domain.PaymentStatusNew,
	}, nil
}

func (s *Service) orderWithStore(ctx context.Context, orderID string) (*domain.CustomerOrder, *domain.Store, error) {
	orders, err := s.orders.GetByIDs(ctx, []string{orderID}, domain.ResponseGroupFull)
	if err != nil {
		return nil, nil, fmt.Errorf("get order %q: %w", orderID, err)
	}
	if len(orders) == 0 {
		return nil, nil, fmt.Errorf("order %q: %w", orderID, domain.ErrOrderNotFound)
	}
	order := &orders[0]

	store, err := s.stores.GetByID(ctx, order.StoreID)
	if err != nil {
		return nil, nil, fmt.Errorf("store %q: %w", order.StoreID, err)
	}
	return order, store, nil
}
