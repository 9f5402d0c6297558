package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusNew — заказ создан, обработка ещё не началась.
	OrderStatusNew OrderStatus = "new"
	// OrderStatusProcessing — заказ в обработке.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusCompleted — заказ исполнен.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Response group флаги управляют составом возвращаемых полей заказа.
// WithPrices доступен только держателям permission на чтение цен.
const (
	ResponseGroupDefault    = "Default"
	ResponseGroupWithPrices = "WithPrices"
	ResponseGroupFull       = "Full"
)

// CustomerOrder агрегирует заказ покупателя вместе с платежами и отгрузками.
type CustomerOrder struct {
	ID           string
	Number       string
	StoreID      string
	CustomerID   string
	EmployeeID   string
	Currency     string
	LanguageCode string
	Status       OrderStatus
	TotalMinor   int64

	InPayments []PaymentIn
	Shipments  []Shipment

	// Scopes заполняется транзиентно при выдаче наружу: какие scope-строки
	// применимы к этому заказу для UI ACL-проверок. Не персистится.
	Scopes []string

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shipment представляет отгрузку в составе заказа.
type Shipment struct {
	ID       string
	Number   string
	Currency string
	Status   string
}

// PaymentByID возвращает входящий платёж заказа по внутреннему идентификатору.
func (o *CustomerOrder) PaymentByID(id string) *PaymentIn {
	for i := range o.InPayments {
		if o.InPayments[i].ID == id {
			return &o.InPayments[i]
		}
	}
	return nil
}

// GatewayCodes возвращает дедуплицированный список кодов платёжных шлюзов,
// которыми пользуются платежи заказа. Порядок следования платежей сохраняется.
func (o *CustomerOrder) GatewayCodes() []string {
	seen := make(map[string]struct{}, len(o.InPayments))
	codes := make([]string, 0, len(o.InPayments))
	for _, p := range o.InPayments {
		if p.GatewayCode == "" {
			continue
		}
		if _, ok := seen[p.GatewayCode]; ok {
			continue
		}
		seen[p.GatewayCode] = struct{}{}
		codes = append(codes, p.GatewayCode)
	}
	return codes
}

// FullResponseGroup сообщает, запрошен ли полный состав заказа.
func FullResponseGroup(respGroup string) bool {
	return respGroup == ResponseGroupFull
}
