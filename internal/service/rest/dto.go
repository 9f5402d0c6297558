package rest

import (
	"time"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// searchRequest — тело POST /api/order/customerOrders/search.
type searchRequest struct {
	Number        string     `json:"number"`
	StoreIDs      []string   `json:"storeIds"`
	EmployeeID    string     `json:"employeeId"`
	CustomerID    string     `json:"customerId"`
	ResponseGroup string     `json:"responseGroup"`
	StartDate     *time.Time `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
	Skip          int        `json:"skip"`
	Take          int        `json:"take"`
}

func (r searchRequest) toCriteria() domain.SearchCriteria {
	return domain.SearchCriteria{
		Number:        r.Number,
		StoreIDs:      r.StoreIDs,
		EmployeeID:    r.EmployeeID,
		CustomerID:    r.CustomerID,
		ResponseGroup: r.ResponseGroup,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Skip:          r.Skip,
		Take:          r.Take,
	}
}

type searchResponse struct {
	Orders     []orderView `json:"customerOrders"`
	TotalCount int         `json:"totalCount"`
}

type orderView struct {
	ID           string         `json:"id"`
	Number       string         `json:"number"`
	StoreID      string         `json:"storeId"`
	CustomerID   string         `json:"customerId"`
	EmployeeID   string         `json:"employeeId,omitempty"`
	Currency     string         `json:"currency"`
	LanguageCode string         `json:"languageCode,omitempty"`
	Status       string         `json:"status"`
	TotalMinor   int64          `json:"totalMinor"`
	InPayments   []paymentView  `json:"inPayments"`
	Shipments    []shipmentView `json:"shipments"`
	Scopes       []string       `json:"scopes,omitempty"`
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type paymentView struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	OrderID     string    `json:"orderId,omitempty"`
	CustomerID  string    `json:"customerId,omitempty"`
	GatewayCode string    `json:"gatewayCode,omitempty"`
	OuterID     string    `json:"outerId,omitempty"`
	Status      string    `json:"status"`
	SumMinor    int64     `json:"sumMinor"`
	Currency    string    `json:"currency,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type shipmentView struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Currency string `json:"currency,omitempty"`
	Status   string `json:"status"`
}

func toOrderView(order *domain.CustomerOrder) orderView {
	view := orderView{
		ID:           order.ID,
		Number:       order.Number,
		StoreID:      order.StoreID,
		CustomerID:   order.CustomerID,
		EmployeeID:   order.EmployeeID,
		Currency:     order.Currency,
		LanguageCode: order.LanguageCode,
		Status:       string(order.Status),
		TotalMinor:   order.TotalMinor,
		InPayments:   make([]paymentView, 0, len(order.InPayments)),
		Shipments:    make([]shipmentView, 0, len(order.Shipments)),
		Scopes:       order.Scopes,
		Version:      order.Version,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	for i := range order.InPayments {
		view.InPayments = append(view.InPayments, toPaymentView(&order.InPayments[i]))
	}
	for _, shipment := range order.Shipments {
		view.Shipments = append(view.Shipments, shipmentView{
			ID:       shipment.ID,
			Number:   shipment.Number,
			Currency: shipment.Currency,
			Status:   shipment.Status,
		})
	}
	return view
}

func toPaymentView(payment *domain.PaymentIn) paymentView {
	return paymentView{
		ID:          payment.ID,
		Number:      payment.Number,
		OrderID:     payment.OrderID,
		CustomerID:  payment.CustomerID,
		GatewayCode: payment.GatewayCode,
		OuterID:     payment.OuterID,
		Status:      string(payment.Status),
		SumMinor:    payment.SumMinor,
		Currency:    payment.Currency,
		CreatedAt:   payment.CreatedAt,
		UpdatedAt:   payment.UpdatedAt,
	}
}

// updateOrderRequest — тело PUT /api/order/customerOrders.
// Платежи и отгрузки заменяются целиком, как и в persist-слое.
type updateOrderRequest struct {
	ID           string         `json:"id" binding:"required"`
	Number       string         `json:"number"`
	StoreID      string         `json:"storeId"`
	CustomerID   string         `json:"customerId"`
	EmployeeID   string         `json:"employeeId"`
	Currency     string         `json:"currency"`
	LanguageCode string         `json:"languageCode"`
	Status       string         `json:"status"`
	TotalMinor   int64          `json:"totalMinor"`
	InPayments   []paymentView  `json:"inPayments"`
	Shipments    []shipmentView `json:"shipments"`
	Version      int64          `json:"version"`
}

func (r updateOrderRequest) toOrder() *domain.CustomerOrder {
	order := &domain.CustomerOrder{
		ID:           r.ID,
		Number:       r.Number,
		StoreID:      r.StoreID,
		CustomerID:   r.CustomerID,
		EmployeeID:   r.EmployeeID,
		Currency:     r.Currency,
		LanguageCode: r.LanguageCode,
		Status:       domain.OrderStatus(r.Status),
		TotalMinor:   r.TotalMinor,
		Version:      r.Version,
	}
	for _, p := range r.InPayments {
		order.InPayments = append(order.InPayments, domain.PaymentIn{
			ID:          p.ID,
			Number:      p.Number,
			OrderID:     p.OrderID,
			CustomerID:  p.CustomerID,
			GatewayCode: p.GatewayCode,
			OuterID:     p.OuterID,
			Status:      domain.PaymentStatus(p.Status),
			SumMinor:    p.SumMinor,
			Currency:    p.Currency,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	for _, s := range r.Shipments {
		order.Shipments = append(order.Shipments, domain.Shipment{
			ID:       s.ID,
			Number:   s.Number,
			Currency: s.Currency,
			Status:   s.Status,
		})
	}
	return order
}

// processPaymentRequest — необязательное тело запроса инициации платежа.
type processPaymentRequest struct {
	BankCardInfo *bankCardInfo `json:"bankCardInfo"`
}

type bankCardInfo struct {
	CardholderName string `json:"cardholderName"`
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CardCode       string `json:"cardCode"`
}

func (c *bankCardInfo) toDomain() *domain.BankCardInfo {
	if c == nil {
		return nil
	}
	return &domain.BankCardInfo{
		CardholderName: c.CardholderName,
		CardNumber:     c.CardNumber,
		ExpirationDate: c.ExpirationDate,
		CardCode:       c.CardCode,
	}
}

type processPaymentResponse struct {
	IsSuccess        bool   `json:"isSuccess"`
	NewPaymentStatus string `json:"newPaymentStatus,omitempty"`
	OuterID          string `json:"outerId,omitempty"`
	RedirectURL      string `json:"redirectUrl,omitempty"`
	HTMLForm         string `json:"htmlForm,omitempty"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
}

type callbackResponse struct {
	IsSuccess        bool   `json:"isSuccess"`
	NewPaymentStatus string `json:"newPaymentStatus,omitempty"`
	OrderID          string `json:"orderId,omitempty"`
	OuterID          string `json:"outerId,omitempty"`
	ReturnURL        string `json:"returnUrl,omitempty"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
}

type changeView struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"orderId"`
	OperationType string    `json:"operationType"`
	Detail        string    `json:"detail,omitempty"`
	UserName      string    `json:"userName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
