package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
	"github.com/vladislavdragonenkov/order-module/internal/service/order"
	"github.com/vladislavdragonenkov/order-module/internal/service/payment"
	"github.com/vladislavdragonenkov/order-module/internal/service/stats"
)

// HeaderUserName — доверенный заголовок с именем вызывающего пользователя.
// Аутентификацию выполняет внешний шлюз, сюда приходит уже проверенное имя.
const HeaderUserName = "X-User-Name"

const anonymousUser = "anonymous"

// Handler связывает HTTP-транспорт с сервисами модуля заказов.
type Handler struct {
	orders   *order.Service
	payments *payment.Orchestrator
	stats    *stats.Service
	logger   *log.Entry
}

// NewHandler создаёт HTTP-обработчик модуля заказов.
func NewHandler(orders *order.Service, payments *payment.Orchestrator, statistics *stats.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "rest-handler")
	}
	return &Handler{
		orders:   orders,
		payments: payments,
		stats:    statistics,
		logger:   logger,
	}
}

func callerName(c *gin.Context) string {
	if name := c.GetHeader(HeaderUserName); name != "" {
		return name
	}
	return anonymousUser
}

// respondError транслирует доменные ошибки в HTTP-статусы. Отказ в доступе
// никогда не маскируется под пустой результат или not found.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMissingParameter):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAccessDenied):
		status = http.StatusForbidden
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsVersionConflict(err):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// SearchOrders обрабатывает POST /api/order/customerOrders/search.
func (h *Handler) SearchOrders(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orders.Search(c.Request.Context(), callerName(c), req.toCriteria())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := searchResponse{
		Orders:     make([]orderView, 0, len(result.Orders)),
		TotalCount: result.TotalCount,
	}
	for i := range result.Orders {
		resp.Orders = append(resp.Orders, toOrderView(&result.Orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrderByID обрабатывает GET /api/order/customerOrders/:id.
func (h *Handler) GetOrderByID(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), callerName(c), c.Param("id"), c.Query("respGroup"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// GetOrderByNumber обрабатывает GET /api/order/customerOrders/number/:number.
func (h *Handler) GetOrderByNumber(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Request.Context(), callerName(c), c.Param("number"), c.Query("respGroup"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// CreateOrderFromCart обрабатывает POST /api/order/customerOrders/:id,
// где :id — идентификатор корзины.
func (h *Handler) CreateOrderFromCart(c *gin.Context) {
	order, err := h.orders.CreateOrderFromCart(c.Request.Context(), callerName(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// UpdateOrder обрабатывает PUT /api/order/customerOrders.
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := req.toOrder()
	if err := h.orders.Update(c.Request.Context(), callerName(c), order); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// ListChanges обрабатывает GET /api/order/customerOrders/:id/changes.
func (h *Handler) ListChanges(c *gin.Context) {
	changes, err := h.orders.Changes(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	views := make([]changeView, 0, len(changes))
	for _, entry := range changes {
		views = append(views, changeView{
			ID:            entry.ID,
			OrderID:       entry.OrderID,
			OperationType: entry.OperationType,
			Detail:        entry.Detail,
			UserName:      entry.UserName,
			CreatedAt:     entry.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, views)
}

// NewShipmentDocument обрабатывает GET /api/order/customerOrders/:id/shipments/new.
func (h *Handler) NewShipmentDocument(c *gin.Context) {
	shipment, err := h.orders.NewShipmentDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentView{
		ID:       shipment.ID,
		Number:   shipment.Number,
		Currency: shipment.Currency,
		Status:   shipment.Status,
	})
}

// NewPaymentDocument обрабатывает GET /api/order/customerOrders/:id/payments/new.
func (h *Handler) NewPaymentDocument(c *gin.Context) {
	payment, err := h.orders.NewPaymentDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentView(payment))
}

// ProcessPayment обрабатывает POST /api/order/customerOrders/:id/processPayment/:paymentId.
func (h *Handler) ProcessPayment(c *gin.Context) {
	var req processPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.payments.InitiatePayment(
		c.Request.Context(),
		c.Param("id"),
		c.Param("paymentId"),
		req.BankCardInfo.toDomain(),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, processPaymentResponse{
		IsSuccess:        result.IsSuccess,
		NewPaymentStatus: string(result.NewPaymentStatus),
		OuterID:          result.OuterID,
		RedirectURL:      result.RedirectURL,
		HTMLForm:         result.HTMLForm,
		ErrorMessage:     result.ErrorMessage,
	})
}

// PaymentCallback обрабатывает POST /api/paymentcallback. Несопоставленный
// callback возвращает 200 с пояснением в теле: внешние шлюзы агрессивно
// ретраят любой не-успешный статус.
func (h *Handler) PaymentCallback(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.payments.ReconcileCallback(c.Request.Context(), c.Request.Form)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, callbackResponse{
		IsSuccess:        result.IsSuccess,
		NewPaymentStatus: string(result.NewPaymentStatus),
		OrderID:          result.OrderID,
		OuterID:          result.OuterID,
		ReturnURL:        result.ReturnURL,
		ErrorMessage:     result.ErrorMessage,
	})
}

// DashboardStatistics обрабатывает GET /api/order/dashboardStatistics.
func (h *Handler) DashboardStatistics(c *gin.Context) {
	start, err := parseDateParam(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date: " + err.Error()})
		return
	}
	end, err := parseDateParam(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date: " + err.Error()})
		return
	}

	statistics, err := h.stats.Collect(c.Request.Context(), start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statistics)
}

// parseDateParam принимает дату как RFC3339 или как YYYY-MM-DD.
// Пустое значение означает «не задано», дефолты применяет сервис статистики.
func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", raw)
}
