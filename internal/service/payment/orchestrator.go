package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
	"github.com/vladislavdragonenkov/order-module/internal/metrics"
)

// CallbackParamOrderID — обязательный параметр callback-а с номером либо id заказа.
const CallbackParamOrderID = "orderid"

// CallbackParamCode — опциональный параметр с кодом конкретного шлюза.
const CallbackParamCode = "code"

// ErrorMessagePaymentMethodNotFound возвращается в теле нефатального
// результата, когда ни один сконфигурированный шлюз не признал callback своим.
const ErrorMessagePaymentMethodNotFound = "Payment method not found"

// Orchestrator связывает заказ, платёж и платёжный шлюз: инициирует платёж
// и выполняет reconciliation callback-ов, внося результат обратно в заказ.
//
// Идемпотентность callback-ов ограничена правилом сопоставления по outer id
// (пустой или равный заявленному): повторный идентичный callback для уже
// финализированного платежа снова попадёт в тот же платёж и снова вызовет
// пост-обработку шлюза. Дедупликация сверх этого — контракт самого шлюза.
type Orchestrator struct {
	orders    domain.OrderRepository
	stores    domain.StoreService
	registry  *Registry
	changeLog domain.ChangeLogRepository
	outbox    domain.EventOutbox
	logger    *log.Entry
	metrics   *metrics.PaymentMetrics
}

// NewOrchestrator создаёт оркестратор с зависимостями.
func NewOrchestrator(
	orders domain.OrderRepository,
	stores domain.StoreService,
	registry *Registry,
	changeLog domain.ChangeLogRepository,
	outbox domain.EventOutbox,
	logger *log.Entry,
) *Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "payment-orchestrator")
	}
	return &Orchestrator{
		orders:    orders,
		stores:    stores,
		registry:  registry,
		changeLog: changeLog,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewPaymentMetrics(),
	}
}

// NewOrchestratorWithoutMetrics создаёт оркестратор без метрик (для тестов).
func NewOrchestratorWithoutMetrics(
	orders domain.OrderRepository,
	stores domain.StoreService,
	registry *Registry,
	changeLog domain.ChangeLogRepository,
	outbox domain.EventOutbox,
	logger *log.Entry,
) *Orchestrator {
	o := NewOrchestrator(orders, stores, registry, changeLog, outbox, logger)
	o.metrics = nil
	return o
}

// InitiatePayment регистрирует платёж заказа во внешней платёжной системе.
// Заказ резолвится по id, затем по номеру; платёж ищется среди InPayments;
// шлюз — по gateway code платежа среди активных методов магазина. Любое
// отсутствующее звено фатально, и до вызова шлюза ничего не персистится.
func (o *Orchestrator) InitiatePayment(ctx context.Context, orderID, paymentID string, card *domain.BankCardInfo) (domain.ProcessPaymentResult, error) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.RecordPaymentInitiated()
		defer func() {
			o.metrics.RecordInitiateDuration(time.Since(start))
		}()
	}

	order, err := o.resolveOrderByIDThenNumber(ctx, orderID)
	if err != nil {
		return domain.ProcessPaymentResult{}, err
	}

	payment := order.PaymentByID(paymentID)
	if payment == nil {
		return domain.ProcessPaymentResult{}, fmt.Errorf("payment %q in order %q: %w", paymentID, order.ID, domain.ErrPaymentNotFound)
	}

	store, err := o.stores.GetByID(ctx, order.StoreID)
	if err != nil {
		return domain.ProcessPaymentResult{}, fmt.Errorf("store %q: %w", order.StoreID, err)
	}

	gateway, err := o.registry.Resolve(store, payment.GatewayCode)
	if err != nil {
		return domain.ProcessPaymentResult{}, fmt.Errorf("gateway %q: %w", payment.GatewayCode, err)
	}

	result, err := gateway.ProcessPayment(domain.ProcessPaymentContext{
		Order:    order,
		Payment:  payment,
		Store:    store,
		CardInfo: card,
	})
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordPaymentFailed()
		}
		return domain.ProcessPaymentResult{}, fmt.Errorf("process payment via %q: %w", gateway.Code(), err)
	}

	// Outer id — якорь идемпотентности для сопоставления будущих callback-ов.
	if result.OuterID != "" {
		payment.OuterID = result.OuterID
	}
	if result.NewPaymentStatus != "" {
		payment.Status = result.NewPaymentStatus
	}

	if err := o.persistOrder(ctx, order, "PaymentInitiated", payment.ID); err != nil {
		return domain.ProcessPaymentResult{}, err
	}

	if o.metrics != nil && result.IsSuccess {
		o.metrics.RecordPaymentSucceeded()
	}
	o.logger.WithFields(log.Fields{
		"order_id":   order.ID,
		"payment_id": payment.ID,
		"gateway":    gateway.Code(),
		"success":    result.IsSuccess,
	}).Info("payment initiated")

	return result, nil
}

// ReconcileCallback обрабатывает сырой parameter bag платёжного callback-а.
// Заказ резолвится сперва по номеру (шлюзы обычно возвращают человекочитаемый
// номер), затем по id. Кандидаты — активные методы магазина, чьи коды
// используются платежами заказа; каждый по очереди валидирует, адресован ли
// callback ему. Если никто не признал callback — возвращается нефатальный
// результат с пояснением: callback-endpoint обязан отвечать 200, иначе шлюз
// будет ретраить бесконечно.
func (o *Orchestrator) ReconcileCallback(ctx context.Context, params url.Values) (*domain.PostProcessPaymentResult, error) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.RecordCallbackReceived()
		defer func() {
			o.metrics.RecordCallbackDuration(time.Since(start))
		}()
	}

	orderID := params.Get(CallbackParamOrderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingParameter, CallbackParamOrderID)
	}

	order, err := o.resolveOrderByNumberThenID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	store, err := o.stores.GetByID(ctx, order.StoreID)
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", order.StoreID, err)
	}

	candidates := o.registry.Candidates(store, order.GatewayCodes())
	if code := params.Get(CallbackParamCode); code != "" {
		narrowed := candidates[:0]
		for _, m := range candidates {
			if strings.EqualFold(m.Code(), code) {
				narrowed = append(narrowed, m)
			}
		}
		candidates = narrowed
	}

	for _, gateway := range candidates {
		validation := gateway.ValidatePostProcessRequest(params)
		if !validation.IsSuccess {
			continue
		}
		return o.postProcess(ctx, order, store, gateway, validation.OuterID, params)
	}

	if o.metrics != nil {
		o.metrics.RecordCallbackUnmatched()
	}
	o.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"params":   len(params),
	}).Warn("no configured gateway validated payment callback")

	return &domain.PostProcessPaymentResult{ErrorMessage: ErrorMessagePaymentMethodNotFound}, nil
}

// postProcess выполняет пост-обработку callback-а первым признавшим его шлюзом.
func (o *Orchestrator) postProcess(
	ctx context.Context,
	order *domain.CustomerOrder,
	store *domain.Store,
	gateway domain.PaymentMethod,
	outerID string,
	params url.Values,
) (*domain.PostProcessPaymentResult, error) {
	// Сопоставляем платёж: outer id либо ещё не присвоен, либо равен
	// заявленному. Callback на чужой outer id — фатальный not-found.
	var payment *domain.PaymentIn
	for i := range order.InPayments {
		if order.InPayments[i].OuterID == "" || order.InPayments[i].OuterID == outerID {
			payment = &order.InPayments[i]
			break
		}
	}
	if payment == nil {
		return nil, fmt.Errorf("outer id %q in order %q: %w", outerID, order.ID, domain.ErrPaymentNotFound)
	}

	result, err := gateway.PostProcessPayment(domain.PostProcessPaymentContext{
		Order:      order,
		Payment:    payment,
		Store:      store,
		OuterID:    outerID,
		Parameters: params,
	})
	if err != nil {
		return nil, fmt.Errorf("post process via %q: %w", gateway.Code(), err)
	}

	if result != nil {
		if err := o.persistOrder(ctx, order, "PaymentPostProcessed", payment.ID); err != nil {
			return nil, err
		}
		// Номер заказа нужен вызывающей стороне как человекочитаемая ссылка
		// независимо от того, каким путём заказ был найден.
		result.OrderID = order.Number

		if o.metrics != nil {
			o.metrics.RecordCallbackProcessed()
		}
		o.logger.WithFields(log.Fields{
			"order_id":   order.ID,
			"payment_id": payment.ID,
			"gateway":    gateway.Code(),
			"outer_id":   outerID,
			"success":    result.IsSuccess,
		}).Info("payment callback processed")
	}

	return result, nil
}

// resolveOrderByIDThenNumber ищет заказ по id с fallback-ом на поиск по номеру.
func (o *Orchestrator) resolveOrderByIDThenNumber(ctx context.Context, id string) (*domain.CustomerOrder, error) {
	orders, err := o.orders.GetByIDs(ctx, []string{id}, domain.ResponseGroupFull)
	if err != nil {
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	if len(orders) > 0 {
		return &orders[0], nil
	}
	return o.searchByNumber(ctx, id)
}

// resolveOrderByNumberThenID ищет заказ по номеру с fallback-ом на прямой get.
func (o *Orchestrator) resolveOrderByNumberThenID(ctx context.Context, idOrNumber string) (*domain.CustomerOrder, error) {
	order, err := o.searchByNumber(ctx, idOrNumber)
	if err == nil {
		return order, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	orders, err := o.orders.GetByIDs(ctx, []string{idOrNumber}, domain.ResponseGroupFull)
	if err != nil {
		return nil, fmt.Errorf("get order %q: %w", idOrNumber, err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order %q: %w", idOrNumber, domain.ErrOrderNotFound)
	}
	return &orders[0], nil
}

func (o *Orchestrator) searchByNumber(ctx context.Context, number string) (*domain.CustomerOrder, error) {
	result, err := o.orders.Search(ctx, domain.SearchCriteria{
		Number:        number,
		ResponseGroup: domain.ResponseGroupFull,
		Take:          1,
	})
	if err != nil {
		return nil, fmt.Errorf("search order by number %q: %w", number, err)
	}
	if len(result.Orders) == 0 {
		return nil, fmt.Errorf("order %q: %w", number, domain.ErrOrderNotFound)
	}
	return &result.Orders[0], nil
}

// persistOrder сохраняет мутированный заказ и фиксирует событие в change log
// и outbox. Отменённый контекст прерывает сохранение до его начала: частично
// применённые платёжные мутации не должны персиститься при отмене запроса.
func (o *Orchestrator) persistOrder(ctx context.Context, order *domain.CustomerOrder, operation, paymentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	order.UpdatedAt = time.Now().UTC()
	if err := o.orders.Save(ctx, []domain.CustomerOrder{*order}); err != nil {
		return fmt.Errorf("save order %q: %w", order.ID, err)
	}
	order.Version++

	o.appendChangeLog(ctx, order, operation, paymentID)
	o.emitEvent(ctx, order, operation, paymentID)
	return nil
}

func (o *Orchestrator) appendChangeLog(ctx context.Context, order *domain.CustomerOrder, operation, paymentID string) {
	if o.changeLog == nil {
		return
	}
	entry := domain.OperationLog{
		OrderID:       order.ID,
		OperationType: operation,
		Detail:        fmt.Sprintf("payment %s", paymentID),
		CreatedAt:     time.Now().UTC(),
	}
	if err := o.changeLog.Append(ctx, entry); err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Warn("append change log failed")
	}
}

func (o *Orchestrator) emitEvent(ctx context.Context, order *domain.CustomerOrder, operation, paymentID string) {
	if o.outbox == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"order_id":   order.ID,
		"number":     order.Number,
		"payment_id": paymentID,
		"operation":  operation,
		"ts":         time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Error("marshal payment event failed")
		return
	}
	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     "order.payment_processed",
		Payload:       payload,
	}
	if _, err := o.outbox.Enqueue(ctx, msg); err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Error("enqueue payment event failed")
	}
}
