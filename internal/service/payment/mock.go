package payment

import (
	"net/url"
	"sync"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// MockGateway — конфигурируемая заглушка PaymentMethod для тестов и
// локальной разработки. Валидирует callback, если параметр "code"
// совпадает с кодом шлюза, и подставляет outer id из параметра "outerId".
type MockGateway struct {
	GatewayCode string
	Active      bool

	ProcessResult     domain.ProcessPaymentResult
	ProcessErr        error
	PostProcessResult *domain.PostProcessPaymentResult
	PostProcessErr    error

	mu               sync.Mutex
	processCalls     int
	validateCalls    int
	postProcessCalls int
}

// NewMockGateway возвращает активный mock с успешным сценарием по умолчанию.
func NewMockGateway(code string) *MockGateway {
	return &MockGateway{
		GatewayCode: code,
		Active:      true,
		ProcessResult: domain.ProcessPaymentResult{
			IsSuccess:        true,
			NewPaymentStatus: domain.PaymentStatusPending,
		},
		PostProcessResult: &domain.PostProcessPaymentResult{
			IsSuccess:        true,
			NewPaymentStatus: domain.PaymentStatusPaid,
		},
	}
}

func (m *MockGateway) Code() string   { return m.GatewayCode }
func (m *MockGateway) IsActive() bool { return m.Active }

// ProcessPayment возвращает заранее настроенный результат и считает вызовы.
func (m *MockGateway) ProcessPayment(_ domain.ProcessPaymentContext) (domain.ProcessPaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processCalls++
	return m.ProcessResult, m.ProcessErr
}

// ValidatePostProcessRequest признаёт callback своим по параметру "code".
func (m *MockGateway) ValidatePostProcessRequest(params url.Values) domain.ValidationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validateCalls++
	if params.Get("code") != m.GatewayCode {
		return domain.ValidationResult{}
	}
	return domain.ValidationResult{
		IsSuccess: true,
		OuterID:   params.Get("outerId"),
	}
}

// PostProcessPayment применяет настроенный статус к платежу из контекста.
func (m *MockGateway) PostProcessPayment(ctx domain.PostProcessPaymentContext) (*domain.PostProcessPaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postProcessCalls++
	if m.PostProcessErr != nil {
		return nil, m.PostProcessErr
	}
	if m.PostProcessResult == nil {
		return nil, nil
	}
	result := *m.PostProcessResult
	if ctx.Payment != nil {
		if ctx.Payment.OuterID == "" && ctx.OuterID != "" {
			ctx.Payment.OuterID = ctx.OuterID
		}
		if result.NewPaymentStatus != "" {
			ctx.Payment.Status = result.NewPaymentStatus
		}
	}
	result.OuterID = ctx.OuterID
	return &result, nil
}

// Calls возвращает счётчики вызовов (process, validate, postProcess).
func (m *MockGateway) Calls() (int, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processCalls, m.validateCalls, m.postProcessCalls
}

var _ domain.PaymentMethod = (*MockGateway)(nil)
