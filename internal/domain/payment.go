package domain

import (
	"net/url"
	"time"
)

// PaymentStatus описывает состояние входящего платежа.
type PaymentStatus string

const (
	// PaymentStatusNew — платёж создан, шлюз ещё не вызывался.
	PaymentStatusNew PaymentStatus = "new"
	// PaymentStatusPending — платёж инициирован во внешней платёжной системе.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusAuthorized — сумма зарезервирована шлюзом.
	PaymentStatusAuthorized PaymentStatus = "authorized"
	// PaymentStatusPaid — деньги получены.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusDeclined — шлюз отклонил платёж.
	PaymentStatusDeclined PaymentStatus = "declined"
)

// PaymentIn описывает входящий платёж заказа.
type PaymentIn struct {
	ID          string
	Number      string
	OrderID     string
	CustomerID  string
	GatewayCode string
	// OuterID присваивается внешней платёжной системой после инициации платежа.
	// Пустой, пока шлюз не ответил; после присвоения служит ключом сопоставления
	// для последующих callback-ов.
	OuterID   string
	Status    PaymentStatus
	SumMinor  int64
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BankCardInfo передаётся шлюзу при инициации платежа. Содержимое
// не сохраняется и не логируется.
type BankCardInfo struct {
	CardholderName string
	CardNumber     string
	ExpirationDate string
	CardCode       string
}

// ProcessPaymentContext — контекст вычисления для инициации платежа.
type ProcessPaymentContext struct {
	Order    *CustomerOrder
	Payment  *PaymentIn
	Store    *Store
	CardInfo *BankCardInfo
}

// ProcessPaymentResult возвращается шлюзом после инициации платежа.
type ProcessPaymentResult struct {
	IsSuccess        bool
	NewPaymentStatus PaymentStatus
	OuterID          string
	RedirectURL      string
	ErrorMessage     string
	HTMLForm         string
}

// ValidationResult — ответ шлюза на вопрос «адресован ли этот callback тебе».
type ValidationResult struct {
	IsSuccess bool
	OuterID   string
}

// PostProcessPaymentContext — контекст пост-обработки callback-а.
type PostProcessPaymentContext struct {
	Order      *CustomerOrder
	Payment    *PaymentIn
	Store      *Store
	OuterID    string
	Parameters url.Values
}

// PostProcessPaymentResult возвращается шлюзом после пост-обработки callback-а.
// OrderId проставляется оркестратором номером заказа перед возвратом наружу.
type PostProcessPaymentResult struct {
	IsSuccess        bool
	NewPaymentStatus PaymentStatus
	OrderID          string
	OuterID          string
	ReturnURL        string
	ErrorMessage     string
}

// PaymentMethod — способность платёжного шлюза, сконфигурированного на магазине.
// Реализации stateless относительно вызова: результат — чистая функция
// переданного контекста. ValidatePostProcessRequest обязан быть дешёвым и
// свободным от side effects: оркестратор опрашивает кандидатов по очереди,
// и неверная догадка не должна ничего менять.
type PaymentMethod interface {
	Code() string
	IsActive() bool
	ProcessPayment(ctx ProcessPaymentContext) (ProcessPaymentResult, error)
	ValidatePostProcessRequest(params url.Values) ValidationResult
	PostProcessPayment(ctx PostProcessPaymentContext) (*PostProcessPaymentResult, error)
}
