package domain

import "errors"

var (
	// ErrOrderNotFound возвращается, если заказ не найден ни по id, ни по номеру.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPaymentNotFound возвращается, если платёж не найден в заказе или
	// callback ссылается на outer id, не принадлежащий ни одному платежу.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrStoreNotFound возвращается, если магазин заказа отсутствует.
	ErrStoreNotFound = errors.New("store not found")
	// ErrPaymentMethodNotFound возвращается, если по коду платежа на магазине
	// нет активного платёжного метода. Осиротевший gateway code — ошибка
	// целостности данных, а не тихий no-op.
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	// ErrCartNotFound возвращается, если корзина для конвертации отсутствует.
	ErrCartNotFound = errors.New("cart not found")
	// ErrUserNotFound возвращается, если caller неизвестен security-сервису.
	ErrUserNotFound = errors.New("user not found")
	// ErrMissingParameter — ошибка валидации входных параметров callback-а.
	ErrMissingParameter = errors.New("missing required parameter")
	// ErrAccessDenied — у caller-а нет подходящего scope. Никогда не
	// деградирует в пустой результат и отличим от not-found.
	ErrAccessDenied = errors.New("access denied")
	// ErrVersionConflict сигнализирует о конфликте версий при сохранении заказа.
	ErrVersionConflict = errors.New("order version conflict")
	// ErrOutboxPublish — ошибка публикации события из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, относится ли ошибка к семейству not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrStoreNotFound) ||
		errors.Is(err, ErrPaymentMethodNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
