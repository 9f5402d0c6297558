package domain

import (
	"context"
	"time"
)

// User — сокращённое представление caller-а, достаточное для авторизации.
type User struct {
	ID       string
	UserName string
	IsAdmin  bool
}

// SecurityService отдаёт identity и permission-набор caller-а.
// Реализуется платформой; здесь только потребляется.
type SecurityService interface {
	// FindUserByName возвращает пользователя или ErrUserNotFound.
	FindUserByName(ctx context.Context, userName string) (User, error)
	// GetUserPermissions возвращает выданные permissions в порядке назначения.
	GetUserPermissions(ctx context.Context, userName string) ([]Permission, error)
}

// OrderRepository — хранилище и поиск заказов.
type OrderRepository interface {
	// Search выполняет поиск по критериям, уже суженным scope-фильтром.
	Search(ctx context.Context, criteria SearchCriteria) (SearchResult, error)
	// GetByIDs возвращает заказы по идентификаторам в составе respGroup.
	GetByIDs(ctx context.Context, ids []string, respGroup string) ([]CustomerOrder, error)
	// Save персистит мутированные агрегаты с optimistic locking.
	Save(ctx context.Context, orders []CustomerOrder) error
}

// StoreService отдаёт магазин с его платёжными методами и настройками.
type StoreService interface {
	// GetByID возвращает магазин или ErrStoreNotFound.
	GetByID(ctx context.Context, id string) (*Store, error)
}

// Cart — корзина покупателя; детали наполнения этому ядру не нужны.
type Cart struct {
	ID         string
	StoreID    string
	CustomerID string
	Currency   string
}

// CartService отдаёт корзины для конвертации в заказ.
type CartService interface {
	// GetByID возвращает корзину или ErrCartNotFound.
	GetByID(ctx context.Context, id string) (*Cart, error)
	// Remove удаляет корзину после успешной конвертации: повторная попытка
	// конвертировать ту же корзину завершается ErrCartNotFound, а не дублем.
	Remove(ctx context.Context, id string) error
}

// OrderBuilder создаёт заказ из корзины. Размещение заказа (расчёт итогов,
// нумерация, нотификации) — ответственность платформы.
type OrderBuilder interface {
	PlaceOrderFromCart(ctx context.Context, cart *Cart) (*CustomerOrder, error)
}

// NumberGenerator генерирует уникальные номера документов по шаблону.
type NumberGenerator interface {
	GenerateNumber(template string) string
}

// OperationLog — одна запись истории изменений заказа.
type OperationLog struct {
	ID            string
	OrderID       string
	OperationType string
	Detail        string
	UserName      string
	CreatedAt     time.Time
}

// ChangeLogRepository хранит историю изменений заказов.
type ChangeLogRepository interface {
	Append(ctx context.Context, entry OperationLog) error
	// List возвращает записи заказа в хронологическом порядке.
	List(ctx context.Context, orderID string) ([]OperationLog, error)
}

// OutboxMessage хранит данные события для публикации через outbox.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog-а outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// EventOutbox сохраняет события для последующей публикации.
type EventOutbox interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// EventPublisher публикует события наружу; обязан быть идемпотентным.
type EventPublisher interface {
	Publish(event OutboxMessage) error
}
