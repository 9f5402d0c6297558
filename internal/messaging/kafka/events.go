package kafka

// Topics для событий модуля заказов.
const (
	TopicOrderEvents = "orders.events"
)

// Типы событий, которые кладутся в outbox и публикуются воркером.
const (
	EventTypeOrderCreatedFromCart = "order.created_from_cart"
	EventTypeOrderChanged         = "order.changed"
	EventTypePaymentProcessed     = "order.payment_processed"
)
