package domain

import "strings"

// Предопределённые permission-идентификаторы модуля заказов.
const (
	PermissionOrderRead       = "order:read"
	PermissionOrderCreate     = "order:create"
	PermissionOrderUpdate     = "order:update"
	PermissionOrderDelete     = "order:delete"
	PermissionOrderReadPrices = "order:read_prices"
)

// ScopeType различает виды ограничений, навешиваемых на permission.
type ScopeType string

const (
	// ScopeTypeStore ограничивает действие permission одним магазином.
	ScopeTypeStore ScopeType = "store"
	// ScopeTypeResponsible ограничивает видимость заказами, где caller —
	// ответственный сотрудник.
	ScopeTypeResponsible ScopeType = "responsible"
)

// PermissionScope — один scope-токен, привязанный к permission.
// Для store-scope Scope содержит id магазина; для responsible-scope
// значение не используется.
type PermissionScope struct {
	Type  ScopeType
	Scope string
}

// String возвращает каноничную scope-строку вида "store:s1".
func (s PermissionScope) String() string {
	if s.Scope == "" {
		return string(s.Type)
	}
	return string(s.Type) + ":" + s.Scope
}

// Permission — выданное пользователю разрешение с упорядоченным набором
// scope-токенов. Permission без scope-токенов действует глобально.
type Permission struct {
	ID             string
	AssignedScopes []PermissionScope
}

// IsGlobal сообщает, действует ли permission без ограничений по scope.
func (p Permission) IsGlobal() bool {
	return len(p.AssignedScopes) == 0
}

// HasReadPrefix проверяет, относится ли permission к read-операциям заказов.
func (p Permission) HasReadPrefix() bool {
	return strings.HasPrefix(p.ID, PermissionOrderRead)
}
