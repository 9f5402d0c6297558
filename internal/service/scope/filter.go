// Package scope реализует ACL-фильтрацию заказов: сужение критериев
// поиска до магазинов/владельцев, доступных caller-у, отсечение ценовых
// полей из response group и post-fetch проверку загруженных сущностей.
package scope

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// Filter — двухстадийный авторизационный конвейер модуля заказов:
// Narrow сужает критерии до выполнения запроса, Authorize перепроверяет
// сущность, загруженную в обход scope-ограниченного поиска.
type Filter struct {
	security domain.SecurityService
	logger   *log.Entry
}

// NewFilter создаёт фильтр поверх security-сервиса платформы.
func NewFilter(security domain.SecurityService, logger *log.Entry) *Filter {
	if logger == nil {
		logger = log.WithField("component", "scope-filter")
	}
	return &Filter{security: security, logger: logger}
}

// Narrow сужает критерии поиска до области видимости caller-а.
// Глобальный "order:read" пропускает критерии без изменений; иначе
// store-scope токены замещают запрошенные StoreIDs (расширить собственный
// доступ подстановкой чужих магазинов нельзя), а responsible-scope
// принудительно ставит фильтр по сотруднику в самого caller-а.
// Корректировка response group применяется всегда.
func (f *Filter) Narrow(ctx context.Context, userName string, criteria domain.SearchCriteria) (domain.SearchCriteria, error) {
	perms, err := f.security.GetUserPermissions(ctx, userName)
	if err != nil {
		return criteria, fmt.Errorf("get permissions for %q: %w", userName, err)
	}

	criteria.ResponseGroup = applyPriceFiltering(perms, criteria.ResponseGroup)

	if hasGlobalPermission(perms, domain.PermissionOrderRead) {
		return criteria, nil
	}

	readScopes := collectReadScopes(perms)

	storeIDs := make([]string, 0, len(readScopes))
	for _, s := range readScopes {
		if s.Type == domain.ScopeTypeStore && s.Scope != "" {
			storeIDs = append(storeIDs, s.Scope)
		}
	}
	criteria.StoreIDs = storeIDs

	for _, s := range readScopes {
		if s.Type == domain.ScopeTypeResponsible {
			criteria.EmployeeID = userName
			break
		}
	}

	return criteria, nil
}

// ApplyResponseGroup применяет ценовую корректировку respGroup для caller-а.
// Используется всеми read-путями, минующими Narrow (get по id/номеру,
// рендеринг инвойса), чтобы ценовые поля нельзя было получить обходным путём.
func (f *Filter) ApplyResponseGroup(ctx context.Context, userName, respGroup string) (string, error) {
	perms, err := f.security.GetUserPermissions(ctx, userName)
	if err != nil {
		return respGroup, fmt.Errorf("get permissions for %q: %w", userName, err)
	}
	return applyPriceFiltering(perms, respGroup), nil
}

// Authorize выполняет post-fetch проверку конкретного загруженного заказа:
// выводит применимые к нему scope-строки и требует у caller-а хотя бы один
// совпадающий read-scope (или глобальный грант). При успехе проставляет
// order.Scopes; при отказе возвращает ErrAccessDenied — отличимый от
// not-found, решение зафиксировано в DESIGN.md.
func (f *Filter) Authorize(ctx context.Context, userName string, order *domain.CustomerOrder) error {
	perms, err := f.security.GetUserPermissions(ctx, userName)
	if err != nil {
		return fmt.Errorf("get permissions for %q: %w", userName, err)
	}

	scopes := ObjectScopeStrings(order)

	if !userHasAnyScope(perms, domain.PermissionOrderRead, scopes, userName) {
		f.logger.WithFields(log.Fields{
			"user":     userName,
			"order_id": order.ID,
			"store_id": order.StoreID,
		}).Warn("scope check rejected order access")
		return domain.ErrAccessDenied
	}

	// Scope-строки отдаются наружу ровно один раз для UI ACL-проверок.
	order.Scopes = scopes
	return nil
}

// HasPermission проверяет наличие у caller-а permission без учёта scope
// (используется для action-permission вроде order:create).
func (f *Filter) HasPermission(ctx context.Context, userName, permissionID string) (bool, error) {
	perms, err := f.security.GetUserPermissions(ctx, userName)
	if err != nil {
		return false, fmt.Errorf("get permissions for %q: %w", userName, err)
	}
	for _, p := range perms {
		if p.ID == permissionID {
			return true, nil
		}
	}
	return false, nil
}

// ObjectScopeStrings выводит scope-строки, применимые к конкретному заказу.
func ObjectScopeStrings(order *domain.CustomerOrder) []string {
	scopes := make([]string, 0, 2)
	if order.StoreID != "" {
		scopes = append(scopes, domain.PermissionScope{Type: domain.ScopeTypeStore, Scope: order.StoreID}.String())
	}
	if order.EmployeeID != "" {
		scopes = append(scopes, domain.PermissionScope{Type: domain.ScopeTypeResponsible, Scope: order.EmployeeID}.String())
	}
	return scopes
}

// applyPriceFiltering снимает ценовые флаги с respGroup, если у caller-а
// нет permission на чтение цен. Full подразумевает цены и потому также
// деградирует до Default.
func applyPriceFiltering(perms []domain.Permission, respGroup string) string {
	for _, p := range perms {
		if p.ID == domain.PermissionOrderReadPrices {
			if respGroup == "" {
				return domain.ResponseGroupFull
			}
			return respGroup
		}
	}
	switch respGroup {
	case domain.ResponseGroupWithPrices, domain.ResponseGroupFull, "":
		return domain.ResponseGroupDefault
	default:
		return respGroup
	}
}

// hasGlobalPermission проверяет наличие permission, действующего без scope.
func hasGlobalPermission(perms []domain.Permission, permissionID string) bool {
	for _, p := range perms {
		if p.ID == permissionID && p.IsGlobal() {
			return true
		}
	}
	return false
}

// collectReadScopes собирает scope-токены всех permissions с read-префиксом,
// сохраняя порядок назначения.
func collectReadScopes(perms []domain.Permission) []domain.PermissionScope {
	var scopes []domain.PermissionScope
	for _, p := range perms {
		if p.HasReadPrefix() {
			scopes = append(scopes, p.AssignedScopes...)
		}
	}
	return scopes
}

// userHasAnyScope проверяет, покрывает ли permission caller-а хотя бы одну
// из scope-строк объекта. responsible-scope совпадает, когда ответственным
// за заказ является сам caller.
func userHasAnyScope(perms []domain.Permission, permissionID string, objectScopes []string, userName string) bool {
	for _, p := range perms {
		if p.ID != permissionID {
			continue
		}
		if p.IsGlobal() {
			return true
		}
		for _, assigned := range p.AssignedScopes {
			for _, objScope := range objectScopes {
				if scopeMatches(assigned, objScope, userName) {
					return true
				}
			}
		}
	}
	return false
}

func scopeMatches(assigned domain.PermissionScope, objectScope, userName string) bool {
	switch assigned.Type {
	case domain.ScopeTypeStore:
		return objectScope == assigned.String()
	case domain.ScopeTypeResponsible:
		return objectScope == domain.PermissionScope{Type: domain.ScopeTypeResponsible, Scope: userName}.String()
	default:
		return false
	}
}
