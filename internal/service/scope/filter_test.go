package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
	"github.com/vladislavdragonenkov/order-module/internal/storage/memory"
)

func newFilter(grants map[string][]domain.Permission) *Filter {
	security := memory.NewSecurityService()
	for user, perms := range grants {
		security.Grant(user, perms...)
	}
	return NewFilter(security, nil)
}

func storeScope(storeID string) domain.PermissionScope {
	return domain.PermissionScope{Type: domain.ScopeTypeStore, Scope: storeID}
}

func TestNarrow_GlobalReadPassesThrough(t *testing.T) {
	filter := newFilter(map[string][]domain.Permission{
		"admin": {
			{ID: domain.PermissionOrderRead},
			{ID: domain.PermissionOrderReadPrices},
		},
	})

	criteria := domain.SearchCriteria{StoreIDs: []string{"store-1", "store-2"}}
	narrowed, err := filter.Narrow(context.Background(), "admin", criteria)
	if err != nil {
		t.Fatalf("narrow failed: %v", err)
	}
	if len(narrowed.StoreIDs) != 2 {
		t.Fatalf("expected untouched store ids, got %v", narrowed.StoreIDs)
	}
}

func TestNarrow_StoreScopesReplaceRequestedIDs(t *testing.T) {
	filter := newFilter(map[string][]domain.Permission{
		"manager": {
			{ID: domain.PermissionOrderRead, AssignedScopes: []domain.PermissionScope{storeScope("store-1")}},
		},
	})

	// Запрошенные чужие магазины замещаются собственными scope-ами.
	criteria := domain.SearchCriteria{StoreIDs: []string{"store-7", "store-8"}}
	narrowed, err := filter.Narrow(context.Background(), "manager", criteria)
	if err != nil {
		t.Fatalf("narrow failed: %v", err)
	}
	if len(narrowed.StoreIDs) != 1 || narrowed.StoreIDs[0] != "store-1" {
		t.Fatalf("expected [store-1], got %v", narrowed.StoreIDs)
	}
}

func TestNarrow_ResponsibleScopeForcesEmployeeFilter(t *testing.T) {
	filter := newFilter(map[string][]domain.Permission{
		"agent": {
			{
				ID: domain.PermissionOrderRead,
				AssignedScopes: []domain.PermissionScope{
					{Type: domain.ScopeTypeResponsible},
				},
			},
		},
	})

	criteria := domain.SearchCriteria{EmployeeID: "someone-else"}
	narrowed, err := filter.Narrow(context.Background(), "agent", criteria)
	if err != nil {
		t.Fatalf("narrow failed: %v", err)
	}
	if narrowed.EmployeeID != "agent" {
		t.Fatalf("expected employee filter forced to agent, got %q", narrowed.EmployeeID)
	}
}

func TestNarrow_NoPermissionsEmptyScope(t *testing.T) {
	filter := newFilter(nil)

	narrowed, err := filter.Narrow(context.Background(), "nobody", domain.SearchCriteria{
		StoreIDs: []string{"store-1"},
	})
	if err != nil {
		t.Fatalf("narrow failed: %v", err)
	}
	if len(narrowed.StoreIDs) != 0 {
		t.Fatalf("expected empty store scope, got %v", narrowed.StoreIDs)
	}
}

func TestApplyPriceFiltering(t *testing.T) {
	withPrices := []domain.Permission{{ID: domain.PermissionOrderReadPrices}}
	withoutPrices := []domain.Permission{{ID: domain.PermissionOrderRead}}

	cases := []struct {
		name      string
		perms     []domain.Permission
		respGroup string
		want      string
	}{
		{"нет permission, WithPrices деградирует", withoutPrices, domain.ResponseGroupWithPrices, domain.ResponseGroupDefault},
		{"нет permission, Full деградирует", withoutPrices, domain.ResponseGroupFull, domain.ResponseGroupDefault},
		{"нет permission, пустой становится Default", withoutPrices, "", domain.ResponseGroupDefault},
		{"нет permission, прочие группы не трогаем", withoutPrices, "WithItems", "WithItems"},
		{"есть permission, группа сохраняется", withPrices, domain.ResponseGroupWithPrices, domain.ResponseGroupWithPrices},
		{"есть permission, пустой становится Full", withPrices, "", domain.ResponseGroupFull},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := applyPriceFiltering(tc.perms, tc.respGroup); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAuthorize_MatchingStoreScope(t *testing.T) {
	filter := newFilter(map[string][]domain.Permission{
		"manager": {
			{ID: domain.PermissionOrderRead, AssignedScopes: []domain.PermissionScope{storeScope("store-1")}},
		},
	})

	order := &domain.CustomerOrder{ID: "order-1", StoreID: "store-1"}
	if err := filter.Authorize(context.Background(), "manager", order); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if len(order.Scopes) == 0 || order.Scopes[0] != "store:store-1" {
		t.Fatalf("expected stamped scopes, got %v", order.Scopes)
	}
}

func TestAuthorize_ResponsibleScopeMatchesSelf(t *testing.T) {
	filter := newFilter(map[string][]domain.Permission{
		"agent": {
			{
				ID: domain.PermissionOrderRead,
				AssignedScopes: []domain.PermissionScope{
					{Type: domain.ScopeTypeResponsible},
				},
			},
		},
	})

	mine := &domain.CustomerOrder{ID: "order-1", StoreID: "store-1", EmployeeID: "agent"}
	if err := filter.Authorize(context.Background(), "agent", mine); err != nil {
		t.Fatalf("authorize own order failed: %v", err)
	}

	foreign := &domain.CustomerOrder{ID: "order-2", StoreID: "store-1", EmployeeID: "colleague"}
	if err := filter.Authorize(context.Background(), "agent", foreign); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestAuthorize_DeniedIsNotNotFound(t *testing.T) {
	filter := newFilter(map[string][]domain.Permission{
		"outsider": {
			{ID: domain.PermissionOrderRead, AssignedScopes: []domain.PermissionScope{storeScope("store-9")}},
		},
	})

	order := &domain.CustomerOrder{ID: "order-1", StoreID: "store-1"}
	err := filter.Authorize(context.Background(), "outsider", order)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if domain.IsNotFound(err) {
		t.Fatal("access denial must stay distinguishable from not-found")
	}
	if len(order.Scopes) != 0 {
		t.Fatalf("denied order must not carry scopes, got %v", order.Scopes)
	}
}

func TestHasPermission_IgnoresScopes(t *testing.T) {
	filter := newFilter(map[string][]domain.Permission{
		"manager": {
			{ID: domain.PermissionOrderCreate, AssignedScopes: []domain.PermissionScope{storeScope("store-1")}},
		},
	})

	ok, err := filter.HasPermission(context.Background(), "manager", domain.PermissionOrderCreate)
	if err != nil {
		t.Fatalf("has permission failed: %v", err)
	}
	if !ok {
		t.Fatal("expected permission to be present")
	}

	ok, err = filter.HasPermission(context.Background(), "manager", domain.PermissionOrderDelete)
	if err != nil {
		t.Fatalf("has permission failed: %v", err)
	}
	if ok {
		t.Fatal("expected permission to be absent")
	}
}
