package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

func TestSecurityService_FindUserByName(t *testing.T) {
	security := NewSecurityService()
	security.Grant("manager", domain.Permission{ID: domain.PermissionOrderRead})

	user, err := security.FindUserByName(context.Background(), "manager")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserName != "manager" {
		t.Fatalf("unexpected user name: %s", user.UserName)
	}

	if _, err := security.FindUserByName(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSecurityService_PermissionsKeepGrantOrder(t *testing.T) {
	security := NewSecurityService()
	security.Grant("manager", domain.Permission{ID: domain.PermissionOrderRead})
	security.Grant("manager", domain.Permission{ID: domain.PermissionOrderCreate})

	perms, err := security.GetUserPermissions(context.Background(), "manager")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(perms) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(perms))
	}
	if perms[0].ID != domain.PermissionOrderRead || perms[1].ID != domain.PermissionOrderCreate {
		t.Fatalf("grant order not preserved: %v", perms)
	}
}

func TestSecurityService_UnknownUserHasNoPermissions(t *testing.T) {
	security := NewSecurityService()

	perms, err := security.GetUserPermissions(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(perms) != 0 {
		t.Fatalf("expected empty permissions, got %d", len(perms))
	}
}
