package payment

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

func TestRegistry_Resolve_CaseInsensitive(t *testing.T) {
	store := &domain.Store{
		ID: "store-1",
		PaymentMethods: []domain.PaymentMethod{
			NewMockGateway("TESTGATEWAY"),
		},
	}
	registry := NewRegistry()

	method, err := registry.Resolve(store, "testgateway")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if method.Code() != "TESTGATEWAY" {
		t.Fatalf("expected TESTGATEWAY, got %s", method.Code())
	}
}

func TestRegistry_Resolve_InactiveSkipped(t *testing.T) {
	inactive := NewMockGateway("TESTGATEWAY")
	inactive.Active = false
	store := &domain.Store{
		ID:             "store-1",
		PaymentMethods: []domain.PaymentMethod{inactive},
	}

	_, err := NewRegistry().Resolve(store, "TESTGATEWAY")
	if !errors.Is(err, domain.ErrPaymentMethodNotFound) {
		t.Fatalf("expected ErrPaymentMethodNotFound, got %v", err)
	}
}

func TestRegistry_Resolve_UnknownCode(t *testing.T) {
	store := &domain.Store{
		ID: "store-1",
		PaymentMethods: []domain.PaymentMethod{
			NewMockGateway("TESTGATEWAY"),
		},
	}

	_, err := NewRegistry().Resolve(store, "GHOST")
	if !errors.Is(err, domain.ErrPaymentMethodNotFound) {
		t.Fatalf("expected ErrPaymentMethodNotFound, got %v", err)
	}
}

func TestRegistry_Candidates_StoreOrderPreserved(t *testing.T) {
	first := NewMockGateway("FIRST")
	second := NewMockGateway("SECOND")
	inactive := NewMockGateway("THIRD")
	inactive.Active = false
	store := &domain.Store{
		ID:             "store-1",
		PaymentMethods: []domain.PaymentMethod{first, second, inactive},
	}

	// Порядок кодов заказа не влияет: кандидаты идут в порядке конфигурации магазина.
	candidates := NewRegistry().Candidates(store, []string{"third", "second", "first"})
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Code() != "FIRST" || candidates[1].Code() != "SECOND" {
		t.Fatalf("unexpected candidate order: %s, %s", candidates[0].Code(), candidates[1].Code())
	}
}

func TestRegistry_Candidates_NoMatches(t *testing.T) {
	store := &domain.Store{
		ID: "store-1",
		PaymentMethods: []domain.PaymentMethod{
			NewMockGateway("TESTGATEWAY"),
		},
	}

	candidates := NewRegistry().Candidates(store, []string{"GHOST"})
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
}
