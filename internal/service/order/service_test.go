package order_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
	"github.com/vladislavdragonenkov/order-module/internal/service/order"
	"github.com/vladislavdragonenkov/order-module/internal/service/scope"
	"github.com/vladislavdragonenkov/order-module/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger.WithField("test", true)
}

type granter interface {
	Grant(userName string, perms ...domain.Permission)
}

type fixture struct {
	service  *order.Service
	orders   interface{ All() []domain.CustomerOrder }
	security granter
	carts    interface{ Add(cart domain.Cart) }
}

func newFixture(t *testing.T, seed ...domain.CustomerOrder) *fixture {
	t.Helper()

	orders := memory.NewOrderRepository()
	orders.Seed(seed...)

	stores := memory.NewStoreRepository(&domain.Store{
		ID:   "store-1",
		Name: "Store One",
		Settings: map[string]string{
			domain.SettingShipmentNumberTemplate: "SH{0:yyMMdd}-{1:D5}",
		},
	})
	carts := memory.NewCartRepository()
	security := memory.NewSecurityService()
	numbers := memory.NewNumberGenerator()
	builder := memory.NewOrderBuilder(orders, numbers)
	changeLog := memory.NewChangeLogRepository()
	outbox := memory.NewOutbox()

	filter := scope.NewFilter(security, loggerForTests())
	service := order.NewService(orders, stores, carts, builder, numbers, changeLog, outbox, filter, loggerForTests())

	return &fixture{service: service, orders: orders, security: security, carts: carts}
}

func orderInStore(id, number, storeID string) domain.CustomerOrder {
	return domain.CustomerOrder{
		ID:         id,
		Number:     number,
		StoreID:    storeID,
		CustomerID: "customer-1",
		Currency:   "USD",
		Status:     domain.OrderStatusNew,
		TotalMinor: 5000,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
}

func TestSearch_ScopedUserCannotWidenStoreFilter(t *testing.T) {
	f := newFixture(t,
		orderInStore("order-1", "ORD-1001", "store-1"),
		orderInStore("order-2", "ORD-1002", "store-2"),
	)
	f.security.Grant("manager", domain.Permission{
		ID: domain.PermissionOrderRead,
		AssignedScopes: []domain.PermissionScope{
			{Type: domain.ScopeTypeStore, Scope: "store-1"},
		},
	})

	// Явный запрос чужого магазина не расширяет выдачу.
	result, err := f.service.Search(context.Background(), "manager", domain.SearchCriteria{
		StoreIDs: []string{"store-2"},
	})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	require.Equal(t, "order-1", result.Orders[0].ID)
}

func TestSearch_GlobalReaderSeesEverything(t *testing.T) {
	f := newFixture(t,
		orderInStore("order-1", "ORD-1001", "store-1"),
		orderInStore("order-2", "ORD-1002", "store-2"),
	)
	f.security.Grant("admin", domain.Permission{ID: domain.PermissionOrderRead})

	result, err := f.service.Search(context.Background(), "admin", domain.SearchCriteria{})
	require.NoError(t, err)
	require.Len(t, result.Orders, 2)
}

func TestSearch_PriceFieldsStrippedWithoutPricePermission(t *testing.T) {
	f := newFixture(t, orderInStore("order-1", "ORD-1001", "store-1"))
	f.security.Grant("manager", domain.Permission{ID: domain.PermissionOrderRead})

	result, err := f.service.Search(context.Background(), "manager", domain.SearchCriteria{
		ResponseGroup: domain.ResponseGroupWithPrices,
	})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	require.Zero(t, result.Orders[0].TotalMinor)
}

func TestGetByID_AccessDeniedDistinctFromNotFound(t *testing.T) {
	f := newFixture(t, orderInStore("order-1", "ORD-1001", "store-1"))
	f.security.Grant("outsider", domain.Permission{
		ID: domain.PermissionOrderRead,
		AssignedScopes: []domain.PermissionScope{
			{Type: domain.ScopeTypeStore, Scope: "store-9"},
		},
	})

	// Существующий, но чужой заказ — отказ в доступе.
	_, err := f.service.GetByID(context.Background(), "outsider", "order-1", "")
	require.ErrorIs(t, err, domain.ErrAccessDenied)
	require.False(t, domain.IsNotFound(err))

	// Несуществующий заказ — not found.
	_, err = f.service.GetByID(context.Background(), "outsider", "missing", "")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetByID_StampsObjectScopes(t *testing.T) {
	f := newFixture(t, orderInStore("order-1", "ORD-1001", "store-1"))
	f.security.Grant("admin", domain.Permission{ID: domain.PermissionOrderRead})

	got, err := f.service.GetByID(context.Background(), "admin", "order-1", "")
	require.NoError(t, err)
	require.Contains(t, got.Scopes, "store:store-1")
}

func TestGetByNumber_SamePipelineAsGetByID(t *testing.T) {
	f := newFixture(t, orderInStore("order-1", "ORD-1001", "store-1"))
	f.security.Grant("manager", domain.Permission{
		ID: domain.PermissionOrderRead,
		AssignedScopes: []domain.PermissionScope{
			{Type: domain.ScopeTypeStore, Scope: "store-1"},
		},
	})

	got, err := f.service.GetByNumber(context.Background(), "manager", "ord-1001", "")
	require.NoError(t, err)
	require.Equal(t, "order-1", got.ID)
	// Без ценового permission деньги не возвращаются и по этому пути.
	require.Zero(t, got.TotalMinor)
}

func TestCreateOrderFromCart_RequiresCreatePermission(t *testing.T) {
	f := newFixture(t)
	f.carts.Add(domain.Cart{ID: "cart-1", StoreID: "store-1", CustomerID: "customer-1", Currency: "USD"})
	f.security.Grant("reader", domain.Permission{ID: domain.PermissionOrderRead})

	_, err := f.service.CreateOrderFromCart(context.Background(), "reader", "cart-1")
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestCreateOrderFromCart_Success(t *testing.T) {
	f := newFixture(t)
	f.carts.Add(domain.Cart{ID: "cart-1", StoreID: "store-1", CustomerID: "customer-1", Currency: "USD"})
	f.security.Grant("manager", domain.Permission{ID: domain.PermissionOrderCreate})

	created, err := f.service.CreateOrderFromCart(context.Background(), "manager", "cart-1")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, strings.HasPrefix(created.Number, "CO"))
	require.Equal(t, "store-1", created.StoreID)

	// Повторная конвертация той же корзины не создаёт второй заказ.
	_, err = f.service.CreateOrderFromCart(context.Background(), "manager", "cart-1")
	require.ErrorIs(t, err, domain.ErrCartNotFound)
	require.Len(t, f.orders.All(), 1)
}

func TestCreateOrderFromCart_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	f.carts.Add(domain.Cart{ID: "cart-1", StoreID: "store-1", CustomerID: "customer-1", Currency: "USD"})
	f.security.Grant("manager", domain.Permission{ID: domain.PermissionOrderCreate})

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.CreateOrderFromCart(context.Background(), "manager", "cart-1"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, succeeded)
	require.Len(t, f.orders.All(), 1)
}

func TestUpdate_AuthorizedSaveBumpsVersion(t *testing.T) {
	f := newFixture(t, orderInStore("order-1", "ORD-1001", "store-1"))
	f.security.Grant("admin", domain.Permission{ID: domain.PermissionOrderRead})

	updated := orderInStore("order-1", "ORD-1001", "store-1")
	updated.Status = domain.OrderStatusProcessing

	require.NoError(t, f.service.Update(context.Background(), "admin", &updated))
	require.Equal(t, int64(1), updated.Version)

	saved := f.orders.All()
	require.Equal(t, domain.OrderStatusProcessing, saved[0].Status)
}

func TestUpdate_StaleVersionConflict(t *testing.T) {
	seed := orderInStore("order-1", "ORD-1001", "store-1")
	seed.Version = 3
	f := newFixture(t, seed)
	f.security.Grant("admin", domain.Permission{ID: domain.PermissionOrderRead})

	stale := orderInStore("order-1", "ORD-1001", "store-1")
	stale.Version = 1

	err := f.service.Update(context.Background(), "admin", &stale)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestChanges_RecordsLifecycle(t *testing.T) {
	f := newFixture(t)
	f.carts.Add(domain.Cart{ID: "cart-1", StoreID: "store-1", CustomerID: "customer-1", Currency: "USD"})
	f.security.Grant("manager", domain.Permission{ID: domain.PermissionOrderCreate})

	created, err := f.service.CreateOrderFromCart(context.Background(), "manager", "cart-1")
	require.NoError(t, err)

	changes, err := f.service.Changes(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, "OrderCreatedFromCart", changes[0].OperationType)
	require.Equal(t, "manager", changes[0].UserName)

	// История несуществующего заказа — пустой список, не ошибка.
	changes, err = f.service.Changes(context.Background(), "missing")
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestNewShipmentDocument_UsesStoreTemplate(t *testing.T) {
	f := newFixture(t, orderInStore("order-1", "ORD-1001", "store-1"))

	shipment, err := f.service.NewShipmentDocument(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotEmpty(t, shipment.ID)
	require.True(t, strings.HasPrefix(shipment.Number, "SH"))
	require.Equal(t, "USD", shipment.Currency)
	require.Equal(t, "New", shipment.Status)
}

func TestNewPaymentDocument_FallsBackToDefaultTemplate(t *testing.T) {
	f := newFixture(t, orderInStore("order-1", "ORD-1001", "store-1"))

	payment, err := f.service.NewPaymentDocument(context.Background(), "order-1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(payment.Number, "PI"))
	require.Equal(t, domain.PaymentStatusNew, payment.Status)
	require.Equal(t, "order-1", payment.OrderID)
}

func TestNewShipmentDocument_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.NewShipmentDocument(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}
