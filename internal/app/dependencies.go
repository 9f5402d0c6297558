package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
	"github.com/vladislavdragonenkov/order-module/internal/service/payment"
	"github.com/vladislavdragonenkov/order-module/internal/service/stats"
	"github.com/vladislavdragonenkov/order-module/internal/storage/memory"
	"github.com/vladislavdragonenkov/order-module/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
//
// Магазины, корзины, пользователи и генератор номеров всегда in-memory:
// это конфигурационные данные модуля, а не персистентное состояние.
// Заказы, outbox, change log и статистика переключаются на PostgreSQL
// при наличии DSN.
type Dependencies struct {
	Orders         domain.OrderRepository
	Stores         domain.StoreService
	Carts          domain.CartService
	Builder        domain.OrderBuilder
	Numbers        domain.NumberGenerator
	ChangeLog      domain.ChangeLogRepository
	Outbox         domain.EventOutbox
	Security       domain.SecurityService
	StatsCollector stats.Collector
	Logger         *log.Entry

	pg *postgres.Store
}

// NewDependencies создаёт и инициализирует зависимости приложения.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	numbers := memory.NewNumberGenerator()
	stores := memory.NewStoreRepository()
	carts := memory.NewCartRepository()
	security := memory.NewSecurityService()

	deps := &Dependencies{
		Stores:   stores,
		Carts:    carts,
		Numbers:  numbers,
		Security: security,
		Logger:   logger,
	}

	if cfg.PostgresDSN == "" {
		orders := memory.NewOrderRepository()
		deps.Orders = orders
		deps.ChangeLog = memory.NewChangeLogRepository()
		deps.Outbox = memory.NewOutbox()
		deps.StatsCollector = memory.NewStatsCollector(orders)
		deps.Builder = memory.NewOrderBuilder(orders, numbers)
		seedDemoData(stores, carts, security)
		logger.Info("using in-memory storage")
		return deps, nil
	}

	pg, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, fmt.Errorf("ensure postgres schema: %w", err)
	}

	deps.pg = pg
	deps.Orders = postgres.NewOrderRepository(pg)
	deps.ChangeLog = postgres.NewChangeLogRepository(pg)
	deps.Outbox = postgres.NewOutbox(pg)
	deps.StatsCollector = postgres.NewStatsCollector(pg)
	deps.Builder = memory.NewOrderBuilder(deps.Orders, numbers)
	seedDemoData(stores, carts, security)
	logger.Info("using postgres storage")
	return deps, nil
}

// Postgres возвращает подключение к PostgreSQL или nil в in-memory режиме.
func (d *Dependencies) Postgres() *postgres.Store {
	return d.pg
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() error {
	if d.pg != nil {
		return d.pg.Close()
	}
	return nil
}

// seedDemoData наполняет конфигурационные репозитории демо-набором:
// магазин с тестовым шлюзом, корзина и пользователи с разными правами.
func seedDemoData(
	stores interface{ Add(*domain.Store) },
	carts interface{ Add(domain.Cart) },
	security interface {
		Grant(userName string, perms ...domain.Permission)
	},
) {
	stores.Add(&domain.Store{
		ID:   "demo-store",
		Name: "Demo Store",
		Settings: map[string]string{
			domain.SettingShipmentNumberTemplate: "SH{0:yyMMdd}-{1:D5}",
			domain.SettingPaymentNumberTemplate:  "PI{0:yyMMdd}-{1:D5}",
		},
		PaymentMethods: []domain.PaymentMethod{
			payment.NewMockGateway("TESTGATEWAY"),
		},
	})

	carts.Add(domain.Cart{
		ID:         "demo-cart",
		StoreID:    "demo-store",
		CustomerID: "demo-customer",
		Currency:   "USD",
	})

	security.Grant("admin",
		domain.Permission{ID: domain.PermissionOrderRead},
		domain.Permission{ID: domain.PermissionOrderReadPrices},
		domain.Permission{ID: domain.PermissionOrderCreate},
		domain.Permission{ID: domain.PermissionOrderUpdate},
	)
	security.Grant("demo-manager",
		domain.Permission{
			ID: domain.PermissionOrderRead,
			AssignedScopes: []domain.PermissionScope{
				{Type: domain.ScopeTypeStore, Scope: "demo-store"},
			},
		},
		domain.Permission{ID: domain.PermissionOrderCreate},
	)
}
