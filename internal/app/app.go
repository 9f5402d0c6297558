package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/order-module/internal/health"
	"github.com/vladislavdragonenkov/order-module/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-module/internal/service/order"
	outboxworker "github.com/vladislavdragonenkov/order-module/internal/service/outbox"
	"github.com/vladislavdragonenkov/order-module/internal/service/payment"
	"github.com/vladislavdragonenkov/order-module/internal/service/rest"
	"github.com/vladislavdragonenkov/order-module/internal/service/scope"
	"github.com/vladislavdragonenkov/order-module/internal/service/stats"
	"github.com/vladislavdragonenkov/order-module/internal/version"
)

// Run собирает зависимости и запускает API-сервер, сервер метрик и
// outbox worker до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close dependencies")
		}
	}()

	filter := scope.NewFilter(deps.Security, logger.WithField("layer", "scope"))
	registry := payment.NewRegistry()

	orderService := order.NewService(
		deps.Orders,
		deps.Stores,
		deps.Carts,
		deps.Builder,
		deps.Numbers,
		deps.ChangeLog,
		deps.Outbox,
		filter,
		logger.WithField("layer", "orders"),
	)
	paymentOrchestrator := payment.NewOrchestrator(
		deps.Orders,
		deps.Stores,
		registry,
		deps.ChangeLog,
		deps.Outbox,
		logger.WithField("layer", "payments"),
	)
	statsService := stats.NewService(deps.StatsCollector, cfg.StatsCacheTTL, logger.WithField("layer", "stats"))

	handler := rest.NewHandler(orderService, paymentOrchestrator, statsService, logger.WithField("layer", "rest"))
	router := rest.NewRouter(handler, logger.WithField("layer", "rest"))

	// Kafka опционален: без брокеров события копятся в outbox как pending.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	if producer != nil {
		publisher := kafka.NewOutboxPublisher(producer, cfg.KafkaTopic)
		worker := outboxworker.NewWorker(
			deps.Outbox,
			publisher,
			outboxworker.WithLogger(logger.WithField("layer", "outbox")),
			outboxworker.WithPollInterval(cfg.OutboxPollInterval),
		)
		go worker.Run(ctx)
	}

	healthHandler := healthcheck.NewHandler(version.String())
	if pg := deps.Postgres(); pg != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pg.Ping(pingCtx)
		}))
	}
	healthHandler.RegisterChecker("outbox", healthcheck.NewSimpleChecker("outbox", func() error {
		statCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := deps.Outbox.Stats(statCtx)
		return err
	}))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.APIAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API сервер слушает %s", cfg.APIAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		closeKafka(producer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeKafka(producer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics и health-эндпоинты.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
