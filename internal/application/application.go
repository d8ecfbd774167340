package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"card_market/internal/config"
	"card_market/internal/domain/service/checkout"
	"card_market/internal/domain/service/offer"
	"card_market/internal/domain/service/settlement"
	"card_market/internal/infrastructure/cache"
	"card_market/internal/infrastructure/gateway"
	"card_market/internal/infrastructure/notifier"
	"card_market/internal/infrastructure/persistence"
	"card_market/internal/server"
	"card_market/internal/worker"
	"card_market/pkg/application/connectors"
	"card_market/pkg/application/modules"
	"card_market/pkg/contextx"
	"card_market/pkg/jwtauth"
	"card_market/pkg/logx"
	"card_market/pkg/middlewarex"
	"card_market/pkg/probe"
)

const workerConcurrency = 10

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Run поднимает HTTP API, воркер уведомлений, probe и метрики и ждёт
// отмены контекста.
func Run(ctx context.Context, cfg config.Config) error { //nolint:funlen
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	defer pg.Close(ctx)

	rds := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	defer rds.Close(ctx)

	db := pg.Client(ctx)

	offerRepo := persistence.NewOfferRepository(db)
	listingRepo := persistence.NewListingRepository(db)
	transactionRepo := persistence.NewTransactionRepository(db)
	notificationRepo := persistence.NewNotificationRepository(db)

	asynqServer := modules.AsynqServer{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
		Concurrency:   workerConcurrency,
	}

	queueClient := asynq.NewClient(asynqServer.RedisClientOpt())
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger(ctx).Error("asynqClient.Close", logx.Error(err))
		}
	}()

	checkoutService := checkout.NewService(offerRepo, gateway.NewClient(cfg.Gateway)).
		WithSessionCache(cache.NewCheckoutSessions(rds.Client(ctx)))

	settlementService := settlement.NewService(
		gateway.NewVerifier(cfg.Gateway),
		offerRepo,
		listingRepo,
		transactionRepo,
		notifier.NewQueue(queueClient),
	).WithMetrics(settlement.NewMetrics(prometheus.DefaultRegisterer))

	srv := server.NewServer(
		server.NewOfferServer(offer.NewService(offerRepo, listingRepo)),
		server.NewPaymentServer(checkoutService, settlementService),
		server.NewTransactionServer(transactionRepo),
		middlewarex.Auth(jwtauth.New([]byte(cfg.Auth.JWTSecret))),
	)

	notifications := worker.NewNotifications(notificationRepo)

	if cfg.Bot.Enabled() {
		alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		notifications = notifications.WithAlerter(alertBot)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("zap.NewProduction: %w", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	asynqServer.Logger = zapLogger.Sugar().Named("asynq")

	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, &http.Server{
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           srv.Handler(cfg.HTTP.LogFieldMaxLen),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	})

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Probe.ListenAddress,
		Checks: map[string]probe.Check{
			"postgres": db.PingContext,
			"redis":    func(ctx context.Context) error { return rds.Client(ctx).Ping(ctx).Err() },
		},
	}.Run(ctx, g)

	modules.MetricServer{ListenAddress: cfg.Metrics.ListenAddress}.Run(ctx, g)

	asynqServer.Run(ctx, g, modules.AsynqQueues{notifier.QueueNotifications: 1}, notifications.Handlers()...)

	logger(ctx).Info("application started", slog.String("version", cfg.App.Version))

	if err := g.Wait(); err != nil {
		return fmt.Errorf("errgroup.Wait: %w", err)
	}

	return nil
}

// Migrate применяет схему базы и завершается.
func Migrate(ctx context.Context, cfg config.Config) error {
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	defer pg.Close(ctx)

	if err := persistence.Migrate(ctx, pg.Client(ctx)); err != nil {
		return fmt.Errorf("persistence.Migrate: %w", err)
	}

	return nil
}
