package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/cablesur/claims-service/internal/api/http"
	"github.com/cablesur/claims-service/internal/api/http/handlers"
	"github.com/cablesur/claims-service/internal/auth"
	"github.com/cablesur/claims-service/internal/config"
	"github.com/cablesur/claims-service/internal/events"
	"github.com/cablesur/claims-service/internal/lock"
	"github.com/cablesur/claims-service/internal/notify"
	"github.com/cablesur/claims-service/internal/observability"
	"github.com/cablesur/claims-service/internal/persistence"
	"github.com/cablesur/claims-service/internal/repository"
	"github.com/cablesur/claims-service/internal/service"
	"github.com/cablesur/claims-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	claimRepo := repository.NewClaimRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	historyRepo := repository.NewClaimHistoryRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	sectorRepo := repository.NewSectorAssignmentRepository(pool)
	groupRepo := repository.NewGroupAssignmentRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	uow := repository.NewUnitOfWork(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notifier := notify.NewDispatcher()
	clientLocks := lock.NewKeyedMutex()
	claimLocks := lock.NewKeyedMutex()
	metrics := observability.NewMetrics()

	claimService := service.NewClaimService(service.ClaimDependencies{
		UnitOfWork:  uow,
		ClaimRepo:   claimRepo,
		ClientRepo:  clientRepo,
		HistoryRepo: historyRepo,
		Notifier:    notifier,
		Dispatcher:  dispatcher,
		ClientLocks: clientLocks,
		ClaimLocks:  claimLocks,
		Logger:      logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		UnitOfWork:          uow,
		ClaimRepo:           claimRepo,
		SectorRepo:          sectorRepo,
		GroupRepo:           groupRepo,
		Notifier:            notifier,
		Dispatcher:          dispatcher,
		ClaimLocks:          claimLocks,
		Logger:              logger,
		DefaultActiveGroups: cfg.Assignment.DefaultActiveGroups,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		UnitOfWork:       uow,
		NotificationRepo: notificationRepo,
		Notifier:         notifier,
		Dispatcher:       dispatcher,
		Cache:            redis.ClientHandle(),
		CacheTTL:         time.Duration(cfg.Assignment.UnreadCountTTLSeconds) * time.Second,
		Logger:           logger,
	})
	clientService := service.NewClientService(clientRepo)
	authService := service.NewAuthService(*cfg, staffRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	worker.StartNotificationWorker(notificationService, dispatcher)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Claims:         handlers.NewClaimsHandler(claimService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Clients:        handlers.NewClientsHandler(clientService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
