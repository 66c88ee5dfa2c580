package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/quickdesk/helpdesk-service/internal/api/http"
	"github.com/quickdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/quickdesk/helpdesk-service/internal/auth"
	"github.com/quickdesk/helpdesk-service/internal/config"
	"github.com/quickdesk/helpdesk-service/internal/events"
	"github.com/quickdesk/helpdesk-service/internal/observability"
	"github.com/quickdesk/helpdesk-service/internal/persistence"
	"github.com/quickdesk/helpdesk-service/internal/repository"
	"github.com/quickdesk/helpdesk-service/internal/repository/memory"
	"github.com/quickdesk/helpdesk-service/internal/seed"
	"github.com/quickdesk/helpdesk-service/internal/service"
	"github.com/quickdesk/helpdesk-service/internal/state"
	"github.com/quickdesk/helpdesk-service/internal/worker"
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

	var (
		userRepo         repository.UserRepository
		ticketRepo       repository.TicketRepository
		commentRepo      repository.CommentRepository
		categoryRepo     repository.CategoryRepository
		notificationRepo repository.NotificationRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
		commentRepo = repository.NewCommentRepository(pool)
		categoryRepo = repository.NewCategoryRepository(pool)
		notificationRepo = repository.NewNotificationRepository(pool)
	} else {
		store := memory.NewStore()
		userRepo = store.Users()
		ticketRepo = store.Tickets()
		commentRepo = store.Comments()
		categoryRepo = store.Categories()
		notificationRepo = store.Notifications()
	}

	if err := seed.Run(ctx, *cfg, userRepo, categoryRepo, logger); err != nil {
		logger.Fatal("failed to seed store", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	unreadCache := service.NewUnreadCache(redis.Client, cfg.Redis.UnreadTTL(), logger)

	notificationService := service.NewNotificationService(dispatcher, userRepo, notificationRepo, unreadCache, logger)
	worker.StartNotificationWorker(notificationService)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		CommentRepo:  commentRepo,
		CategoryRepo: categoryRepo,
		Dispatcher:   dispatcher,
	})
	directoryService := service.NewDirectoryService(userRepo, categoryRepo)
	authService := service.NewAuthService(*cfg, userRepo)

	cache := state.NewCache(state.Dependencies{
		UserRepo:            userRepo,
		TicketRepo:          ticketRepo,
		CategoryRepo:        categoryRepo,
		NotificationRepo:    notificationRepo,
		TicketService:       ticketService,
		DirectoryService:    directoryService,
		AuthService:         authService,
		NotificationService: notificationService,
		Logger:              logger,
	})
	if err := cache.Refresh(ctx); err != nil {
		logger.Fatal("initial snapshot load failed", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(cache),
		Data:           handlers.NewDataHandler(cache),
		Tickets:        handlers.NewTicketsHandler(cache),
		Notifications:  handlers.NewNotificationsHandler(cache, notificationService),
		Admin:          handlers.NewAdminHandler(cache),
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
