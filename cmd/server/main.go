package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/bamin2/dgc-hr-sub004/internal/application/service"
	"github.com/bamin2/dgc-hr-sub004/internal/config"
	"github.com/bamin2/dgc-hr-sub004/internal/infrastructure/hr"
	"github.com/bamin2/dgc-hr-sub004/internal/infrastructure/notification"
	"github.com/bamin2/dgc-hr-sub004/internal/infrastructure/persistence/repository"
	httpserver "github.com/bamin2/dgc-hr-sub004/internal/interfaces/http"
	"github.com/bamin2/dgc-hr-sub004/pkg/database"
	"github.com/bamin2/dgc-hr-sub004/pkg/utils"
)

func main() {
	// Local development overrides; absent file is fine
	_ = gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting HR Approval Workflow Engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repositories
	stepRepo := repository.NewStepRepository(db, logger)
	tokenRepo := repository.NewTokenRepository(db, logger)
	notificationRepo := repository.NewNotificationRepository(db, logger)

	// HR adapters
	requestDirectory := hr.NewRequestDirectory(db, logger)
	approverResolver := hr.NewApproverResolver(db, logger)
	balanceLedger := hr.NewBalanceLedger(db, logger)

	sink := notification.NewSink(notificationRepo, cfg.Approval.LinkBaseURL, logger)

	// Application services
	svcLogger := utils.NewKVLogger(logger)
	issuer := service.NewTokenIssuer(tokenRepo, cfg.Approval.TokenTTL, svcLogger)
	notifier := service.NewApproverNotifier(sink, svcLogger)
	finalizers := service.NewFinalizerRegistry(requestDirectory, balanceLedger, sink, svcLogger)
	transitionService := service.NewTransitionService(
		stepRepo, tokenRepo, issuer, approverResolver, requestDirectory,
		finalizers, notifier, db, svcLogger)
	chainService := service.NewChainService(
		stepRepo, issuer, approverResolver, notifier, db, cfg.Approval, svcLogger)
	tokenGateway := service.NewActionTokenGateway(tokenRepo, stepRepo, transitionService, svcLogger)
	queryService := service.NewQueryService(stepRepo, requestDirectory, svcLogger)

	// HTTP server
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, chainService, transitionService, tokenGateway, queryService, svcLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
