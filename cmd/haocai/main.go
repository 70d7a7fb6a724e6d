package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/haocai-admin/haocai-admin/internal/app"
	"github.com/haocai-admin/haocai-admin/internal/auth"
	"github.com/haocai-admin/haocai-admin/internal/departments"
	"github.com/haocai-admin/haocai-admin/internal/inventory"
	"github.com/haocai-admin/haocai-admin/internal/masterdata/categories"
	"github.com/haocai-admin/haocai-admin/internal/masterdata/materials"
	"github.com/haocai-admin/haocai-admin/internal/masterdata/suppliers"
	"github.com/haocai-admin/haocai-admin/internal/observability"
	"github.com/haocai-admin/haocai-admin/internal/permissions"
	"github.com/haocai-admin/haocai-admin/internal/platform/cache"
	"github.com/haocai-admin/haocai-admin/internal/platform/db"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
	"github.com/haocai-admin/haocai-admin/internal/roles"
	"github.com/haocai-admin/haocai-admin/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenManager(redisClient, cfg.TokenSecret, cfg.TokenTTL, cfg.RefreshUnder)

	rbacRepo := rbac.NewRepository(pool)
	rbacService := rbac.NewService(rbacRepo)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, rbacService, tokens, asynqClient, logger)
	authHandler := auth.NewHandler(logger, authService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, rbacService)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService, rbacService, rbacMiddleware)

	permissionsRepo := permissions.NewRepository(pool)
	permissionsCache := permissions.NewTreeCache(redisClient, 10*time.Minute)
	permissionsService := permissions.NewService(permissionsRepo, permissionsCache)
	permissionsHandler := permissions.NewHandler(logger, permissionsService, rbacMiddleware)

	departmentsRepo := departments.NewRepository(pool)
	departmentsService := departments.NewService(departmentsRepo)
	departmentsHandler := departments.NewHandler(logger, departmentsService, rbacMiddleware)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService, rbacMiddleware)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, asynqClient, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, rbacMiddleware)

	materialsRepo := materials.NewRepository(pool)
	materialsService := materials.NewService(materialsRepo, categoriesRepo, inventoryRepo)
	materialsHandler := materials.NewHandler(logger, materialsService, rbacMiddleware)

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersService := suppliers.NewService(suppliersRepo, suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService, rbacMiddleware)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Tokens:             tokens,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		DepartmentsHandler: departmentsHandler,
		CategoriesHandler:  categoriesHandler,
		MaterialsHandler:   materialsHandler,
		SuppliersHandler:   suppliersHandler,
		InventoryHandler:   inventoryHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
