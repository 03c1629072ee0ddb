package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"cashdash/internal/aggregator"
	"cashdash/internal/cache"
	"cashdash/internal/config"
	"cashdash/internal/database"
	"cashdash/internal/handlers"
	"cashdash/internal/logger"
	"cashdash/internal/middleware"
	"cashdash/internal/secret"
	"cashdash/internal/services"
	"cashdash/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "cashdash/internal/docs" // Import swagger docs
)

// @title           Cash Dashboard API
// @version         1.0
// @description     Cash Dashboard links bank accounts through Plaid, keeps a ledger of recent transactions and records a daily cash snapshot.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey PipelineAPIKey
// @in header
// @name X-API-Key
// @description Shared key for scheduled pipeline calls.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	sealer, err := secret.NewSealer(appConfig.CredentialKey)
	if err != nil {
		return fmt.Errorf("invalid CREDENTIAL_KEY: %w", err)
	}

	readCache := cache.Open(context.Background(), appConfig.RedisURL, appConfig.CacheTTL)

	provider := aggregator.NewPlaidProvider(aggregator.PlaidConfig{
		ClientID:     appConfig.PlaidClientID,
		Secret:       appConfig.PlaidSecret,
		Environment:  appConfig.PlaidEnv,
		CountryCodes: appConfig.PlaidCountryCodes,
		Timeout:      appConfig.RequestTimeout,
		Retry:        aggregator.RetryPolicy{MaxRetries: appConfig.ProviderRetries, BaseDelay: appConfig.ProviderBaseDelay},
	})

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	categoryService := services.NewCategoryService(db, readCache)
	transactionService := services.NewTransactionService(db, readCache)
	snapshotService := services.NewSnapshotService(db, readCache)
	linkService := services.NewLinkService(db, provider, sealer, appConfig.PlaidClientUserID)
	syncService := services.NewSyncService(db, provider, sealer, transactionService, snapshotService, services.SyncOptions{
		WindowDays:  appConfig.SyncWindowDays,
		Concurrency: appConfig.SyncConcurrency,
	})

	// Initialize handlers
	plaidHandler := handlers.NewPlaidHandler(linkService, syncService, auditService, nil)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(snapshotService, nil)

	validator.Register()

	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(appConfig.CORSAllowedOrigins))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		if err := dbManager.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Bank linking and sync
	plaid := v1.Group("/plaid")
	plaid.POST("/link-token", plaidHandler.CreateLinkToken)
	plaid.POST("/exchange-token", plaidHandler.ExchangeToken)
	plaid.POST("/sync", plaidHandler.Sync)
	v1.GET("/linked-accounts", plaidHandler.ListLinkedAccounts)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.POST("/assign-category", transactionHandler.AssignCategory)

	// Category routes
	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Dashboard read models
	v1.GET("/snapshots", dashboardHandler.ListSnapshots)
	v1.GET("/dashboard/cash-flow", dashboardHandler.CashFlow)

	// Pipeline routes (API key auth for scheduled jobs)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/sync", plaidHandler.PipelineSync)

	log.Infof("Starting Cash Dashboard server on port %s (plaid=%s)", appConfig.Port, appConfig.PlaidEnv)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
