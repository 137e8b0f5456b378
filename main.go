package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amehra/folio/config"
	_ "github.com/amehra/folio/docs"
	"github.com/amehra/folio/internal/database"
	"github.com/amehra/folio/internal/handlers"
	"github.com/amehra/folio/internal/middleware"
	"github.com/amehra/folio/internal/repository"
	"github.com/amehra/folio/internal/services"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Folio API
// @version 1.0
// @description Personal portfolio reporting backend: holdings, returns, cash flows and realized positions.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	holdingsRepo := repository.NewHoldingsRepository(db.Pool)
	transactionRepo := repository.NewTransactionRepository(db.Pool)
	realizedLotRepo := repository.NewRealizedLotRepository(db.Pool)
	priceRepo := repository.NewPriceRepository(db.Pool)

	// Initialize services
	analyticsSvc := services.NewAnalyticsService(holdingsRepo, transactionRepo, realizedLotRepo, priceRepo)

	// Initialize handlers
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsSvc)
	adminHandler := handlers.NewAdminHandler(priceRepo)

	// Setup Gin router
	router := gin.Default()

	// Apply global middleware
	router.Use(middleware.ValidateUser())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Analytics routes
	router.GET("/portfolios/:id/analytics", analyticsHandler.GetAnalytics)
	router.GET("/portfolios/:id/realized", analyticsHandler.GetRealized)
	router.GET("/portfolios/:id/returns/monthly", analyticsHandler.GetMonthlyReturns)

	// Admin routes (price-store maintenance)
	admin := router.Group("/admin")
	{
		admin.POST("/prices", adminHandler.StorePrices)
		admin.GET("/prices/:security_id/latest", adminHandler.GetLatestPrice)
		admin.DELETE("/prices", adminHandler.PrunePrices)
	}

	// API documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	fmt.Println("Server exited")
}
