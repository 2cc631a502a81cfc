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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jpdataXOR/hrdesk/internal/config"
	"github.com/jpdataXOR/hrdesk/internal/gateway"
	"github.com/jpdataXOR/hrdesk/internal/hub"
	"github.com/jpdataXOR/hrdesk/internal/policy"
	store "github.com/jpdataXOR/hrdesk/internal/repository"
	"github.com/jpdataXOR/hrdesk/internal/service"
	handler "github.com/jpdataXOR/hrdesk/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting hrdesk...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Customers configured: %d", len(cfg.Customers))

	if cfg.OpenAIAPIKey == "" && os.Getenv(gateway.EnvMode) != gateway.ModeMock {
		log.Printf("WARN: OPENAI_API_KEY is empty; gateway calls will fail")
	}

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize gateway
	assistantIDs := make([]string, 0, len(cfg.Customers))
	for _, cust := range cfg.Customers {
		assistantIDs = append(assistantIDs, cust.AssistantID)
	}
	gw := gateway.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, assistantIDs)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize hub
	h := hub.NewHub()
	go h.Run()

	// Initialize service
	svc := service.New(db, gw, h, policyEngine, cfg)

	// Initialize handler
	httpHandler := handler.NewHandler(svc, h)

	// Create Echo server
	server := echo.New()
	server.HideBanner = true

	// Middleware
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())
	server.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.MaxUploadBytes)))

	// Register routes
	httpHandler.RegisterRoutes(server)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("hrdesk started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down hrdesk...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("hrdesk stopped")
}
