package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/gyu5/Linkwallet/internal/config"
	"github.com/gyu5/Linkwallet/internal/handler"
	"github.com/gyu5/Linkwallet/internal/repository"
	"github.com/gyu5/Linkwallet/internal/service"
	"github.com/gyu5/Linkwallet/pkg/logging"
	"github.com/gyu5/Linkwallet/pkg/response"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level)

	db, err := initDB(cfg)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	groupRepo := repository.NewGroupRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize service and handlers
	savingsService := service.NewSavingsService(groupRepo, membershipRepo, notificationRepo, userRepo, redisClient, cfg)
	savingsHandler := handler.NewSavingsHandler(savingsService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	router := setupRoutes(savingsHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(savingsHandler *handler.SavingsHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health checks
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Registration happens before an identity exists
	api.HandleFunc("/users", savingsHandler.RegisterUser).Methods("POST")

	protected := api.NewRoute().Subrouter()
	protected.Use(handler.Identity)

	protected.HandleFunc("/groups", savingsHandler.CreateGroup).Methods("POST")
	protected.HandleFunc("/groups/{groupId}/progress", savingsHandler.GroupProgress).Methods("GET")
	protected.HandleFunc("/groups/{groupId}/progress/me", savingsHandler.MyProgress).Methods("GET")
	protected.HandleFunc("/groups/{groupId}/contributions", savingsHandler.Contribute).Methods("POST")
	protected.HandleFunc("/groups/{groupId}/withdrawals", savingsHandler.Withdraw).Methods("POST")
	protected.HandleFunc("/groups/{groupId}/plan", savingsHandler.Plan).Methods("GET")
	protected.HandleFunc("/groups/{groupId}/message", savingsHandler.SetMessage).Methods("PUT")
	protected.HandleFunc("/notifications", savingsHandler.ListNotifications).Methods("GET")

	return router
}
