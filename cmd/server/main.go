package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pawnshop/pawn-engine/internal/config"
	"github.com/pawnshop/pawn-engine/internal/handler"
	"github.com/pawnshop/pawn-engine/internal/repository"
	"github.com/pawnshop/pawn-engine/internal/service"
	"github.com/pawnshop/pawn-engine/pkg/lock"
	"github.com/pawnshop/pawn-engine/pkg/logger"
	"github.com/pawnshop/pawn-engine/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := initDB(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	repaymentRepo := repository.NewRepaymentRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	itemRepo := repository.NewPawnItemRepository(db)
	currencyRepo := repository.NewCurrencyRepository(db)
	branchRepo := repository.NewBranchRepository(db)

	txRunner := repository.NewTxRunner(db)
	locker := lock.NewLocker(redisClient, cfg.GetLockTTL(), cfg.GetLockAcquireTimeout())

	pawnService := service.NewPawnService(
		loanRepo, repaymentRepo, customerRepo, itemRepo,
		currencyRepo, branchRepo,
		txRunner, locker, cfg, zapLogger,
	)

	loanHandler := handler.NewLoanHandler(pawnService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(loanHandler, healthHandler, zapLogger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(loanHandler *handler.LoanHandler, healthHandler *handler.HealthHandler, zapLogger *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	router.Use(response.LoggingMiddleware(zapLogger))
	router.Use(response.CORSMiddleware)

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	loanHandler.RegisterRoutes(router)

	return router
}
