package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pawnshop/pawn-engine/internal/config"
	"github.com/pawnshop/pawn-engine/internal/repository"
	"github.com/pawnshop/pawn-engine/internal/service"
	"github.com/pawnshop/pawn-engine/pkg/lock"
	"github.com/pawnshop/pawn-engine/pkg/logger"
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

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pawnService := service.NewPawnService(
		repository.NewLoanRepository(db),
		repository.NewRepaymentRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewPawnItemRepository(db),
		repository.NewCurrencyRepository(db),
		repository.NewBranchRepository(db),
		repository.NewTxRunner(db),
		lock.NewLocker(redisClient, cfg.GetLockTTL(), cfg.GetLockAcquireTimeout()),
		cfg,
		zapLogger,
	)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		zapLogger.Fatal("Invalid scheduler timezone", zap.Error(err))
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily sweep: transition every loan past its redemption deadline to OVERDUE.
	_, err = c.AddFunc(cfg.Scheduler.OverdueSweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		overdue, err := pawnService.SweepOverdue(ctx)
		if err != nil {
			zapLogger.Error("Overdue sweep failed", zap.Error(err))
			return
		}
		zapLogger.Info("Overdue sweep finished", zap.Int("overdue_loans", overdue))
	})
	if err != nil {
		zapLogger.Fatal("Failed to schedule overdue sweep", zap.Error(err))
	}

	c.Start()
	zapLogger.Info("Scheduler started",
		zap.String("overdue_sweep_cron", cfg.Scheduler.OverdueSweepCron),
		zap.String("timezone", cfg.Scheduler.Timezone),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	zapLogger.Info("Scheduler stopped")
}
