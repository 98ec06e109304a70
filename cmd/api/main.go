package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	httpadp "metric-backend/internal/adapter/http"
	"metric-backend/internal/adapter/repository/mysql"
	"metric-backend/internal/config"
	"metric-backend/internal/infrastructure/cache"
	"metric-backend/internal/infrastructure/db"
	"metric-backend/internal/infrastructure/logger"
	"metric-backend/internal/infrastructure/metrics"
	"metric-backend/internal/usecase"
	"metric-backend/internal/usecase/insurance"
	"metric-backend/internal/usecase/loan"
	"metric-backend/internal/usecase/trust"
	"metric-backend/internal/usecase/user"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := db.Migrate(context.Background(), gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	decimal.MarshalJSONWithoutQuotes = true

	m := metrics.New()
	rec := usecase.NewRecorder(log, m)
	repos := mysql.Repos(gdb)
	tx := mysql.NewGormUoW(gdb)
	p := cfg.Policy

	pool := insurance.NewUsecase(repos, tx, p.PayoutRate, cfg.TxTimeout, rec)
	loans := loan.NewUsecase(repos, tx, pool, loan.Policy{
		MinAmount:            p.MinAmount,
		MaxAmount:            p.MaxAmount,
		MinDuration:          p.MinDuration,
		MaxDuration:          p.MaxDuration,
		FallbackInstallments: p.FallbackInstallments,
		Timeout:              cfg.TxTimeout,
	}, rec)
	users := user.NewUsecase(repos, tx, pool, user.Policy{
		StartingBalance:     p.StartingBalance,
		InitialContribution: p.InitialContribution,
		Timeout:             cfg.TxTimeout,
	}, rec)
	vouches := trust.NewUsecase(tx, p.VouchReward, cfg.TxTimeout, rec)

	e := httpadp.NewRouter(httpadp.RouterDeps{
		Log:          log,
		Metrics:      m,
		Redis:        rdb,
		IdempTTL:     time.Duration(cfg.IdempTTLSecs) * time.Second,
		RateLimitRPS: float64(cfg.RateLimitRPS),
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"db":    sqlDB.PingContext,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Loans:     httpadp.NewLoanHandler(loans),
		Users:     httpadp.NewUserHandler(users),
		Trust:     httpadp.NewTrustHandler(vouches),
		Insurance: httpadp.NewInsuranceHandler(pool),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
