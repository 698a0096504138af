package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/edital-planner/internal/auth"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/metrics"
	repo "github.com/joseph-ayodele/edital-planner/internal/repository"
	"github.com/joseph-ayodele/edital-planner/internal/server"
)

func main() {
	cfg, err := common.LoadServerConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	logger, err := common.NewLogger(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("editald.config.invalid", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("editald.exit", zap.Error(err))
	}
	logger.Info("editald.stopped")
}

func run(ctx context.Context, cfg *common.ServerConfig, logger *zap.Logger) error {
	pool, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer repo.Close(pool, logger)
	if err := repo.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return common.WrapError(err, "redis ping")
	}
	logger.Info("editald.redis.ok", zap.String("addr", cfg.Redis.Addr))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)

	users := repo.NewUserRepository(pool, logger)
	profiles := repo.NewProfileRepository(pool, logger)
	authSvc := auth.NewService(users, auth.NewRedisTokenStore(rdb, cfg.Auth.SessionTTL), cfg.Auth.BcryptCost, logger)

	health := func(ctx context.Context) error {
		if err := repo.HealthCheck(ctx, pool, 2*time.Second, logger); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	}
	api := server.New(authSvc, profiles, health, cfg.HTTP.RequestTimeout, logger)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	mr := chi.NewRouter()
	mr.Handle("/metrics", metrics.Handler(reg))
	metricsSrv := &http.Server{Addr: cfg.HTTP.MetricsAddr, Handler: mr, ReadHeaderTimeout: 5 * time.Second}

	grpcSrv, hs := server.NewGRPC(logger)
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return common.WrapError(err, "grpc listen")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("editald.http.listening", zap.String("addr", cfg.HTTP.Addr))
		return serveHTTP(httpSrv)
	})
	g.Go(func() error {
		logger.Info("editald.metrics.listening", zap.String("addr", cfg.HTTP.MetricsAddr))
		return serveHTTP(metricsSrv)
	})
	g.Go(func() error {
		logger.Info("editald.grpc.listening", zap.String("addr", cfg.GRPC.Addr))
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		server.WatchHealth(gctx, hs, health, 15*time.Second, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("editald.shutdown")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcSrv.GracefulStop()
		return errors.Join(httpSrv.Shutdown(sctx), metricsSrv.Shutdown(sctx))
	})
	return g.Wait()
}

func serveHTTP(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
