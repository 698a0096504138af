package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

// NewGRPC returns a gRPC server carrying the standard health service and
// reflection. The health service starts SERVING.
func NewGRPC(logger *zap.Logger) (*grpc.Server, *health.Server) {
	logger = common.OrNop(logger)
	srv := grpc.NewServer(grpc.UnaryInterceptor(unaryLogger(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(srv)
	return srv, hs
}

// WatchHealth probes check every interval and mirrors the result on hs until
// ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, check HealthFunc, interval time.Duration, logger *zap.Logger) {
	logger = common.OrNop(logger)
	t := time.NewTicker(interval)
	defer t.Stop()
	serving := true
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, interval)
			err := check(pctx)
			cancel()
			if ok := err == nil; ok != serving {
				serving = ok
				st := healthpb.HealthCheckResponse_SERVING
				if !ok {
					st = healthpb.HealthCheckResponse_NOT_SERVING
				}
				hs.SetServingStatus("", st)
				logger.Warn("server.health.changed", zap.Bool("serving", ok), zap.Error(err))
			}
		}
	}
}

func unaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("server.grpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return resp, err
	}
}
