package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/LavaJover/shvark-dish-request-service/internal/app/background"
	"github.com/LavaJover/shvark-dish-request-service/internal/app/setup"
	"github.com/LavaJover/shvark-dish-request-service/internal/config"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/router"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/tracing"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	appLogger, closeLog, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer closeLog()
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		appLogger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	deps, err := setup.InitializeDependencies(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to init dependencies", "error", err)
		os.Exit(1)
	}
	uc, err := setup.InitializeUseCases(deps)
	if err != nil {
		appLogger.Error("failed to init usecases", "error", err)
		os.Exit(1)
	}

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr: fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: router.New(router.Config{
			JWTSecret:      cfg.Auth.JWTSecret,
			AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
			Gatherer:       deps.Registry,
			Logger:         appLogger,
		}, router.Handlers{
			Requests:    handlers.NewRequestHandler(uc.RequestStore, appLogger),
			Negotiation: handlers.NewNegotiationHandler(uc.Wizard, uc.Sessions, appLogger),
			Offers:      handlers.NewOfferHandler(uc.OfferLedger, uc.RequestStore, uc.Arbitration, appLogger),
		}),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	// gRPC server only answers health checks
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		appLogger.Error("failed to listen", "error", err)
		os.Exit(1)
	}

	// Expiry sweeps and idle session cleanup
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	workersDone := background.NewBackgroundTasks(uc.Scheduler, uc.Sessions, appLogger).
		StartAll(workerCtx, cfg.Negotiation.WizardSessionTTL)

	go func() {
		appLogger.Info("gRPC health server started", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server failed", "error", err)
		}
	}()
	go func() {
		appLogger.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	<-ctx.Done()
	appLogger.Info("shutting down...")
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()

	cancelWorkers()
	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
		appLogger.Warn("background tasks did not stop in time")
	}

	if err := deps.Close(); err != nil {
		appLogger.Error("failed to close dependencies", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Error("failed to flush traces", "error", err)
	}
	appLogger.Info("server stopped")
}
