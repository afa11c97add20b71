package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/nixer89/xrpl-services-backend/internal/adapters/cache"
	"github.com/nixer89/xrpl-services-backend/internal/adapters/escrow"
	eventadapter "github.com/nixer89/xrpl-services-backend/internal/adapters/events"
	httpadapter "github.com/nixer89/xrpl-services-backend/internal/adapters/http"
	"github.com/nixer89/xrpl-services-backend/internal/adapters/ledger"
	"github.com/nixer89/xrpl-services-backend/internal/adapters/postgres"
	"github.com/nixer89/xrpl-services-backend/internal/adapters/security"
	"github.com/nixer89/xrpl-services-backend/internal/adapters/wallet"
	"github.com/nixer89/xrpl-services-backend/internal/application"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	cleanup    *application.CleanupWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping xrpl services backend", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgres.NewRepositories(pool)
	policies := cacheadapter.NewPolicyCache(repos.Policies)
	pendingStore := cacheadapter.NewRedisPendingStore(redisClient)

	platformClient := wallet.NewClient(logger, cfg.PlatformBaseURL, &http.Client{Timeout: cfg.PlatformHTTPTimeout})
	escrowClient := escrow.NewClient(logger, cfg.EscrowBaseURL, cfg.EscrowAPIKey, nil)
	tokenVerifier := security.NewJWTVerifier(cfg.AdminSecret)

	verifier := application.NewLedgerVerifier(
		logger,
		providerChain(logger, "mainnet", cfg.MainnetNodeURLs, cfg.MainnetRESTURL),
		providerChain(logger, "testnet", cfg.TestnetNodeURLs, cfg.TestnetRESTURL),
		cfg.LedgerTimeout,
	)

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			PendingTTL:       cfg.PendingTTL,
			ResolveScanLimit: cfg.ResolveScanLimit,
		},
		Logger:    logger,
		Ownership: repos.Ownership,
		Accounts:  repos.Accounts,
		Policies:  policies,
		Pending:   pendingStore,
		Platform:  platformClient,
		Escrow:    escrowClient,
		Verifier:  verifier,
		Tokens:    tokenVerifier,
		Events:    eventadapter.NewLoggingPublisher(logger),
	})

	handler := httpadapter.NewHandler(svc, policies, tokenVerifier)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		cleanup:    application.NewCleanupWorker(logger, svc, cfg.CleanupInterval),
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

// providerChain builds one network's ordered lookup chain: the configured
// websocket nodes first, then the REST fallback when one is configured.
func providerChain(logger *slog.Logger, network string, nodeURLs []string, restURL string) []ports.LedgerProvider {
	providers := make([]ports.LedgerProvider, 0, len(nodeURLs)+1)
	for i, nodeURL := range nodeURLs {
		providers = append(providers, ledger.NewNodeClient(logger, fmt.Sprintf("%s-node-%d", network, i+1), nodeURL))
	}
	if restURL != "" {
		providers = append(providers, ledger.NewRESTProvider(logger, network+"-rest", restURL, nil))
	}
	return providers
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The listener is bound here, not at construction time, so the worker
	// binary never holds the gRPC port.
	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		r.cleanupFn(ctx)
		return fmt.Errorf("listen gRPC: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", grpcLis.Addr().String())
		if err := r.grpcServer.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("pending cleanup worker started")
	err := r.cleanup.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
