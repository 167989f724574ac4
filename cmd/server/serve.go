package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/staff-portal/api/handler"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/internal/catalog"
	"github.com/fastygo/staff-portal/internal/config"
	"github.com/fastygo/staff-portal/internal/infrastructure/buffer"
	"github.com/fastygo/staff-portal/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/staff-portal/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/staff-portal/internal/infrastructure/redis"
	"github.com/fastygo/staff-portal/internal/middleware"
	"github.com/fastygo/staff-portal/internal/router"
	"github.com/fastygo/staff-portal/internal/services"
	"github.com/fastygo/staff-portal/internal/services/lifecycle"
	"github.com/fastygo/staff-portal/pkg/httpcontext"
	"github.com/fastygo/staff-portal/pkg/logger"
	"github.com/fastygo/staff-portal/pkg/token"
	"github.com/fastygo/staff-portal/repository"
	boltRepo "github.com/fastygo/staff-portal/repository/bolt"
	"github.com/fastygo/staff-portal/repository/postgres"
	redisRepo "github.com/fastygo/staff-portal/repository/redis"
	authUC "github.com/fastygo/staff-portal/usecase/auth"
	portalUC "github.com/fastygo/staff-portal/usecase/portal"
	profileUC "github.com/fastygo/staff-portal/usecase/profile"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			zapLogger, err := logger.New(logger.Config{
				Level:    cfg.Logger.Level,
				Encoding: cfg.Logger.Encoding,
				App:      cfg.AppName,
			})
			if err != nil {
				return fmt.Errorf("logger error: %w", err)
			}
			defer zapLogger.Sync()

			return serve(cmd.Context(), cfg, zapLogger)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(parent)
	defer cancel()
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			zapLogger.Error("graceful shutdown error", zap.Error(err))
		}
	}()

	fixtures, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Error("migrations failed, continuing with buffered directory writes", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		return fmt.Errorf("postgres config: %w", err)
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	sessions, checks, err := openSessionStore(appCtx, cfg, manager, pool)
	if err != nil {
		return err
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		return fmt.Errorf("open buffer store: %w", err)
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(checks, bufferStore, 10*time.Second, zapLogger)
	mon.Refresh(appCtx)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	employeeRepo := postgres.NewEmployeeRepository(pool)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		employeeRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	profileUseCase := profileUC.New(employeeRepo, services.NewBufferBridge(bufferProcessor), zapLogger)
	authUseCase := authUC.New(sessions, profileUseCase, zapLogger)
	policy := access.NewPolicy(access.DefaultPages)
	portalUseCase := portalUC.New(policy, fixtures, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	cookies := middleware.NewSessionCookies(
		cfg.Session.CookieName,
		cfg.Session.Secure,
		token.NewSigner(cfg.Session.TokenSecret, cfg.Session.TokenIssuer),
	)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, cookies, ctxAdapter, zapLogger),
		Portal: apiHandler.NewPortalHandler(portalUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	gate := middleware.NewGate(authUseCase, policy, cookies, ctxAdapter, zapLogger)
	r := router.New(handlers, gate)

	server := &fasthttp.Server{
		Handler:            middleware.AccessLog(zapLogger, r.Handler),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("session_store", cfg.Session.Store))
		serveErr <- server.ListenAndServe(cfg.Address())
	}()
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	select {
	case <-appCtx.Done():
		return nil
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server crashed: %w", err)
		}
		return nil
	}
}

// openSessionStore opens the configured session store and returns the dependency checks that
// decide whether the service counts as online.
func openSessionStore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, pool *pgxpool.Pool) (repository.SessionRepository, []monitor.Check, error) {
	checks := []monitor.Check{monitor.PostgresCheck(pool, true)}

	switch cfg.Session.Store {
	case config.SessionStoreBolt:
		store, err := boltRepo.OpenSessionStore(cfg.Session.BoltPath, cfg.Session.PendingTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		manager.Register("session_store", func(context.Context) error {
			return store.Close()
		})
		return store, checks, nil
	default:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		manager.Register("redis", func(context.Context) error {
			return client.Close()
		})
		checks = append(checks, monitor.RedisCheck(client, true))
		return redisRepo.NewSessionRepository(client, cfg.Session.KeyPrefix, cfg.Session.TTL, cfg.Session.PendingTTL), checks, nil
	}
}
