package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/gateway/handler"
	"github.com/RigelNana/cinexnema/gateway/router"
	"github.com/RigelNana/cinexnema/pkg/metrics"
	metricsgrpc "github.com/RigelNana/cinexnema/pkg/metrics/grpc"
	"github.com/RigelNana/cinexnema/pkg/ratelimit"
	authrepo "github.com/RigelNana/cinexnema/services/auth-service/repository"
	authservice "github.com/RigelNana/cinexnema/services/auth-service/service"
	"github.com/RigelNana/cinexnema/services/auth-service/utils"
	userrepo "github.com/RigelNana/cinexnema/services/user-service/repository"
	userservice "github.com/RigelNana/cinexnema/services/user-service/service"
	"github.com/RigelNana/cinexnema/services/video-service/config"
	"github.com/RigelNana/cinexnema/services/video-service/database"
	"github.com/RigelNana/cinexnema/services/video-service/events"
	"github.com/RigelNana/cinexnema/services/video-service/repository"
	"github.com/RigelNana/cinexnema/services/video-service/service"
	"github.com/RigelNana/cinexnema/services/video-service/storage"
)

func getServeCmd() *cobra.Command {
	var autoMigrate bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, autoMigrate)
		},
	}
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "run schema migrations on startup")
	return serveCmd
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger, autoMigrate bool) error {
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if autoMigrate {
		if err := migrateAll(db); err != nil {
			return err
		}
	}

	// a nil ObjectStore makes storage endpoints answer CONFIGURATION_MISSING
	var store storage.ObjectStore
	if cfg.Storage.Configured() {
		minioStore, err := storage.NewMinioStore(cfg.Storage)
		if err != nil {
			return err
		}
		store = minioStore
	} else {
		log.Warn("object storage not configured, upload endpoints disabled")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, authentication endpoints disabled")
	}

	publisher := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		client := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, router.ServiceName, cfg.Redis.AuthLimit, cfg.Redis.AuthWindow)
	}

	videos := repository.NewVideoRepository(db)
	projects := repository.NewProjectRepository(db)
	earnings := repository.NewEarningRepository(db)

	videoSvc := service.NewVideoService(videos, projects, store, publisher, cfg.Pricing, cfg.Storage, log)
	creatorSvc := service.NewCreatorService(videos, projects, earnings)
	storageSvc := service.NewStorageService(store, cfg.Storage, log)

	users := userservice.NewUserService(userrepo.NewUserRepository(db))
	authSvc := authservice.NewAuthService(
		authrepo.NewAuthRepository(db),
		users,
		utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		cfg.Auth.IsAdminEmail,
		log,
	)

	if err := handler.RegisterValidators(); err != nil {
		return err
	}
	system := handler.NewSystemHandler(
		func(ctx context.Context) error { return ping(ctx, db) },
		func(context.Context) error { return migrateAll(db) },
		Version,
	)
	engine := router.Setup(router.Deps{
		Auth:    handler.NewAuthHandler(authSvc),
		Videos:  handler.NewVideoHandler(videoSvc, cfg.Storage),
		Creator: handler.NewCreatorHandler(creatorSvc),
		Storage: handler.NewStorageHandler(storageSvc),
		System:  system,
		Tokens:  authSvc,
		Limiter: limiter,
		Log:     log,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(engine),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Server.MetricsPort != "" {
		metricsSrv = metrics.StartMetricsServer(cfg.Server.MetricsPort, log)
		log.WithField("port", cfg.Server.MetricsPort).Info("metrics server listening")
	}

	grpcSrv, err := startHealthServer(cfg.Server.GRPCPort, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return srv.Shutdown(shutdownCtx)
}

// ping checks the database and records pool stats.
func ping(ctx context.Context, db *gorm.DB) error {
	if err := database.Ping(ctx, db); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		metrics.RecordDBStats(router.ServiceName, sqlDB.Stats())
	}
	return nil
}

// startHealthServer exposes the gRPC health protocol when port is set.
func startHealthServer(port string, log logrus.FieldLogger) (*grpc.Server, error) {
	if port == "" {
		return nil, nil
	}
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, err
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(metricsgrpc.UnaryServerInterceptor(router.ServiceName)),
		grpc.ChainStreamInterceptor(metricsgrpc.StreamServerInterceptor(router.ServiceName)),
	)
	hs := health.NewServer()
	hs.SetServingStatus(router.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	go func() {
		log.WithField("port", port).Info("grpc health server listening")
		if err := s.Serve(lis); err != nil {
			log.WithError(err).Error("grpc server stopped")
		}
	}()
	return s, nil
}
