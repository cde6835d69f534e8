package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	grpcctx "github.com/dtroode/gymkeeper-server/internal/api/grpc/context"
	"github.com/dtroode/gymkeeper-server/internal/api/grpc/middleware"
	"github.com/dtroode/gymkeeper-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/gymkeeper-server/internal/api/grpc/server"
	"github.com/dtroode/gymkeeper-server/internal/config"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
	"github.com/dtroode/gymkeeper-server/internal/notify"
	"github.com/dtroode/gymkeeper-server/internal/notify/mailbox"
	"github.com/dtroode/gymkeeper-server/internal/notify/rabbitmq"
	"github.com/dtroode/gymkeeper-server/internal/password"
	"github.com/dtroode/gymkeeper-server/internal/ratelimit"
	"github.com/dtroode/gymkeeper-server/internal/repository/postgres"
	"github.com/dtroode/gymkeeper-server/internal/server"
	"github.com/dtroode/gymkeeper-server/internal/service"
	storage "github.com/dtroode/gymkeeper-server/internal/storage/minio"
	"github.com/dtroode/gymkeeper-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	gymRepo := postgres.NewGymRepository(db)
	trainerRepo := postgres.NewTrainerRepository(db)

	tokenManager := token.NewJWT(token.Options{
		AccessSecret:       cfg.JWT.AccessSecret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		VerificationSecret: cfg.JWT.VerificationSecret,
		AccessTTL:          cfg.JWT.AccessTTL,
		RefreshTTL:         cfg.JWT.RefreshTTL,
		VerificationTTL:    cfg.JWT.VerificationTTL,
	})
	hasher := password.NewBcrypt(cfg.Bcrypt.Cost)

	transport, closeTransport, err := newTransport(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize notifier", "transport", cfg.Notifier.Transport, "error", err)
	}
	defer closeTransport()
	notifier := notify.NewMailer(transport, logger)

	authService := service.NewAuth(userRepo, hasher, tokenManager, notifier, cfg.EmailVerifyURL, logger)
	sessionGuard := service.NewSession(tokenManager, userRepo, logger)
	gymService := service.NewGyms(gymRepo, logger)
	invitationService := service.NewInvitations(gymRepo, trainerRepo, notifier, service.InvitationOptions{
		TTL:        cfg.Invitation.TTL,
		ConfirmURL: cfg.Invitation.ConfirmURL,
	}, logger)
	rosterService := service.NewRosters(gymRepo, trainerRepo, logger)

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	r := router.New(router.Services{
		Auth:        authService,
		Gyms:        gymService,
		Invitations: invitationService,
		Rosters:     rosterService,
		Session:     sessionGuard,
	}, limiter, grpcctx.NewManager(), logger)

	srv := grpcServer.NewGRPCServer(r.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))
	sl := server.NewSecurityLayer(cfg.GRPC)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "tls", cfg.GRPC.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// newTransport builds the notification transport named in the config.
// The returned func releases its connections.
func newTransport(ctx context.Context, cfg *config.Config, logger *logger.Logger) (notify.Transport, func(), error) {
	switch cfg.Notifier.Transport {
	case "amqp":
		publisher, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Queue, logger)
		if err != nil {
			return nil, nil, err
		}
		return publisher, closer(publisher, logger), nil
	case "mailbox":
		client, err := storage.Connect(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			return nil, nil, err
		}
		return mailbox.New(client), func() {}, nil
	case "log", "":
		return notify.NewLogTransport(logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier transport %q", cfg.Notifier.Transport)
	}
}

// newLimiter returns nil when rate limiting is disabled or Redis is unreachable.
func newLimiter(ctx context.Context, cfg *config.Config, logger *logger.Logger) (middleware.Limiter, func()) {
	if !cfg.RateLimit.Enabled {
		return nil, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", cfg.Redis.Addr, "error", err)
		_ = rdb.Close()
		return nil, func() {}
	}

	limiter := ratelimit.New(rdb, ratelimit.Options{
		Capacity: cfg.RateLimit.Capacity,
		Rate:     cfg.RateLimit.Rate,
		Prefix:   "gymkeeper:ratelimit",
	})
	return limiter, closer(rdb, logger)
}

func closer(c io.Closer, logger *logger.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Error("failed to close resource", "error", err)
		}
	}
}
