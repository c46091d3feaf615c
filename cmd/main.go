package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpctx "github.com/dtroode/shareride-auth/internal/api/http/context"
	"github.com/dtroode/shareride-auth/internal/api/http/cookie"
	"github.com/dtroode/shareride-auth/internal/api/http/router"
	httpServer "github.com/dtroode/shareride-auth/internal/api/http/server"
	"github.com/dtroode/shareride-auth/internal/config"
	"github.com/dtroode/shareride-auth/internal/health"
	"github.com/dtroode/shareride-auth/internal/logger"
	"github.com/dtroode/shareride-auth/internal/model"
	"github.com/dtroode/shareride-auth/internal/password"
	"github.com/dtroode/shareride-auth/internal/repository/memory"
	"github.com/dtroode/shareride-auth/internal/repository/postgres"
	redisrepo "github.com/dtroode/shareride-auth/internal/repository/redis"
	"github.com/dtroode/shareride-auth/internal/server"
	"github.com/dtroode/shareride-auth/internal/service"
	"github.com/dtroode/shareride-auth/internal/telemetry"
	"github.com/dtroode/shareride-auth/internal/token"
)

const serviceName = "shareride-auth"

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

// sessionBackend is a session store that can also report its health.
type sessionBackend interface {
	model.SessionStore
	health.Checker
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	logAppVersion()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, serviceName, buildVersion, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}

	db, err := postgres.NewConection(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db.DB)

	sessionStore, closeSessions, err := newSessionBackend(cfg, db)
	if err != nil {
		logger.Fatal("failed to initialize session store", "error", err, "backend", cfg.Session.Backend)
	}
	defer closeSessions()
	logger.Info("session store ready", "backend", sessionStore.Name())

	throttle := service.NewLoginThrottle(cfg.Login.MaxAttempts, cfg.Login.Window, cfg.Login.Lockout)
	authService := service.NewAuth(
		userRepo,
		sessionStore,
		password.NewBcrypt(cfg.Password.Cost),
		throttle,
		cfg.Database.QueryTimeout,
		logger,
	)
	formTokens := token.NewJWT(cfg.CSRF.Secret, cfg.CSRF.TTL)

	checkers := []health.Checker{db}
	if cfg.Session.Backend != config.SessionBackendPostgres {
		checkers = append(checkers, sessionStore)
	}
	readiness := health.NewService(checkers...)

	r := router.New(
		authService,
		readiness,
		formTokens,
		httpctx.NewManager(),
		router.Cookies{
			Session: cookie.Jar{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure, MaxAge: cfg.Session.TTL},
			CSRF:    cookie.Jar{Name: router.CSRFCookieName, Secure: cfg.Session.CookieSecure, MaxAge: cfg.CSRF.TTL},
		},
		logger,
	)
	handler := otelhttp.NewHandler(r.Register(), serviceName)

	srv := httpServer.NewHTTPServer(handler, fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("error during tracing shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}

// newSessionBackend builds the configured session store and a function that
// releases its resources.
func newSessionBackend(cfg *config.Config, db *postgres.Connection) (sessionBackend, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redisrepo.NewSessionStore(rdb, cfg.Session.TTL)
		return store, func() { _ = rdb.Close() }, nil
	case config.SessionBackendMemory:
		return memory.NewSessionStore(cfg.Session.TTL), func() {}, nil
	case config.SessionBackendPostgres:
		return postgresSessions{
			SessionRepository: postgres.NewSessionRepository(db.DB, cfg.Session.TTL),
			conn:              db,
		}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// postgresSessions reports the health of the connection the sessions live in.
type postgresSessions struct {
	*postgres.SessionRepository
	conn *postgres.Connection
}

func (postgresSessions) Name() string {
	return config.SessionBackendPostgres
}

func (s postgresSessions) Check(ctx context.Context) error {
	return s.conn.Check(ctx)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
