package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "fitcore/internal/adapter/http"
	"fitcore/internal/adapter/memory"
	"fitcore/internal/adapter/postgres"
	adaptredis "fitcore/internal/adapter/redis"
	"fitcore/internal/app"
	"fitcore/internal/config"
	"fitcore/internal/domain"
	"fitcore/internal/logging"
	"fitcore/internal/metrics"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

// store is everything the services need from a persistence backend.
type store interface {
	domain.ProgramRepository
	domain.FoodLogRepository
	domain.ProfileRepository
	domain.UserRepository
}

const sessionPurgeInterval = time.Hour

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to the toml config file")
	dotenvPath := flag.String("dotenv", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath, *dotenvPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      *env,
		SentryEnabled:    cfg.SentryDSN != "",
		SentryDSN:        cfg.SentryDSN,
		SentryServerName: "fitcore",
	})
	defer sentry.Flush(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repo     store
		sessions domain.SessionRepository
	)
	if cfg.DatabaseURL == "" {
		log.Warnln("database_url not set, using the in-memory store")
		mem := memory.New()
		repo, sessions = mem, mem.NewSessionRepo()
	} else {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %s", err)
		}
		defer func() { _ = db.Close() }()
		repo, sessions = db, postgres.NewSessionRepo(db)
	}

	if cfg.RedisAddr != "" {
		rdb, err := adaptredis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis: %s", err)
		}
		defer func() { _ = rdb.Close() }()
		sessions = adaptredis.NewSessionRepo(rdb)
		log.Infof("sessions stored in redis at %s", cfg.RedisAddr)
	}

	loc := time.Local
	if cfg.Timezone != "" {
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			log.Fatalf("timezone %q: %s", cfg.Timezone, err)
		}
	}

	goalsSvc := app.NewGoalsService(repo)
	authSvc := app.NewAuthService(repo, sessions)
	svc := adapthttp.Services{
		Progress: app.NewProgressService(repo),
		Goals:    goalsSvc,
		Ledger:   app.NewLedgerService(repo, goalsSvc).InLocation(loc),
		Auth:     authSvc,
	}

	if cfg.InitialUser != "" && cfg.InitialPassword != "" {
		err := authSvc.CreateInitialUser(ctx, cfg.InitialUser, cfg.InitialPassword)
		switch {
		case errors.Is(err, app.ErrUsersExist):
			log.Debugln("initial user skipped, users already exist")
		case err != nil:
			log.Fatalf("create initial user: %s", err)
		default:
			log.Infof("created initial user %s", cfg.InitialUser)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager(cfg.MetricsNamespace, "server", reg)

	oidcConfig, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC)
	if err != nil {
		log.Fatalf("sso setup: %s", err)
	}

	server := adapthttp.New(svc, metricsManager, cfg.WebDir).
		WithOIDC(oidcConfig).
		WithGatherer(reg)
	if cfg.DisableAuth {
		log.Warnln("authentication disabled")
		server = server.WithoutAuth()
	}

	go purgeSessions(ctx, authSvc)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received ...", receivedSig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %s", err)
	}
}

func purgeSessions(ctx context.Context, auth *app.AuthService) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpired(ctx); err != nil {
				log.Errorf("purge expired sessions: %s", err)
			}
		}
	}
}
