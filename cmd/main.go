package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/gatekeeper/internal/api/discord"
	"github.com/dtroode/gatekeeper/internal/api/grpc/router"
	grpcServer "github.com/dtroode/gatekeeper/internal/api/grpc/server"
	httpapi "github.com/dtroode/gatekeeper/internal/api/http"
	"github.com/dtroode/gatekeeper/internal/config"
	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/metrics"
	"github.com/dtroode/gatekeeper/internal/model"
	"github.com/dtroode/gatekeeper/internal/repository/ledger"
	"github.com/dtroode/gatekeeper/internal/repository/roster"
	"github.com/dtroode/gatekeeper/internal/server"
	"github.com/dtroode/gatekeeper/internal/service"
	filestorage "github.com/dtroode/gatekeeper/internal/storage/file"
	miniostorage "github.com/dtroode/gatekeeper/internal/storage/minio"
	redisstorage "github.com/dtroode/gatekeeper/internal/storage/redis"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const (
	shutdownTimeout = 10 * time.Second
	redisKeyPrefix  = "gatekeeper:"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	logAppVersion()

	store, closeStore, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "backend", cfg.Ledger.Backend, "error", err)
	}
	defer closeStore()

	students, err := loadRoster(ctx, cfg, store)
	if err != nil {
		logger.Fatal("failed to load roster", "source", cfg.Roster.Source, "error", err)
	}
	if students.Skipped() > 0 {
		logger.Warn("skipped incomplete roster rows", "count", students.Skipped())
	}

	verified, err := ledger.Open(ctx, store, cfg.Ledger.Key)
	if err != nil {
		logger.Fatal("failed to load verified ledger", "key", cfg.Ledger.Key, "error", err)
	}
	logger.Info("data loaded", "roster_entries", students.Len(), "verified_users", verified.Len())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	m.SetRosterEntries(students.Len())
	m.SetVerifiedUsers(verified.Len())

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create discord session", "error", err)
	}
	session.Identify.Intents = discord.Intents
	client := discord.NewClient(session)

	registry := service.NewRegistry(verified, cfg.Session.Timeout)
	effector := service.NewEffector(client, verified, service.Roles{
		Unverified: cfg.Discord.UnverifiedRole,
		Member:     cfg.Discord.MemberRole,
	}, cfg.Discord.ActionTimeout, m, logger)
	gatekeeper := service.NewGatekeeper(registry, students, verified, effector, client, service.Trigger{
		Channel:       cfg.Discord.VerifyChannel,
		StartKeywords: cfg.Discord.StartKeywords,
		CancelKeyword: cfg.Discord.CancelKeyword,
	}, cfg.Ledger.WriteTimeout, m, logger)

	healthServer := health.NewServer()
	setServing := func(ready bool) {
		status := healthpb.HealthCheckResponse_NOT_SERVING
		if ready {
			status = healthpb.HealthCheckResponse_SERVING
		}
		healthServer.SetServingStatus("", status)
		healthServer.SetServingStatus(router.ServiceName, status)
	}
	setServing(false)

	events := discord.NewHandler(ctx, gatekeeper, client, setServing, logger.With("component", "discord"))
	events.Register(session)

	var checks []httpapi.HealthChecker
	if hc, ok := store.(httpapi.HealthChecker); ok {
		checks = append(checks, hc)
	}

	opsLogger := logger.With("component", "ops")
	grpcSrv := grpcServer.NewGRPCServer(router.New(healthServer, opsLogger).Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))
	httpSrv := httpapi.NewServer(cfg.HTTP.Addr, httpapi.NewRouter(httpapi.New(reg, events, opsLogger, checks...)))

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	if err := session.Open(); err != nil {
		logger.Fatal("failed to open discord gateway", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return serve(logger, grpcSrv, sl) })
	g.Go(func() error { return serve(logger, httpSrv, server.NewPlainListener()) })
	g.Go(func() error {
		runSweeper(gctx, gatekeeper, cfg.Session.SweepInterval, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received interruption signal, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Closing the gateway first stops new events; REST replies still work.
		events.SetReady(false)
		if err := session.Close(); err != nil {
			logger.Error("error closing discord gateway", "error", err)
		}
		gatekeeper.Shutdown(shutdownCtx)
		for _, s := range []model.Server{grpcSrv, httpSrv} {
			if err := s.Stop(shutdownCtx); err != nil {
				logger.Error("error during server shutdown", "error", err, "address", s.Address())
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("stopped with error", "error", err)
		os.Exit(1)
	}
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

func serve(logger *logger.Logger, s model.Server, sl model.SecurityLayer) error {
	logger.Info("Starting server on", "address", s.Address())
	if err := s.Start(sl); err != nil {
		return fmt.Errorf("server %s: %w", s.Address(), err)
	}
	return nil
}

func runSweeper(ctx context.Context, gatekeeper *service.Gatekeeper, interval time.Duration, logger *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := gatekeeper.Sweep(ctx); n > 0 {
				logger.Debug("expired sessions swept", "count", n)
			}
		}
	}
}

// newStorage builds the ledger backend. The returned func releases it.
func newStorage(ctx context.Context, cfg *config.Config) (model.Storage, func(), error) {
	noop := func() {}

	switch cfg.Ledger.Backend {
	case config.BackendMinio:
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create minio client: %w", err)
		}
		s, err := miniostorage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case config.BackendRedis:
		rdb, err := redisstorage.Connect(ctx, cfg.Redis.URL, cfg.Redis.DialTimeout)
		if err != nil {
			return nil, noop, err
		}
		return redisstorage.NewClient(rdb, redisKeyPrefix), func() { _ = rdb.Close() }, nil

	default:
		s, err := filestorage.NewClient(cfg.Ledger.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	}
}

func loadRoster(ctx context.Context, cfg *config.Config, store model.Storage) (*roster.Store, error) {
	if cfg.Roster.Source != config.RosterSourceStorage {
		return roster.LoadFile(cfg.Roster.Path)
	}

	rc, err := store.Download(ctx, cfg.Roster.Key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: roster object %q not found", model.ErrDataLoad, cfg.Roster.Key)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrDataLoad, err)
	}
	defer rc.Close()

	return roster.Load(rc)
}
