// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal feature
// packages.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lingkod/internal/admin"
	"lingkod/internal/audit"
	clearancehandler "lingkod/internal/clearance/handler"
	clearanceservice "lingkod/internal/clearance/service"
	clearancestore "lingkod/internal/clearance/store"
	"lingkod/internal/docgen"
	"lingkod/internal/docgen/googledocs"
	docgenmetrics "lingkod/internal/docgen/metrics"
	"lingkod/internal/notify"
	"lingkod/internal/photo"
	"lingkod/internal/platform/config"
	"lingkod/internal/platform/httpserver"
	"lingkod/internal/platform/logger"
	"lingkod/internal/platform/metrics"
	"lingkod/internal/platform/objectstore"
	"lingkod/internal/platform/postgres"
	"lingkod/internal/platform/redis"
	registrationhandler "lingkod/internal/registration/handler"
	registrationservice "lingkod/internal/registration/service"
	registrationstore "lingkod/internal/registration/store"
	"lingkod/internal/tenant/cache"
	tenantmetrics "lingkod/internal/tenant/metrics"
	"lingkod/internal/tenant/resolver"
	tenantstore "lingkod/internal/tenant/store"
	httptransport "lingkod/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	tenants := tenantstore.NewPostgres(db)
	registrations := registrationstore.NewPostgres(db)
	submissions := clearancestore.NewPostgres(db)

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	var tenantCache cache.Cache
	if redisClient != nil {
		defer redisClient.Close()
		tenantCache = cache.NewRedis(redisClient.Client)
	} else {
		log.Info("redis not configured, tenant cache is in-process")
		tenantCache = cache.NewMemory()
	}

	tenantResolver := resolver.New(tenants, tenantCache, log,
		resolver.WithSlugOverride(cfg.TenantSlugOverride),
		resolver.WithDevFallback(cfg.DevFallback),
		resolver.WithMetrics(tenantmetrics.New()),
	)

	m := metrics.New()

	objects := objectstore.NewSupabase(cfg.StorageURL, cfg.StorageServiceKey)
	photos := photo.NewIngestor(objects, "photos")

	synthesizer := docgen.NewService(
		googledocs.New(cfg.DocsClientID, cfg.DocsClientSecret, cfg.DocsRefreshToken),
		cfg.DocsOutputFolder,
		log,
		docgen.WithTemplateFallback(cfg.TemplateIDs),
		docgen.WithMetrics(docgenmetrics.New()),
	)

	var sender notify.Sender
	if cfg.SMSAPIToken != "" {
		sender = notify.NewPhilSMS(cfg.SMSAPIToken, cfg.SMSSenderID)
	} else {
		log.Warn("SMS gateway not configured, notifications stay in memory")
		sender = notify.NewMemorySender()
	}
	notifier := notify.NewDispatcher(sender, cfg.SMSAdminDest, m, log)

	var publisherOpts []audit.PublisherOption
	if cfg.KafkaBrokers != "" {
		sink, err := audit.NewKafkaSink(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaAuditTopic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, audit.WithSinks(sink))
	}
	publisher := audit.NewPublisher(audit.NewMemoryStore(), log, publisherOpts...)
	auditQueue := audit.NewQueue(256, log)
	go func() {
		if err := audit.NewWorker(publisher, auditQueue.Inbox()).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	sessions := admin.NewSessionManager(cfg.SessionSecret)
	lockout := admin.NewLockout()
	go lockout.Run(ctx)
	adminHandler := admin.NewHandler(sessions, lockout, cfg.AdminPasswordHash, log,
		admin.WithAuditor(auditQueue),
	)

	registrationService := registrationservice.NewService(registrations, photos, notifier, auditQueue, m, log)
	clearanceService := clearanceservice.NewService(submissions, registrations, photos, synthesizer, notifier, auditQueue, m, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Resolver:     tenantResolver,
		Sessions:     sessions,
		Admin:        adminHandler,
		Registration: registrationhandler.New(registrationService, log),
		Clearance:    clearancehandler.New(clearanceService, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting lingkod server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
