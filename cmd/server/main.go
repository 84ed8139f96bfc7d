// main wires the land registry service: persistence (PostgreSQL or in-memory),
// the approval service, audit trail, notifications, and the HTTP surface.
// Business logic lives in internal packages; main only assembles them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foncier/internal/audit"
	jwttoken "foncier/internal/jwt_token"
	"foncier/internal/notification"
	"foncier/internal/platform/config"
	"foncier/internal/platform/httpserver"
	"foncier/internal/platform/logger"
	platformmetrics "foncier/internal/platform/metrics"
	"foncier/internal/platform/postgres"
	platformredis "foncier/internal/platform/redis"
	registryhandler "foncier/internal/registry/handler"
	registrymetrics "foncier/internal/registry/metrics"
	"foncier/internal/registry/service"
	"foncier/internal/registry/store"
	citizenStore "foncier/internal/registry/store/citizen"
	parcelStore "foncier/internal/registry/store/parcel"
	sequenceStore "foncier/internal/registry/store/sequence"
	transactionStore "foncier/internal/registry/store/transaction"
	httptransport "foncier/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}

	var (
		parcels      store.ParcelStore
		transactions store.TransactionStore
		citizens     store.CitizenStore
		sequences    store.SequenceStore
		uow          store.UnitOfWork
		auditStore   audit.Store
	)
	if db != nil {
		if err := store.ApplySchema(ctx, db); err != nil {
			log.Error("apply schema", "error", err)
			os.Exit(1)
		}
		parcels = parcelStore.NewPostgres(db)
		transactions = transactionStore.NewPostgres(db)
		citizens = citizenStore.NewPostgres(db)
		sequences = sequenceStore.NewPostgres(db)
		uow = store.NewPostgresUnitOfWork(db)
		auditStore = audit.NewPostgres(db)
	} else {
		log.Warn("no DATABASE_URL configured, using in-memory stores")
		memParcels := parcelStore.NewInMemoryStore()
		memTransactions := transactionStore.NewInMemoryStore()
		memSequences := sequenceStore.NewInMemoryStore()
		parcels = memParcels
		transactions = memTransactions
		citizens = citizenStore.NewInMemoryStore()
		sequences = memSequences
		uow = store.NewMemoryUnitOfWork(memParcels, memTransactions, memSequences)
		auditStore = audit.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	var notificationStore notification.Store
	if redisClient != nil {
		notificationStore = notification.NewRedisStore(redisClient.Client, cfg.NotificationTTL)
	} else {
		log.Warn("no REDIS_URL configured, using in-memory notification inbox")
		notificationStore = notification.NewInMemoryStore()
	}
	notifier := notification.NewService(notificationStore)

	kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, "")
	if err != nil {
		log.Error("connect kafka", "error", err)
		os.Exit(1)
	}
	var sink audit.Sink
	if kafkaSink != nil {
		sink = kafkaSink
		defer kafkaSink.Close()
	}

	auditInbox := make(chan audit.Event, cfg.AuditBuffer)
	publisher := audit.NewPublisher(auditInbox, log)
	worker := audit.NewWorker(auditStore, sink, auditInbox, log)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	registry, err := service.New(service.Config{
		UnitOfWork:   uow,
		Parcels:      parcels,
		Transactions: transactions,
		Citizens:     citizens,
		Sequences:    sequences,
		Audit:        publisher,
		Notifier:     notifier,
		Metrics:      registrymetrics.New(),
		Logger:       log,
	})
	if err != nil {
		log.Error("build registry service", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "foncier", "foncier-agents")
	validator := jwttoken.NewMiddlewareAdapter(jwtService)

	handler := registryhandler.New(registry, notifier, log, platformmetrics.New(), validator)
	router := httptransport.NewRouter(healthChecks(db, redisClient), handler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting foncier registry", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func healthChecks(db *sql.DB, redisClient *platformredis.Client) []httptransport.HealthCheck {
	var checks []httptransport.HealthCheck
	if db != nil {
		checks = append(checks, httptransport.HealthCheck{
			Name:  "postgres",
			Check: db.PingContext,
		})
	}
	if redisClient != nil {
		checks = append(checks, httptransport.HealthCheck{
			Name:  "redis",
			Check: redisClient.Health,
		})
	}
	return checks
}
