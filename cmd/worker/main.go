package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/dealthread-monitor/internal/config"
	"github.com/ignite/dealthread-monitor/internal/crm"
	"github.com/ignite/dealthread-monitor/internal/lifecycle"
	"github.com/ignite/dealthread-monitor/internal/notify"
	"github.com/ignite/dealthread-monitor/internal/pkg/distlock"
	"github.com/ignite/dealthread-monitor/internal/repository/postgres"
	"github.com/ignite/dealthread-monitor/internal/risk"
	"github.com/ignite/dealthread-monitor/internal/service/monitor"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting DealThread Monitor worker...")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.CRM.APIKey == "" {
		log.Fatal("CRM_API_KEY is required for the polling worker")
	}

	// Stage velocity overrides must land before the first cycle predicts
	applyVelocityOverrides(cfg.Velocity)

	crmClient := crm.NewClient(cfg.CRM)

	// Snapshot storage. The worker is pointless without persistence: every
	// cycle would look like a first snapshot and never raise an alert.
	if !cfg.Postgres.Enabled || cfg.Postgres.URL == "" {
		log.Fatal("DATABASE_URL is required for the polling worker")
	}
	db, err := sql.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Failed to open snapshot database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping snapshot database: %v", err)
	}
	pingCancel()
	log.Println("Connected to snapshot database")

	store := postgres.NewSnapshotRepo(db)
	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureSchema(schemaCtx); err != nil {
		log.Fatalf("Failed to ensure snapshot schema: %v", err)
	}
	schemaCancel()

	// Redis backs both the alert throttle and the cycle lock when available
	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v - falling back to PG advisory lock", cfg.Redis.Addr, err)
			redisClient.Close()
			redisClient = nil
		}
		pingCancel()
	}

	var throttleStore lifecycle.Store
	if redisClient != nil {
		throttleStore = lifecycle.NewRedisStore(redisClient)
		defer redisClient.Close()
	} else {
		throttleStore = lifecycle.NewMemoryStore()
	}
	throttle := lifecycle.NewThrottle(throttleStore, cfg.Throttle.Overrides())

	dispatcher := buildDispatcher(cfg.Notify)
	svc := monitor.NewService(crmClient, store, throttle, dispatcher)

	// One evaluation cycle at a time across all worker instances
	lock := distlock.NewLock(redisClient, db, "poll_cycle", cfg.Polling.Interval())

	worker := monitor.NewWorker(svc, monitor.WorkerConfig{
		Interval:      cfg.Polling.Interval(),
		MaxConcurrent: cfg.Polling.MaxConcurrent,
		Stages:        cfg.CRM.PipelineStages,
		DealIDs:       cfg.CRM.DealIDs,
		Retention:     time.Duration(cfg.Polling.HistoryDays) * 24 * time.Hour,
	}, lock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go worker.Run(ctx)
	log.Printf("Worker running: interval=%s, concurrency=%d", cfg.Polling.Interval(), cfg.Polling.MaxConcurrent)

	<-done
	log.Println("Shutting down worker...")
	cancel()

	// Give in-flight evaluations a moment to finish
	time.Sleep(2 * time.Second)
	log.Println("Worker stopped")
}

func applyVelocityOverrides(cfg config.VelocityConfig) {
	if len(cfg.Stages) == 0 {
		return
	}
	overrides := make(map[string]risk.StageBenchmark, len(cfg.Stages))
	for stage, v := range cfg.Stages {
		overrides[stage] = risk.StageBenchmark{ExpectedDays: v.ExpectedDays, MaxDays: v.MaxDays}
	}
	risk.OverrideBenchmarks(overrides)
	log.Printf("Stage velocity overrides applied for %d stage(s)", len(overrides))
}

func buildDispatcher(cfg config.NotifyConfig) *notify.Dispatcher {
	var webhook *notify.WebhookSender
	if cfg.WebhookURL != "" {
		webhook = notify.NewWebhookSender(cfg.WebhookURL, cfg.Timeout())
	}

	var email *notify.EmailSender
	if cfg.EmailEnabled && cfg.EmailFrom != "" && len(cfg.EmailTo) > 0 {
		email = notify.NewEmailSender(
			cfg.AWSRegion,
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			cfg.EmailFrom,
			cfg.EmailTo,
		)
	}

	return notify.NewDispatcher(notify.NewRenderer(), webhook, email)
}
