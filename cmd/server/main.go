package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/dealthread-monitor/internal/api"
	"github.com/ignite/dealthread-monitor/internal/config"
	"github.com/ignite/dealthread-monitor/internal/crm"
	"github.com/ignite/dealthread-monitor/internal/lifecycle"
	"github.com/ignite/dealthread-monitor/internal/notify"
	"github.com/ignite/dealthread-monitor/internal/repository/postgres"
	"github.com/ignite/dealthread-monitor/internal/risk"
	"github.com/ignite/dealthread-monitor/internal/service/monitor"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Starting DealThread Monitor API server...")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Stage velocity overrides must land before any predictions run
	applyVelocityOverrides(cfg.Velocity)

	// CRM client
	if cfg.CRM.APIKey == "" {
		log.Println("Warning: CRM_API_KEY not set - CRM-backed endpoints will fail")
	}
	crmClient := crm.NewClient(cfg.CRM)
	log.Printf("CRM client initialized: %s", cfg.CRM.BaseURL)

	// Snapshot storage (optional)
	var store monitor.SnapshotStore
	var db *sql.DB
	if cfg.Postgres.Enabled && cfg.Postgres.URL != "" {
		db, err = sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			log.Fatalf("Failed to open snapshot database: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			log.Fatalf("Failed to ping snapshot database: %v", err)
		}
		pingCancel()

		repo := postgres.NewSnapshotRepo(db)
		schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.EnsureSchema(schemaCtx); err != nil {
			log.Fatalf("Failed to ensure snapshot schema: %v", err)
		}
		schemaCancel()

		store = repo
		log.Println("Snapshot storage: PostgreSQL")
	} else {
		log.Println("Snapshot storage disabled - history endpoints will return 503")
	}
	if db != nil {
		defer db.Close()
	}

	// Alert throttle: Redis-backed when configured, in-memory otherwise
	var throttleStore lifecycle.Store
	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v - falling back to in-memory throttle", cfg.Redis.Addr, err)
			redisClient.Close()
			redisClient = nil
		}
		pingCancel()
	}
	if redisClient != nil {
		throttleStore = lifecycle.NewRedisStore(redisClient)
		log.Printf("Alert throttle: Redis (%s)", cfg.Redis.Addr)
		defer redisClient.Close()
	} else {
		throttleStore = lifecycle.NewMemoryStore()
		log.Println("Alert throttle: in-memory")
	}
	throttle := lifecycle.NewThrottle(throttleStore, cfg.Throttle.Overrides())

	// Alert delivery
	dispatcher := buildDispatcher(cfg.Notify)

	svc := monitor.NewService(crmClient, store, throttle, dispatcher)
	server := api.NewServer(cfg.Server, svc)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized - server is ready")

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
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
		log.Println("Webhook alerts enabled")
	} else {
		log.Println("Webhook alerts disabled (NOTIFY_WEBHOOK_URL not set)")
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
		log.Printf("Email alerts enabled via SES (%d recipient(s))", len(cfg.EmailTo))
	} else {
		log.Println("Email alerts disabled")
	}

	return notify.NewDispatcher(notify.NewRenderer(), webhook, email)
}
