package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/phishsim-monitor/internal/api"
	"github.com/ignite/phishsim-monitor/internal/config"
	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/notify"
	"github.com/ignite/phishsim-monitor/internal/pkg/distlock"
	"github.com/ignite/phishsim-monitor/internal/pkg/logger"
	"github.com/ignite/phishsim-monitor/internal/repository/memory"
	"github.com/ignite/phishsim-monitor/internal/repository/postgres"
	"github.com/ignite/phishsim-monitor/internal/service/event"
	"github.com/ignite/phishsim-monitor/internal/service/reconcile"
	"github.com/ignite/phishsim-monitor/internal/webhook"
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
	log.Println("PHISHSIM Monitor - webhook ingestion and campaign reconciliation")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactEnabled())

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Storage: Postgres when DATABASE_URL is set, in-memory dev mode otherwise.
	var (
		db           *sql.DB
		eventRepo    event.Repository
		campaignRepo reconcile.CampaignRepository
	)
	if cfg.Database.URL != "" {
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			log.Fatalf("Failed to ping database: %v", err)
		}
		cancel()
		log.Println("Connected to database")

		eventRepo = postgres.NewEventRepo(db)
		campaignRepo = postgres.NewCampaignRepo(db)
	} else {
		log.Println("DEV MODE: no DATABASE_URL, using in-memory repositories")
		eventRepo = memory.NewEventRepo()
		memCampaigns := memory.NewCampaignRepo()
		memCampaigns.Seed(&domain.Campaign{
			ExternalID: "1",
			Name:       "Demo Campaign",
			Results: []domain.TargetResult{
				{Email: "demo@example.com", Status: domain.StatusSent},
			},
		})
		campaignRepo = memCampaigns
	}

	// Redis: realtime fanout across replicas + cross-instance campaign locks.
	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("Failed to ping redis: %v", err)
		}
		cancel()
		defer redisClient.Close()
		log.Printf("Connected to redis (%s)", cfg.Redis.Addr)
	}

	hub := notify.NewHub()
	hub.Start()
	defer hub.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var publisher notify.Publisher = hub
	if redisClient != nil {
		bridge := notify.NewRedisBridge(redisClient, cfg.Redis.Channel, hub)
		go bridge.Run(ctx)
		publisher = bridge
	}

	// Cross-instance campaign locks: Redis when available, PG advisory
	// locks otherwise. Dev mode (no DB, no Redis) relies on the
	// reconciler's in-process mutex alone.
	var lockFactory reconcile.LockFactory
	if redisClient != nil || db != nil {
		rc, sdb, ttl := redisClient, db, cfg.Webhook.LockTTL()
		lockFactory = func(key string) distlock.DistLock {
			return distlock.NewLock(rc, sdb, key, ttl)
		}
	}

	events := event.NewService(eventRepo, cfg.Webhook.MaxPageSize, cfg.Webhook.StorageTimeout())
	reconciler := reconcile.New(campaignRepo, lockFactory, cfg.Webhook.StorageTimeout())
	ingest := webhook.NewService(events, reconciler, publisher)
	health := api.NewHealthChecker(db, redisClient)

	server := api.NewServer(*cfg, ingest, events, hub, health)

	addr := fmt.Sprintf("%s:%d", host, port)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
