package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/digiclimate/supplyrisk/internal/archive"
	"github.com/digiclimate/supplyrisk/internal/config"
	"github.com/digiclimate/supplyrisk/internal/httpserver"
	"github.com/digiclimate/supplyrisk/internal/monitor"
	"github.com/digiclimate/supplyrisk/internal/notify"
	"github.com/digiclimate/supplyrisk/internal/sources"
	"github.com/digiclimate/supplyrisk/internal/store"
)

func main() {
	simulate := flag.Bool("simulate", false, "run against seeded in-memory data instead of Postgres")
	flag.Parse()

	cfg := config.Load()

	var (
		obs         sources.ObservationSource
		stockSource sources.StockSource
		affected    sources.AffectedProductsSource
		pinger      httpserver.Pinger
	)

	if *simulate || cfg.DatabaseURL == "" {
		log.Printf("[startup] no database configured, using simulated sources")
		mem := sources.NewMemorySource()
		mem.SeedSimulation()
		obs, stockSource, affected = mem, mem, mem
	} else {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("db ping: %v", err)
		}
		pg := store.NewPGStore(db)
		obs, stockSource, affected, pinger = pg, pg, pg, pg
	}

	var notifier sources.NotificationSink = notify.LogSink{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := notify.NewKafkaPublisher(notify.KafkaPublisherConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaAlertTopic,
		})
		if err != nil {
			log.Fatalf("kafka publisher init: %v", err)
		}
		defer publisher.Close()
		notifier = publisher
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var archiver archive.Archiver
	if cfg.ArchiveBucket != "" {
		s3, err := archive.NewS3Archiver(ctx, cfg.ArchiveBucket, cfg.ArchivePrefix)
		if err != nil {
			log.Fatalf("archiver init: %v", err)
		}
		archiver = s3
	}

	engine := monitor.New(obs, stockSource, affected, notifier, nil, monitor.Options{
		Thresholds:       cfg.Thresholds,
		SevereCategories: cfg.SevereCategories,
		ExtremeKeywords:  cfg.ExtremeKeywords,
		CacheTTL:         cfg.CacheTTL,
		WeekHorizon:      cfg.WeekHorizon,
		MonthHorizon:     cfg.MonthHorizon,
		FeedCap:          cfg.AlertFeedCap,
		Workers:          cfg.WorkerPoolSize,
		AlertRecipients:  cfg.AlertRecipients,
	})

	server := httpserver.New(cfg, engine, pinger, archiver)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	if cfg.MonitorInterval > 0 {
		go runPeriodic(ctx, engine, archiver, cfg.MonitorInterval)
	}

	go func() {
		log.Printf("supply risk service listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	waitForShutdown(cancel, httpServer)
}

// runPeriodic triggers a monitoring pass on a fixed interval until ctx is done.
func runPeriodic(ctx context.Context, engine *monitor.Engine, archiver archive.Archiver, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := engine.Run(ctx)
			if err != nil {
				log.Printf("[scheduler] run: %v", err)
				continue
			}
			if archiver != nil {
				if _, err := archiver.ArchiveRun(ctx, report); err != nil {
					log.Printf("[scheduler] archive run %s: %v", report.RunID, err)
				}
			}
		}
	}
}

func waitForShutdown(cancel context.CancelFunc, srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
