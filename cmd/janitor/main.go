package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/jobify/config"
	"github.com/oksasatya/jobify/internal/application"
	pginfra "github.com/oksasatya/jobify/internal/infrastructure/postgres"
	"github.com/oksasatya/jobify/internal/infrastructure/storage"
	"github.com/oksasatya/jobify/pkg/helpers"
)

// janitor removes profile images that no user points at. It runs once by
// default, or every -interval until interrupted.
func main() {
	interval := flag.Duration("interval", 0, "repeat every interval (0 runs once)")
	flag.Parse()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-janitor", cfg.Env, helpers.WithLevel(cfg.LogLevel))
	if cfg.GCSBucket == "" {
		log.Fatal("GCS_BUCKET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptionsFrom(cfg, true))
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		log.Fatalf("failed to init GCS client: %v", err)
	}
	defer func() { _ = gcsClient.Close() }()

	janitor := application.NewImageJanitor(
		pginfra.NewUserRepository(pool),
		storage.NewGCSBlobStore(gcsClient, cfg.GCSBucket, cfg.GCSImagesPrefix),
		logger,
	)
	janitor.Grace = cfg.JanitorGrace

	runOnce(ctx, janitor, logger)
	if *interval <= 0 {
		return
	}
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("janitor stopped")
			return
		case <-ticker.C:
			runOnce(ctx, janitor, logger)
		}
	}
}

func runOnce(ctx context.Context, j *application.ImageJanitor, logger *logrus.Logger) {
	report, err := j.Run(ctx)
	if err != nil {
		helpers.LogError(logger, "janitor run failed", err, nil)
		return
	}
	helpers.LogInfo(logger, "janitor run finished", logrus.Fields{
		"scanned": report.Scanned,
		"deleted": report.Deleted,
		"failed":  report.Failed,
	})
}
