// Command kerneld runs the governance kernel as a long-lived process:
// it opens the configured event log, rebuilds projections, and runs
// the tick engine on a cron schedule until interrupted.
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/facade"
	"github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/eventlog"
	"github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/eventlog/memstore"
	"github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/eventlog/pgstore"
	"github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/logging"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/clock"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/config"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Logger.Fatalf("load config: %v", err)
	}

	logger := logging.New("governance-kernel", cfg.Logging.Level, cfg.Logging.Format)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log, closeLog, err := openLog(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("open event log")
		os.Exit(1)
	}
	defer closeLog()

	k, err := facade.New(ctx, log, clock.Real{}, cfg.SafetyPolicy(), logger)
	if err != nil {
		logger.WithError(err).Error("rebuild projections")
		os.Exit(1)
	}
	k.WithMetrics(metrics.New(prometheus.NewRegistry()))

	c := cron.New()
	if _, err := c.AddFunc("@every 1m", func() {
		if _, err := k.Tick(ctx); err != nil {
			logger.WithError(err).Error("tick")
		}
	}); err != nil {
		logger.WithError(err).Error("schedule tick")
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	logger.Info("governance kernel started")
	<-ctx.Done()
	logger.Info("governance kernel shutting down")
}

func openLog(ctx context.Context, cfg *config.Config) (eventlog.Log, func(), error) {
	if cfg.EventLog.Driver == "postgres" {
		db, err := sql.Open("postgres", cfg.EventLog.PostgresDSN)
		if err != nil {
			return nil, func() {}, err
		}
		db.SetMaxOpenConns(cfg.EventLog.MaxOpenConns)
		db.SetMaxIdleConns(cfg.EventLog.MaxIdleConns)
		if cfg.EventLog.MigrateOnStart {
			if err := pgstore.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, func() {}, err
			}
		}
		return pgstore.New(db), func() { db.Close() }, nil
	}
	return memstore.New(), func() {}, nil
}
