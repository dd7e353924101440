// Package scheduler re-runs the incremental sync for every configured
// market on a cron or fixed interval. One-shot CLI runs bypass it.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"casa8_ingest/config"
	"casa8_ingest/logging"
	"casa8_ingest/models"
	"casa8_ingest/services"
	"casa8_ingest/storage"
)

type Scheduler struct {
	cfg    *config.Config
	syncer *services.Syncer
	runs   *storage.SQLiteStore
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
}

func New(cfg *config.Config, syncer *services.Syncer, runs *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		syncer: syncer,
		runs:   runs,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.SyncAll(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.SyncAll(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon is idle")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// SyncAll runs the incremental sync for every configured market feed.
// Per-market failures are logged and the remaining markets still run.
func (s *Scheduler) SyncAll(ctx context.Context) {
	for slug, market := range s.cfg.Markets {
		if market.FeedFile == "" {
			continue
		}
		if err := s.syncMarket(ctx, slug, market.FeedFile); err != nil {
			log.Printf("Error syncing market %s: %v", slug, err)
		}
	}
}

func (s *Scheduler) syncMarket(ctx context.Context, slug, feedFile string) error {
	run := &models.ImportRun{
		Mode:         models.RunModeSync,
		SourceMarket: slug,
		FilePath:     feedFile,
		StartedAt:    time.Now(),
		Status:       models.RunStatusRunning,
	}

	var runID int64
	if s.runs != nil {
		if last, err := s.runs.LastRunTime(slug); err == nil && !last.IsZero() {
			log.Printf("Syncing %s (last run %s ago)", slug, time.Since(last).Round(time.Minute))
		}

		id, err := s.runs.CreateRun(run)
		if err != nil {
			log.Printf("Warning: failed to create run record: %v", err)
		} else {
			runID = id
		}
	}

	result := s.syncer.SyncFromFile(ctx, feedFile, slug)

	if s.runs != nil && runID != 0 {
		if err := s.runs.FinishRun(runID, result); err != nil {
			log.Printf("Warning: failed to finish run record: %v", err)
		}
	}

	if err := logging.AppendAudit(s.cfg.Import.AuditLogPath, models.RunModeSync, slug, result); err != nil {
		log.Printf("Warning: failed to append audit record: %v", err)
	}

	if !result.Success {
		return fmt.Errorf("sync finished with %d errors", len(result.Errors))
	}
	return nil
}
