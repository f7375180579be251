// Package app wires the daemon together: storage, sealing, the curation
// engine and its scheduler, the heartbeat, retention and the HTTP
// server.
package app

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"curatord/internal/retention"
	"curatord/pkg/archive"
	"curatord/pkg/collect"
	"curatord/pkg/config"
	"curatord/pkg/engine"
	"curatord/pkg/heartbeat"
	"curatord/pkg/logger"
	"curatord/pkg/models"
	"curatord/pkg/monitor"
	"curatord/pkg/notify"
	"curatord/pkg/seal"
	"curatord/pkg/store"
	"curatord/pkg/tasks"
)

// App encapsulates the daemon components and lifecycle.
type App struct {
	cfg     *config.Config
	source  string
	version string

	sealer   *seal.Sealer
	docs     *archive.Archive
	queue    *collect.Queue
	eng      *engine.Engine
	sched    *engine.Scheduler
	hb       *heartbeat.Heartbeat
	notifier notify.Notifier

	srv *http.Server
}

// New initializes resources that do not require a running context. Call
// Run to start the scheduler, retention and HTTP server and block until
// shutdown.
func New(cfg *config.Config, source, version string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := store.Open(cfg.Storage.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Storage.DBPath, err)
	}

	sealer, err := buildSealer(cfg)
	if err != nil {
		return nil, err
	}

	docsDir := cfg.Storage.DocumentsDir
	if docsDir == "" {
		docsDir = "./documents"
	}
	docs, err := archive.New(docsDir, sealer, store.DocIndex{})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare documents dir %s: %w", docsDir, err)
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.RPS, cfg.Notify.Burst)
	}

	taskEngine := tasks.NewEngine(store.TaskStore{})
	eng := engine.New(engine.Config{
		MinContentValue:    cfg.Curation.MinContentValue,
		MinLength:          cfg.Curation.MinLength,
		MaxMessageLength:   cfg.Curation.MaxMessageLength,
		DuplicateTolerance: cfg.Curation.DuplicateTolerance,
	}, store.Messages{}, sealer, docs, notifier, taskEngine)
	eng.SetRosterPersistence(store.SaveParticipant, store.DeleteParticipant)

	if err := restoreRoster(eng, cfg.Participants); err != nil {
		return nil, err
	}

	queue := collect.NewQueue(0, 0)
	sched := engine.NewScheduler(eng, queue, cadenceFromConfig(cfg))

	a := &App{
		cfg:      cfg,
		source:   source,
		version:  version,
		sealer:   sealer,
		docs:     docs,
		queue:    queue,
		eng:      eng,
		sched:    sched,
		notifier: notifier,
	}
	if cfg.Heartbeat.Enabled {
		interval := parseDuration(cfg.Heartbeat.Interval, 5*time.Minute)
		a.hb = heartbeat.New(interval, eng.Tracker().ActiveCount, func(m models.Message) error {
			if m.Text != "" && sealer.Enabled() {
				if sealed, ok := sealer.Seal(m.Text); ok {
					m.Text = sealed
					m.Sealed = true
				}
			}
			return store.AppendMessage(m)
		})
	}
	return a, nil
}

// Run starts all background loops and the HTTP server and blocks until
// ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stopRetention, err := retention.Start(ctx, a.eng, a.cfg.Retention.Cron, a.cfg.Retention.MaxAgeDays)
	if err != nil {
		return err
	}
	defer stopRetention()

	go a.sched.Run(ctx)
	if a.hb != nil {
		go a.hb.Run(ctx)
	}
	stopMonitor := monitor.Start(ctx, a.queue, a.notifier, monitor.DefaultConfig())
	defer stopMonitor()

	a.printBanner()
	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.stopHTTP()
		return store.Close()
	case err := <-errCh:
		cerr := store.Close()
		if err != nil {
			return err
		}
		return cerr
	}
}

// buildSealer decodes the configured key. An empty key yields a disabled
// sealer which passes text through unchanged.
func buildSealer(cfg *config.Config) (*seal.Sealer, error) {
	if cfg.Seal.KeyHex == "" {
		logger.Warn("sealing_disabled")
		return seal.New(nil, cfg.Seal.BackupDir), nil
	}
	key, err := hex.DecodeString(cfg.Seal.KeyHex)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("invalid seal key: must be 64-hex (32 bytes)")
	}
	return seal.New(key, cfg.Seal.BackupDir), nil
}

// restoreRoster loads the persisted roster and merges in participants
// named in the config.
func restoreRoster(eng *engine.Engine, configured []string) error {
	persisted, err := store.ListParticipants()
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}
	seen := map[string]bool{}
	for _, p := range persisted {
		eng.RegisterParticipant(p.ID)
		seen[p.ID] = true
	}
	for _, id := range configured {
		if !seen[id] {
			eng.RegisterParticipant(id)
		}
	}
	return nil
}

func cadenceFromConfig(cfg *config.Config) engine.Cadence {
	return engine.Cadence{
		First:   parseDuration(cfg.Curation.FirstDelay, 0),
		Steady:  parseDuration(cfg.Curation.SteadyInterval, 0),
		Backoff: parseDuration(cfg.Curation.BackoffInterval, 0),
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Warn("invalid_duration", "value", s)
		return fallback
	}
	return d
}
