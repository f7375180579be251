// Package engine orchestrates one processing cycle of the curation
// pipeline: liveness transitions, the admissibility contract, sealing and
// persistence, document archival for long texts, and user command
// dispatch.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"curatord/pkg/archive"
	"curatord/pkg/classify"
	"curatord/pkg/command"
	"curatord/pkg/dedupe"
	"curatord/pkg/liveness"
	"curatord/pkg/logger"
	"curatord/pkg/models"
	"curatord/pkg/notify"
	"curatord/pkg/seal"
	"curatord/pkg/tasks"
	"curatord/pkg/telemetry"
)

// classifyWorkers bounds the goroutines scoring one batch. Classification
// is pure and per-message independent; tracker and window mutations stay
// on the cycle goroutine.
const classifyWorkers = 4

// MessageStore is the persisted curated record.
type MessageStore interface {
	AppendMessage(m models.Message) error
	RecentMessages(limit int) ([]models.Message, error)
}

// Config carries the admissibility thresholds.
type Config struct {
	// MinContentValue is the minimum content-value score for admission.
	MinContentValue float64
	// MinLength is the minimum meaningful message length in runes.
	MinLength int
	// MaxMessageLength is the archive threshold: longer agent messages
	// are additionally stored as documents.
	MaxMessageLength int
	// DuplicateTolerance sizes the dedupe window (cap = 2x tolerance).
	DuplicateTolerance int
}

// withDefaults fills zero fields with production defaults.
func (c Config) withDefaults() Config {
	if c.MinContentValue == 0 {
		c.MinContentValue = 0.85
	}
	if c.MinLength == 0 {
		c.MinLength = 50
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = 10000
	}
	if c.DuplicateTolerance == 0 {
		c.DuplicateTolerance = dedupe.DefaultTolerance
	}
	return c
}

// CycleReport summarizes one pipeline invocation.
type CycleReport struct {
	Admitted int
	Rejected int
	Deferred bool
	Alerts   []string
	Events   []liveness.Event
}

// Engine owns Message and Participant lifecycle for the pipeline and
// delegates task commands to the task engine. One cycle runs at a time;
// the scheduler guarantees no re-entrancy.
type Engine struct {
	cfg      Config
	store    MessageStore
	sealer   *seal.Sealer
	docs     *archive.Archive
	notifier notify.Notifier
	tracker  *liveness.Tracker
	window   *dedupe.Window
	tasks    *tasks.Engine

	rosterSave   func(models.Participant) error
	rosterDelete func(string) error
}

// New assembles an engine. A nil notifier falls back to log-only alerts.
func New(cfg Config, store MessageStore, sealer *seal.Sealer, docs *archive.Archive, notifier notify.Notifier, taskEngine *tasks.Engine) *Engine {
	cfg = cfg.withDefaults()
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		sealer:   sealer,
		docs:     docs,
		notifier: notifier,
		tracker:  liveness.NewTracker(),
		window:   dedupe.NewWindow(cfg.DuplicateTolerance),
		tasks:    taskEngine,
	}
}

// Tracker exposes the liveness tracker for registration and external
// blockage signals.
func (e *Engine) Tracker() *liveness.Tracker { return e.tracker }

// Tasks exposes the task engine.
func (e *Engine) Tasks() *tasks.Engine { return e.tasks }

// verdict is the pure classification result for one batch entry.
type verdict struct {
	forbidden bool
	pure      bool
	relevant  bool
	value     float64
	length    int
}

// ProcessCycle runs one full cycle over a batch. Persistence failures
// abort the batch and propagate; alert and archive failures never do.
func (e *Engine) ProcessCycle(ctx context.Context, batch []models.Message) (CycleReport, error) {
	telemetry.CyclesTotal.Inc()
	var report CycleReport

	report.Events = e.tracker.ObserveActivity(batch)
	report.Events = append(report.Events, e.tracker.Advance()...)
	for _, ev := range report.Events {
		e.raise(&report, ev.Message)
	}

	active := e.tracker.ActiveCount()
	telemetry.ActiveParticipants.Set(float64(active))
	if active < 1 {
		telemetry.CyclesDeferred.Inc()
		report.Deferred = true
		if e.tracker.NoteDeferral() {
			e.raise(&report, "critical: no active participants")
		}
		logger.Info("cycle_deferred", "batch", len(batch))
		return report, nil
	}
	e.tracker.ResetDeferrals()

	verdicts := e.classifyBatch(ctx, batch)

	for i, m := range batch {
		admitted, err := e.admit(m, verdicts[i])
		if err != nil {
			return report, fmt.Errorf("cycle aborted: %w", err)
		}
		if admitted {
			report.Admitted++
		} else {
			report.Rejected++
		}
	}

	// Task and document commands are extracted independently of
	// admissibility.
	for _, m := range batch {
		if m.Author != models.AuthorUser {
			continue
		}
		cmd, ok := command.Parse(m.Text)
		if !ok {
			continue
		}
		if err := e.dispatch(cmd); err != nil {
			return report, fmt.Errorf("cycle aborted: %w", err)
		}
	}

	logger.Info("cycle_done", "batch", len(batch), "admitted", report.Admitted,
		"rejected", report.Rejected, "active", active)
	return report, nil
}

// classifyBatch scores the batch concurrently; each entry is independent.
func (e *Engine) classifyBatch(ctx context.Context, batch []models.Message) []verdict {
	out := make([]verdict, len(batch))
	workers := classifyWorkers
	if workers > len(batch) {
		workers = len(batch)
	}
	if workers <= 1 {
		for i, m := range batch {
			out[i] = e.classify(m.Text)
		}
		return out
	}
	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				out[i] = e.classify(batch[i].Text)
			}
		}()
	}
	for i := range batch {
		select {
		case idx <- i:
		case <-ctx.Done():
			// let started work finish; unclassified entries stay
			// zero-valued (forbidden=false, pure=false => rejected)
			close(idx)
			wg.Wait()
			return out
		}
	}
	close(idx)
	wg.Wait()
	return out
}

func (e *Engine) classify(text string) verdict {
	return verdict{
		forbidden: classify.IsForbidden(text),
		pure:      classify.IsPure(text),
		relevant:  classify.IsTopicRelevant(text),
		value:     classify.ContentValue(text),
		length:    utf8.RuneCountInString(text),
	}
}

// admit applies the admissibility contract and persists the message when
// it passes. The duplicate check runs at most once per candidate and only
// after the cheaper pure checks rejected nothing.
func (e *Engine) admit(m models.Message, v verdict) (bool, error) {
	switch {
	case v.forbidden:
		telemetry.MessagesRejected.WithLabelValues(telemetry.ReasonForbidden).Inc()
		return false, nil
	case !v.pure:
		telemetry.MessagesRejected.WithLabelValues(telemetry.ReasonImpure).Inc()
		return false, nil
	}
	if !e.window.CheckAndRecord(m.Text) {
		telemetry.MessagesRejected.WithLabelValues(telemetry.ReasonDuplicate).Inc()
		return false, nil
	}
	if v.length < e.cfg.MinLength || v.value < e.cfg.MinContentValue {
		telemetry.MessagesRejected.WithLabelValues(telemetry.ReasonLowValue).Inc()
		return false, nil
	}
	if !v.relevant {
		telemetry.MessagesRejected.WithLabelValues(telemetry.ReasonOffTopic).Inc()
		return false, nil
	}

	stored := m
	var ok bool
	stored.Text, ok = e.sealer.Seal(m.Text)
	stored.Sealed = ok
	if !ok {
		telemetry.SealFallbacks.Inc()
	}
	if err := e.store.AppendMessage(stored); err != nil {
		return false, err
	}
	telemetry.MessagesAdmitted.Inc()

	if m.Author == models.AuthorAgent && v.length > e.cfg.MaxMessageLength {
		e.archiveLongMessage(m)
	}
	return true, nil
}

// archiveLongMessage stores the full text as a document and persists a
// reference notice. Best effort: archive failures are logged, never
// fatal.
func (e *Engine) archiveLongMessage(m models.Message) {
	meta, err := e.docs.Save(m.Text, "long_text")
	if err != nil {
		logger.Error("long_message_archive_failed", "source", m.Source, "error", err)
		return
	}
	telemetry.DocumentsArchived.Inc()
	notice := models.Message{
		Source: m.Source,
		Author: models.AuthorSystem,
		Text: fmt.Sprintf("document archived: %s (%d bytes)\nview with: /document %s\n\npreview:\n%s",
			meta.Title, meta.Size, meta.Name, archive.Preview(m.Text, 0)),
		TS: m.TS,
	}
	if err := e.store.AppendMessage(notice); err != nil {
		logger.Error("document_notice_persist_failed", "name", meta.Name, "error", err)
	}
}

// dispatch routes one parsed user command.
func (e *Engine) dispatch(cmd command.Command) error {
	switch c := cmd.(type) {
	case command.CreateTask:
		t, err := e.tasks.CreateTask(c.Title, c.Description, e.tracker.ActiveIDs(), models.PriorityMedium, "")
		if err != nil {
			return err
		}
		return e.systemNotice(fmt.Sprintf("new task: %s\ndescription: %s\nstatus: %s", t.Title, t.Description, t.Status))
	case command.ShowDocument:
		content, found, err := e.docs.Load(c.Name)
		if err != nil {
			logger.Error("document_load_failed", "name", c.Name, "error", err)
			return nil
		}
		if !found {
			return e.systemNotice("document not found: " + c.Name)
		}
		return e.systemNotice("full document text:\n\n" + content)
	case command.CreateDocument:
		meta, err := e.docs.Save(c.Content, c.Title)
		if err != nil {
			logger.Error("document_create_failed", "title", c.Title, "error", err)
			return nil
		}
		telemetry.DocumentsArchived.Inc()
		return e.systemNotice(fmt.Sprintf("document %q saved\nview with: /document %s\n\npreview:\n%s",
			c.Title, meta.Name, archive.Preview(c.Content, 0)))
	}
	return nil
}

// systemNotice persists a synthesized system message.
func (e *Engine) systemNotice(text string) error {
	return e.store.AppendMessage(models.Message{
		Author: models.AuthorSystem,
		Text:   text,
	})
}

// SetRosterPersistence wires the durable roster writes used by
// RegisterParticipant and UnregisterParticipant. Optional; without it the
// roster is in-memory only.
func (e *Engine) SetRosterPersistence(save func(models.Participant) error, del func(string) error) {
	e.rosterSave = save
	e.rosterDelete = del
}

// RegisterParticipant adds a participant to the roster and persists it.
func (e *Engine) RegisterParticipant(id string) bool {
	if !e.tracker.Register(id) {
		return false
	}
	if e.rosterSave != nil {
		if err := e.rosterSave(models.Participant{ID: id}); err != nil {
			logger.Error("participant_persist_failed", "id", id, "error", err)
		}
	}
	return true
}

// UnregisterParticipant removes a participant; fails when it would leave
// an empty roster.
func (e *Engine) UnregisterParticipant(id string) bool {
	if !e.tracker.Unregister(id) {
		return false
	}
	if e.rosterDelete != nil {
		if err := e.rosterDelete(id); err != nil {
			logger.Error("participant_delete_failed", "id", id, "error", err)
		}
	}
	return true
}

// Housekeep runs the periodic document-retention cleanup.
func (e *Engine) Housekeep(maxAgeDays int) {
	if maxAgeDays <= 0 {
		maxAgeDays = 30
	}
	n, err := e.docs.Cleanup(time.Duration(maxAgeDays) * 24 * time.Hour)
	if err != nil {
		logger.Error("housekeeping_failed", "error", err)
		return
	}
	logger.Info("housekeeping_done", "documents_deleted", n)
}

func (e *Engine) raise(report *CycleReport, message string) {
	report.Alerts = append(report.Alerts, message)
	telemetry.AlertsRaised.Inc()
	e.notifier.Alert(message)
}
