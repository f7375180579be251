// Package liveness tracks activity, blockage and recovery of registered
// participants across processing cycles.
package liveness

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"curatord/pkg/logger"
	"curatord/pkg/models"
)

// Recovery policy: a blocked participant is given this many cycles of
// recovery checks before tracking is abandoned.
const maxRecoveryChecks = 5

// A long-blockage alert is raised on every cycle once a participant has
// been blocked longer than this.
const longBlockage = 24 * time.Hour

// MaxWaitCycles bounds how many consecutive deferred cycles are tolerated
// before the tracker signals a critical condition.
const MaxWaitCycles = 6

// EventKind tags a liveness transition surfaced to the pipeline.
type EventKind string

const (
	// EventRecovered: a blocked participant produced activity again.
	EventRecovered EventKind = "recovered"
	// EventGaveUp: recovery checks were exhausted and tracking stopped
	// without confirmed activity. Distinct from EventRecovered so callers
	// can tell "stopped waiting" from "confirmed back".
	EventGaveUp EventKind = "gave_up"
	// EventLongBlockage: the participant has been blocked for over 24h.
	// Raised again on every cycle while the condition holds.
	EventLongBlockage EventKind = "long_blockage"
)

// Event is one liveness transition observed during a cycle.
type Event struct {
	Kind        EventKind
	Participant string
	Message     string
}

// Tracker owns the participant roster and its blockage state. All
// mutation happens under a single mutex; one cycle runs at a time.
type Tracker struct {
	mu         sync.Mutex
	parts      map[string]*models.Participant
	waitCycles int
	now        func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{parts: make(map[string]*models.Participant), now: time.Now}
}

// SetClock overrides the tracker clock; for tests.
func (t *Tracker) SetClock(now func() time.Time) { t.now = now }

// Register adds a participant. Returns false if already registered.
func (t *Tracker) Register(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.parts[id]; ok {
		return false
	}
	t.parts[id] = &models.Participant{ID: id}
	logger.Info("participant_registered", "id", id)
	return true
}

// Unregister removes a participant. Refuses to remove the last one.
func (t *Tracker) Unregister(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.parts[id]; !ok {
		return false
	}
	if len(t.parts) <= 1 {
		return false
	}
	delete(t.parts, id)
	logger.Info("participant_unregistered", "id", id)
	return true
}

// MarkBlocked records the external collector's signal that a participant
// source could not be reached. A no-op for unknown or already blocked ids.
func (t *Tracker) MarkBlocked(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.parts[id]
	if !ok || p.Blocked() {
		return
	}
	now := t.now()
	p.BlockedSince = &now
	p.RecoveryChecks = 0
	p.Active = false
	logger.Warn("participant_blocked", "id", id)
}

// ObserveActivity recomputes each participant's observed-active flag from
// the batch: any agent-authored message whose source equals the
// participant id counts as activity. Blocked participants with observed
// activity are unblocked and a recovery event is emitted.
func (t *Tracker) ObserveActivity(batch []models.Message) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.parts {
		p.Active = false
	}
	var events []Event
	for _, m := range batch {
		if m.Author != models.AuthorAgent || m.Source == "" {
			continue
		}
		p, ok := t.parts[m.Source]
		if !ok {
			continue
		}
		p.Active = true
		if p.Blocked() {
			p.BlockedSince = nil
			p.RecoveryChecks = 0
			events = append(events, Event{
				Kind:        EventRecovered,
				Participant: p.ID,
				Message:     fmt.Sprintf("participant %s recovered", p.ID),
			})
			logger.Info("participant_recovered", "id", p.ID)
		}
	}
	return events
}

// Advance runs the per-cycle blockage transitions: every blocked participant
// accrues a recovery check, exhausting the budget force-unblocks it with a
// gave-up event, and blockages older than 24h raise a repeatable alert.
func (t *Tracker) Advance() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	var events []Event
	for _, id := range t.sortedIDsLocked() {
		p := t.parts[id]
		if !p.Blocked() {
			continue
		}
		p.RecoveryChecks++
		if p.RecoveryChecks > maxRecoveryChecks {
			p.BlockedSince = nil
			p.RecoveryChecks = 0
			events = append(events, Event{
				Kind:        EventGaveUp,
				Participant: p.ID,
				Message:     fmt.Sprintf("stopped tracking blockage of %s without confirmed recovery", p.ID),
			})
			logger.Warn("participant_recovery_abandoned", "id", p.ID)
			continue
		}
		if now.Sub(*p.BlockedSince) > longBlockage {
			events = append(events, Event{
				Kind:        EventLongBlockage,
				Participant: p.ID,
				Message:     fmt.Sprintf("participant %s blocked for over 24h", p.ID),
			})
			logger.Warn("participant_long_blockage", "id", p.ID, "since", p.BlockedSince)
		}
	}
	return events
}

// NoteDeferral increments the consecutive-deferral counter and reports
// whether the critical threshold was crossed (the counter resets when it
// is).
func (t *Tracker) NoteDeferral() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waitCycles++
	if t.waitCycles > MaxWaitCycles {
		t.waitCycles = 0
		return true
	}
	return false
}

// ResetDeferrals clears the consecutive-deferral counter.
func (t *Tracker) ResetDeferrals() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waitCycles = 0
}

// ActiveCount returns the number of participants observed active this
// cycle.
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, p := range t.parts {
		if p.Active {
			n++
		}
	}
	return n
}

// ActiveIDs returns the ids observed active this cycle, sorted.
func (t *Tracker) ActiveIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for id, p := range t.parts {
		if p.Active {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Participants returns a copy of all records, ordered by id.
func (t *Tracker) Participants() []models.Participant {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Participant, 0, len(t.parts))
	for _, id := range t.sortedIDsLocked() {
		out = append(out, *t.parts[id])
	}
	return out
}

// Get returns a copy of one record.
func (t *Tracker) Get(id string) (models.Participant, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.parts[id]
	if !ok {
		return models.Participant{}, false
	}
	return *p, true
}

func (t *Tracker) sortedIDsLocked() []string {
	ids := make([]string, 0, len(t.parts))
	for id := range t.parts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
