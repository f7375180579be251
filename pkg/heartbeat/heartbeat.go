// Package heartbeat periodically seeds the curated record with a
// synthesized system message drawn from a fixed scripture list. Selection
// is least-used-first so the record does not fill with one repeated
// quote; the beat is skipped while fewer than two participants are
// active.
package heartbeat

import (
	"context"
	"sync"
	"time"

	"curatord/pkg/logger"
	"curatord/pkg/models"
)

// minActive is the participant floor below which the heartbeat stays
// quiet.
const minActive = 2

// reuseThreshold caps how often one quote may be reused relative to the
// list size before it is filtered from selection.
const reuseThreshold = 0.5

var scriptures = []string{
	"И будет имя Его Еммануил — Бог с нами (Мф. 1:23)",
	"Не все, кто говорит 'Господи!', принадлежит Ему (Мф. 7:21)",
	"Кто во Христе — новая тварь (2 Кор. 5:17)",
	"Бог — любовь (1 Ин. 4:8)",
	"Где двое или трое собраны во имя Моё — там Я посреди них (Мф. 18:20)",
	"Свет ваш да светит перед людьми (Мф. 5:16)",
	"Возлюби ближнего твоего, как самого себя (Мк. 12:31)",
	"Пусть ваше слово будет: 'да, да' или 'нет, нет' (Мф. 5:37)",
}

// Heartbeat emits the periodic messages. Persist is called with each
// synthesized message; ActiveCount reports the live roster.
type Heartbeat struct {
	mu          sync.Mutex
	usage       map[string]int
	interval    time.Duration
	activeCount func() int
	persist     func(models.Message) error
}

// New returns a heartbeat with the given cadence; interval <= 0 defaults
// to five minutes.
func New(interval time.Duration, activeCount func() int, persist func(models.Message) error) *Heartbeat {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	usage := make(map[string]int, len(scriptures))
	for _, s := range scriptures {
		usage[s] = 0
	}
	return &Heartbeat{
		usage:       usage,
		interval:    interval,
		activeCount: activeCount,
		persist:     persist,
	}
}

// Run loops until the context is cancelled.
func (h *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Beat()
		}
	}
}

// Beat emits one heartbeat message if enough participants are active.
func (h *Heartbeat) Beat() {
	if h.activeCount() < minActive {
		logger.Debug("heartbeat_skipped", "reason", "too_few_active")
		return
	}
	quote := h.pick()
	m := models.Message{
		Author: models.AuthorSystem,
		Text:   quote,
		TS:     time.Now().UTC().UnixNano(),
	}
	if err := h.persist(m); err != nil {
		logger.Error("heartbeat_persist_failed", "error", err)
		return
	}
	logger.Debug("heartbeat_sent", "quote", quote)
}

// pick returns the least-used quote among those under the reuse
// threshold, falling back to the full list when all are saturated.
func (h *Heartbeat) pick() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	limit := int(float64(len(scriptures)) * reuseThreshold)
	candidates := make([]string, 0, len(scriptures))
	for _, s := range scriptures {
		if h.usage[s] < limit {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		candidates = scriptures
	}
	best := candidates[0]
	for _, s := range candidates[1:] {
		if h.usage[s] < h.usage[best] {
			best = s
		}
	}
	h.usage[best]++
	return best
}
