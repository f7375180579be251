// Package dedupe provides best-effort duplicate suppression over a bounded
// rolling window of content fingerprints.
package dedupe

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// DefaultTolerance is the number of near-duplicates tolerated before the
// window wraps; the window holds 2x this many fingerprints.
const DefaultTolerance = 3

const chunkSize = 5

var stripRe = regexp.MustCompile(`[^а-яa-z0-9]`)

// Fingerprint reduces text to a compact structural digest: lowercase,
// strip everything outside the working charset, then sum character codes
// in fixed-size chunks and join the chunk sums. Identical normalized text
// always fingerprints identically; collisions across different text are
// tolerated. Not a cryptographic hash.
func Fingerprint(text string) string {
	normalized := stripRe.ReplaceAllString(strings.ToLower(text), "")
	runes := []rune(normalized)
	var parts []string
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		sum := 0
		for _, r := range runes[i:end] {
			sum += int(r)
		}
		parts = append(parts, strconv.Itoa(sum))
	}
	return strings.Join(parts, "-")
}

// Window is a bounded FIFO set of fingerprints. Mutations are serialized;
// CheckAndRecord must be applied at most once per candidate message per
// pipeline cycle.
type Window struct {
	mu    sync.Mutex
	cap   int
	order []string
	seen  map[string]struct{}
}

// NewWindow returns a window sized to 2x the given duplicate tolerance.
func NewWindow(tolerance int) *Window {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Window{
		cap:  tolerance * 2,
		seen: make(map[string]struct{}),
	}
}

// CheckAndRecord returns true when the text's fingerprint was not present
// in the window and records it, evicting the oldest entry once the window
// exceeds its cap. A present fingerprint returns false without mutating
// the window.
func (w *Window) CheckAndRecord(text string) bool {
	fp := Fingerprint(text)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[fp]; ok {
		return false
	}
	w.order = append(w.order, fp)
	w.seen[fp] = struct{}{}
	if len(w.order) > w.cap {
		oldest := w.order[0]
		w.order = w.order[1:]
		delete(w.seen, oldest)
	}
	return true
}

// Len returns the number of fingerprints currently tracked.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.order)
}
