// Package check runs the internal self-test backing the readiness
// probe: the classifier must still reject known hostile inputs, the
// sealer must round-trip, and the store must answer.
package check

import (
	"fmt"

	"curatord/pkg/classify"
	"curatord/pkg/seal"
	"curatord/pkg/store"
)

// Result holds the outcome of one self-test pass.
type Result struct {
	Passed   bool
	Failures []string
}

// Run executes the full self-test. A nil sealer skips the seal
// round-trip.
func Run(sealer *seal.Sealer) Result {
	var failures []string

	if !classify.IsForbidden("VGhpcyBpcyA2NjY=") {
		failures = append(failures, "classifier missed base64-encoded beast number")
	}
	if !classify.IsForbidden("🜁 welcome") {
		failures = append(failures, "classifier missed occult mark")
	}
	if classify.IsForbidden("Христос посреди нас") {
		failures = append(failures, "classifier flagged benign text")
	}

	if sealer != nil && sealer.Enabled() {
		const probe = "self_test_probe"
		sealed, ok := sealer.Seal(probe)
		if !ok {
			failures = append(failures, "seal fell back to plaintext")
		} else if got := sealer.Open(sealed); got != probe {
			failures = append(failures, fmt.Sprintf("seal round-trip mismatch: %q", got))
		}
	}

	if !store.Ready() {
		failures = append(failures, "store not ready")
	}

	return Result{Passed: len(failures) == 0, Failures: failures}
}
