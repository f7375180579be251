package models

import "time"

// Participant is the persisted record for one registered conversational
// source. BlockedSince is set iff the participant is currently considered
// blocked; RecoveryChecks resets to zero whenever activity is observed.
type Participant struct {
	ID             string     `json:"id"`
	Active         bool       `json:"active"`
	BlockedSince   *time.Time `json:"blocked_since,omitempty"`
	RecoveryChecks int        `json:"recovery_checks,omitempty"`
}

// Blocked reports whether the participant is currently blocked.
func (p *Participant) Blocked() bool { return p.BlockedSince != nil }
