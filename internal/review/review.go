// Package review governs the proof-submission lifecycle.
package review

import (
	"errors"
	"fmt"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

// ErrTerminalState marks an attempted transition out of accepted or
// rejected. Decided submissions are immutable; corrections require a new
// submission.
var ErrTerminalState = errors.New("submission already decided")

// transitions is the full lifecycle. pending fans out to every other
// state, needs_review awaits an external decision, accepted and rejected
// admit nothing.
var transitions = map[domain.SubmissionStatus]map[domain.SubmissionStatus]bool{
	domain.SubmissionPending: {
		domain.SubmissionAccepted:    true,
		domain.SubmissionNeedsReview: true,
		domain.SubmissionRejected:    true,
	},
	domain.SubmissionNeedsReview: {
		domain.SubmissionAccepted: true,
		domain.SubmissionRejected: true,
	},
	domain.SubmissionAccepted: {},
	domain.SubmissionRejected: {},
}

// CanTransition reports whether the lifecycle permits from → to.
func CanTransition(from, to domain.SubmissionStatus) bool {
	return transitions[from][to]
}

// Transition validates a lifecycle move, distinguishing terminal-state
// violations from plain invalid moves.
func Transition(from, to domain.SubmissionStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	if IsTerminal(from) {
		return fmt.Errorf("%w: %s", ErrTerminalState, from)
	}
	return fmt.Errorf("invalid transition %s -> %s", from, to)
}

// IsTerminal reports whether a status admits no further transition.
func IsTerminal(s domain.SubmissionStatus) bool {
	return s == domain.SubmissionAccepted || s == domain.SubmissionRejected
}

// Policy decides the automatic outcome of a nominally successful claim.
type Policy struct {
	// AcceptThreshold is the minimum confidence for automatic acceptance.
	AcceptThreshold float64
	// ContextMatchPenalty is subtracted from confidence when the
	// cross-reference match came from the context page rather than the
	// profile itself. Zero treats both match sources as equivalent.
	ContextMatchPenalty float64
}

// Decide maps a parse confidence and match provenance to the automatic
// outcome: accepted, or needs_review when confidence falls short.
func (p Policy) Decide(confidence float64, contextOnlyMatch bool) domain.SubmissionStatus {
	effective := confidence
	if contextOnlyMatch {
		effective -= p.ContextMatchPenalty
	}

	if effective < p.AcceptThreshold {
		return domain.SubmissionNeedsReview
	}
	return domain.SubmissionAccepted
}
