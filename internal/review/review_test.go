package review_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/review"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to domain.SubmissionStatus
		want     bool
	}{
		{domain.SubmissionPending, domain.SubmissionAccepted, true},
		{domain.SubmissionPending, domain.SubmissionNeedsReview, true},
		{domain.SubmissionPending, domain.SubmissionRejected, true},
		{domain.SubmissionNeedsReview, domain.SubmissionAccepted, true},
		{domain.SubmissionNeedsReview, domain.SubmissionRejected, true},
		{domain.SubmissionNeedsReview, domain.SubmissionPending, false},
		{domain.SubmissionAccepted, domain.SubmissionRejected, false},
		{domain.SubmissionAccepted, domain.SubmissionPending, false},
		{domain.SubmissionRejected, domain.SubmissionAccepted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, review.CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTransition_TerminalStateError(t *testing.T) {
	err := review.Transition(domain.SubmissionAccepted, domain.SubmissionRejected)
	assert.True(t, errors.Is(err, review.ErrTerminalState))

	err = review.Transition(domain.SubmissionRejected, domain.SubmissionAccepted)
	assert.True(t, errors.Is(err, review.ErrTerminalState))

	err = review.Transition(domain.SubmissionNeedsReview, domain.SubmissionPending)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, review.ErrTerminalState))

	assert.NoError(t, review.Transition(domain.SubmissionPending, domain.SubmissionAccepted))
}

func TestPolicyDecide(t *testing.T) {
	p := review.Policy{AcceptThreshold: 0.7}

	assert.Equal(t, domain.SubmissionAccepted, p.Decide(0.95, false))
	assert.Equal(t, domain.SubmissionAccepted, p.Decide(0.7, false))
	assert.Equal(t, domain.SubmissionNeedsReview, p.Decide(0.69, false))
}

func TestPolicyDecide_ContextMatchPenalty(t *testing.T) {
	p := review.Policy{AcceptThreshold: 0.7, ContextMatchPenalty: 0.1}

	assert.Equal(t, domain.SubmissionAccepted, p.Decide(0.75, false))
	assert.Equal(t, domain.SubmissionNeedsReview, p.Decide(0.75, true))

	// Zero penalty treats both match sources identically.
	neutral := review.Policy{AcceptThreshold: 0.7}
	assert.Equal(t, domain.SubmissionAccepted, neutral.Decide(0.75, true))
}
