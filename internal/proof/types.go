// Package proof extracts structured performance data from result pages.
// One adapter per supported provider shares the Parsed output contract,
// keeping the claim pipeline provider-agnostic.
package proof

import (
	"errors"
	"time"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

var (
	// ErrUnsupportedURL is returned for result links outside the closed
	// provider set.
	ErrUnsupportedURL = errors.New("unsupported result url")
	// ErrParseFailed is returned when a page cannot be read as HTML.
	ErrParseFailed = errors.New("parse failed")
	// ErrMarkMissing is returned when a page yields no recognizable mark
	// or event. There is no best-effort acceptance of an incomplete mark.
	ErrMarkMissing = errors.New("no recognizable mark on result page")
)

// Parsed is the uniform output of every provider adapter. Time and metric
// marks are mutually exclusive by event class: running events set
// MarkSeconds, field events set MarkMetric.
type Parsed struct {
	Event       string
	MarkText    string
	MarkSeconds *float64
	MarkMetric  *float64
	Timing      *domain.TimingClass
	Wind        *float64
	Season      string
	MeetName    *string
	MeetDate    *time.Time
	// Confidence in [0,1] reflects how completely the mandatory and
	// supporting fields were extracted.
	Confidence float64
	// AthleteSlug is a profile reference found on the result page, when
	// present.
	AthleteSlug string
}

// Parser extracts a Parsed record from one provider's result pages.
type Parser interface {
	Provider() domain.Provider
	// Parse extracts structured fields from the page. Returns
	// ErrMarkMissing when event or mark cannot be established.
	Parse(pageURL string, html []byte) (*Parsed, error)
}
