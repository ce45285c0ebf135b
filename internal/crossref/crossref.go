// Package crossref proves a claimed result is referenced on the claimant's
// profile page.
package crossref

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/certifiedsliders/resultclaims/internal/fetcher"
	"github.com/certifiedsliders/resultclaims/internal/logger"
)

// ErrResultNotFound marks a result id absent from both the profile page and
// the optional context page.
var ErrResultNotFound = errors.New("result not found on profile")

// MatchSource records which page carried the reference.
type MatchSource string

const (
	MatchProfile MatchSource = "profile"
	MatchContext MatchSource = "context"
)

// PageFetcher is the fetch surface the validator needs for the optional
// context page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Page, error)
}

// Validator checks result-id references in fetched page text.
type Validator struct {
	fetcher PageFetcher
	logger  logger.Interface
}

// NewValidator creates a Validator.
func NewValidator(f PageFetcher, log logger.Interface) *Validator {
	return &Validator{fetcher: f, logger: log}
}

// ContainsResultID reports whether the page references the result id,
// either as a path form ("/result/<id>") or as the bare identifier. Both
// sides are lowercased so provider casing differences never matter.
func ContainsResultID(html []byte, resultID string) bool {
	id := strings.ToLower(strings.TrimSpace(resultID))
	if id == "" {
		return false
	}

	page := strings.ToLower(string(html))
	return strings.Contains(page, "/result/"+id) ||
		strings.Contains(page, "/performance/"+id) ||
		strings.Contains(page, id)
}

// Validate confirms the result id appears on the profile page, falling back
// to one context-page fetch when a context URL was supplied. The returned
// source tells the caller whether the match came from the primary page.
func (v *Validator) Validate(
	ctx context.Context,
	profileHTML []byte,
	resultID string,
	contextURL string,
) (MatchSource, error) {
	if ContainsResultID(profileHTML, resultID) {
		return MatchProfile, nil
	}

	if contextURL == "" {
		return "", fmt.Errorf("%w: id %s", ErrResultNotFound, resultID)
	}

	page, err := v.fetcher.Fetch(ctx, contextURL)
	if err != nil {
		v.logger.Debug("context page fetch failed",
			logger.String("context_url", contextURL),
			logger.Error(err))
		return "", fmt.Errorf("%w: id %s", ErrResultNotFound, resultID)
	}

	if ContainsResultID(page.HTML, resultID) {
		return MatchContext, nil
	}

	return "", fmt.Errorf("%w: id %s", ErrResultNotFound, resultID)
}
