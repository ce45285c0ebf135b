package proof

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

var (
	athleticResultRe  = regexp.MustCompile(`(?i)^https?://([a-z0-9-]+\.)*athletic\.net/result/[A-Za-z0-9]+`)
	mileSplitPerfRe   = regexp.MustCompile(`(?i)^https?://([a-z0-9-]+\.)*milesplit\.com/performance/\d+`)
	athleticResultID  = regexp.MustCompile(`(?i)/result/([A-Za-z0-9]+)`)
	mileSplitPerfID   = regexp.MustCompile(`(?i)/performance/(\d+)`)
	athleticHostRe    = regexp.MustCompile(`(?i)(^|\.)athletic\.net$`)
	mileSplitHostRe   = regexp.MustCompile(`(?i)(^|\.)milesplit\.com$`)
)

// LinkKind classifies a submitted result link.
type LinkKind string

const (
	KindAthleticNetResult    LinkKind = "athleticnet_result"
	KindMileSplitPerformance LinkKind = "milesplit_performance"
	KindUnsupported          LinkKind = "unsupported"
)

// ClassifyLink maps a raw URL to its link kind. General pages such as
// /meet/ or /athlete/ classify as unsupported: only direct result links are
// claimable.
func ClassifyLink(raw string) LinkKind {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return KindUnsupported
	}

	href := strings.TrimRight(u.String(), "/")
	if athleticResultRe.MatchString(href) {
		return KindAthleticNetResult
	}
	if mileSplitPerfRe.MatchString(href) {
		return KindMileSplitPerformance
	}
	return KindUnsupported
}

// ProviderForLink returns the provider owning a result link, or
// ErrUnsupportedURL.
func ProviderForLink(raw string) (domain.Provider, error) {
	switch ClassifyLink(raw) {
	case KindAthleticNetResult:
		return domain.ProviderAthleticNet, nil
	case KindMileSplitPerformance:
		return domain.ProviderMileSplit, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, raw)
	}
}

// ResultID extracts the provider-scoped result identifier from a result
// link.
func ResultID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case athleticHostRe.MatchString(host):
		if m := athleticResultID.FindStringSubmatch(u.Path); m != nil {
			return m[1], nil
		}
	case mileSplitHostRe.MatchString(host):
		if m := mileSplitPerfID.FindStringSubmatch(u.Path); m != nil {
			return m[1], nil
		}
	}

	return "", fmt.Errorf("%w: no result id in %s", ErrUnsupportedURL, raw)
}
