// Package identity resolves which verified external identity a claimed
// profile URL belongs to.
package identity

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

// Candidate is the slug / numeric id pair accumulated from the extraction
// chain. Either field may be empty.
type Candidate struct {
	Slug      string
	NumericID string
}

// merge overlays other onto c, field by field, keeping existing values when
// the incoming one is empty.
func (c Candidate) merge(other Candidate) Candidate {
	if other.Slug != "" {
		c.Slug = other.Slug
	}
	if other.NumericID != "" {
		c.NumericID = other.NumericID
	}
	return c
}

func (c Candidate) empty() bool {
	return c.Slug == "" && c.NumericID == ""
}

var (
	profileSlugPathRe  = regexp.MustCompile(`(?i)^/profile/([A-Za-z0-9_-]+)`)
	athleteNumPathRe   = regexp.MustCompile(`(?i)^/athlete/(\d+)`)
	msAthletePathRe    = regexp.MustCompile(`(?i)^/athletes/(\d+)`)
	bodySlugRes        = []*regexp.Regexp{
		regexp.MustCompile(`(?i)href="(?:https?://(?:[a-z0-9-]+\.)*athletic\.net)?/profile/([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`(?i)"profileUrl"\s*:\s*"[^"]*/profile/([A-Za-z0-9_-]+)"`),
	}
	bodyNumericRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)href="(?:https?://(?:[a-z0-9-]+\.)*athletic\.net)?/athlete/(\d+)`),
		regexp.MustCompile(`(?i)"athleteId"\s*:\s*"?(\d+)"?`),
		regexp.MustCompile(`(?i)data-athlete-id="(\d+)"`),
	}
	canonicalLinkRe = regexp.MustCompile(`(?i)<link[^>]+rel=["']canonical["'][^>]+href=["']([^"']+)["']`)
	canonicalHrefRe = regexp.MustCompile(`(?i)<link[^>]+href=["']([^"']+)["'][^>]+rel=["']canonical["']`)
)

// Extractor derives a candidate from one signal. An extractor that finds
// nothing returns the zero Candidate.
type Extractor func() Candidate

// fold applies extractors in priority order. Later extractors overwrite
// earlier fields only when they produce non-empty values, so each field
// settles on the last signal that had an opinion about it.
func fold(extractors ...Extractor) Candidate {
	var acc Candidate
	for _, ex := range extractors {
		acc = acc.merge(ex())
	}
	return acc
}

// candidateFromURL pulls a slug or numeric id out of a profile-shaped URL.
func candidateFromURL(raw string) Candidate {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Path == "" {
		return Candidate{}
	}

	if m := profileSlugPathRe.FindStringSubmatch(u.Path); m != nil {
		return Candidate{Slug: m[1]}
	}
	if m := athleteNumPathRe.FindStringSubmatch(u.Path); m != nil {
		return Candidate{NumericID: m[1]}
	}
	if m := msAthletePathRe.FindStringSubmatch(u.Path); m != nil {
		return Candidate{NumericID: m[1]}
	}
	return Candidate{}
}

// candidateFromCanonical reads the page's canonical link element, if any,
// and treats it as another profile-shaped URL.
func candidateFromCanonical(html []byte) Candidate {
	for _, re := range []*regexp.Regexp{canonicalLinkRe, canonicalHrefRe} {
		if m := re.FindSubmatch(html); m != nil {
			return candidateFromURL(string(m[1]))
		}
	}
	return Candidate{}
}

// candidateFromBody scans raw markup for embedded profile references.
func candidateFromBody(html []byte) Candidate {
	var c Candidate
	for _, re := range bodySlugRes {
		if m := re.FindSubmatch(html); m != nil {
			c.Slug = string(m[1])
			break
		}
	}
	for _, re := range bodyNumericRes {
		if m := re.FindSubmatch(html); m != nil {
			c.NumericID = string(m[1])
			break
		}
	}
	return c
}

// ProviderForProfileURL recognizes which provider a profile URL belongs to.
func ProviderForProfileURL(raw string) (domain.Provider, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "athletic.net" || strings.HasSuffix(host, ".athletic.net"):
		return domain.ProviderAthleticNet, true
	case host == "milesplit.com" || strings.HasSuffix(host, ".milesplit.com"):
		return domain.ProviderMileSplit, true
	}
	return "", false
}
