package proof

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/marks"
)

// Page titles that indicate a generic landing page rather than a result.
var athleticBadTitles = map[string]bool{
	"track & field and cross country statistics": true,
	"athletic.net": true,
}

var athleticSlugRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)href="(?:https?://(?:www\.)?athletic\.net)?/profile/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?i)"profileUrl"\s*:\s*"(?:https?://(?:www\.)?athletic\.net)?/profile/([A-Za-z0-9_-]+)"`),
	regexp.MustCompile(`(?i)data-athlete-id="([A-Za-z0-9-]+)"`),
}

// AthleticNetParser extracts results from athletic.net /result/<id> pages.
type AthleticNetParser struct{}

// NewAthleticNetParser creates the athletic.net adapter.
func NewAthleticNetParser() *AthleticNetParser {
	return &AthleticNetParser{}
}

// Provider implements Parser.
func (p *AthleticNetParser) Provider() domain.Provider {
	return domain.ProviderAthleticNet
}

// Parse implements Parser. Extraction is deterministic: the same HTML always
// yields the same fields and confidence.
func (p *AthleticNetParser) Parse(pageURL string, html []byte) (*Parsed, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	title := cleanText(doc.Find("title").First().Text())
	if title == "" {
		if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
			title = cleanText(og)
		}
	}
	if athleticBadTitles[strings.ToLower(title)] {
		return nil, fmt.Errorf("%w: generic landing page", ErrMarkMissing)
	}

	doc.Find("script, style").Remove()
	body := cleanText(doc.Find("body").Text())
	ogDesc := ""
	if d, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
		ogDesc = cleanText(d)
	}

	event := extractAthleticEvent(doc, title, body)
	if event == "" {
		return nil, fmt.Errorf("%w: no event", ErrMarkMissing)
	}

	parsed := &Parsed{Event: event}

	if marks.IsFieldEvent(event) {
		if !extractFieldMark(parsed, title, ogDesc, body) {
			return nil, fmt.Errorf("%w: no distance mark", ErrMarkMissing)
		}
	} else {
		if !extractTimeMark(parsed, doc, title, ogDesc, body) {
			return nil, fmt.Errorf("%w: no time mark", ErrMarkMissing)
		}

		// Reject clearly implausible marks for the event so stray
		// numbers on the page cannot masquerade as results.
		if lo, hi, ok := marks.PlausibleRange(event); ok {
			if s := parsed.MarkSeconds; s != nil && (*s < lo || *s > hi) {
				return nil, fmt.Errorf("%w: implausible mark %.2f for %s", ErrMarkMissing, *s, event)
			}
		}
	}

	parsed.Timing = detectTiming(body)
	parsed.Wind = detectWind(body)
	parsed.MeetDate = extractAthleticDate(doc, title, body)
	parsed.Season = seasonForDate(parsed.MeetDate)
	if meet := extractAthleticMeetName(doc, title); meet != "" {
		parsed.MeetName = &meet
	}
	parsed.AthleteSlug = extractAthleticSlug(html)
	parsed.Confidence = scoreConfidence(parsed)

	return parsed, nil
}

// extractAthleticEvent tries the performance header, the page title, then
// the body text.
func extractAthleticEvent(doc *goquery.Document, title, body string) string {
	for _, sel := range []string{".performanceHeader h1", ".eventHeader h1", "h1"} {
		if ev := marks.NormalizeEvent(cleanText(doc.Find(sel).First().Text())); ev != "" {
			return ev
		}
	}

	if ev := marks.NormalizeEvent(title); ev != "" {
		return ev
	}
	return marks.NormalizeEvent(body)
}

// extractTimeMark fills MarkText and MarkSeconds from the first plausible
// source: the dedicated mark cell, meta description, title, then body text.
func extractTimeMark(parsed *Parsed, doc *goquery.Document, title, ogDesc, body string) bool {
	cellText := ""
	for _, sel := range []string{".performance-time", ".mark", "td.time"} {
		if t := cleanText(doc.Find(sel).First().Text()); t != "" {
			cellText = t
			break
		}
	}

	for _, candidate := range []string{cellText, ogDesc, title, body} {
		if candidate == "" {
			continue
		}
		if token, seconds, ok := timeTokenSeconds(candidate); ok {
			s := seconds
			parsed.MarkText = token
			parsed.MarkSeconds = &s
			return true
		}
	}
	return false
}

// extractFieldMark fills MarkText and MarkMetric for field events.
func extractFieldMark(parsed *Parsed, title, ogDesc, body string) bool {
	for _, candidate := range []string{title, ogDesc, body} {
		if candidate == "" {
			continue
		}
		if text, meters, ok := metricMarkMeters(candidate); ok {
			m := meters
			parsed.MarkText = text
			parsed.MarkMetric = &m
			return true
		}
	}
	return false
}

func extractAthleticDate(doc *goquery.Document, title, body string) *time.Time {
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, cleanText(dt)); err == nil {
				return &t
			}
		}
	}

	if t := detectLongDate(title); t != nil {
		return t
	}
	return detectLongDate(body)
}

// extractAthleticMeetName prefers dedicated meet elements, then falls back
// to title segments ("Athlete - Team - Time - Event - Meet - Date").
func extractAthleticMeetName(doc *goquery.Document, title string) string {
	for _, sel := range []string{".meetHeader h1", ".meet-title", ".meetName"} {
		if name := cleanText(doc.Find(sel).First().Text()); name != "" {
			return name
		}
	}

	cleaned := regexp.MustCompile(`(?i)\s*[-|]\s*(Track\s*&\s*Field.*|Athletic\.net.*)$`).ReplaceAllString(title, "")
	parts := strings.Split(cleaned, " - ")
	if len(parts) < 2 {
		return ""
	}

	end := len(parts)
	if longDateRe.MatchString(parts[end-1]) {
		end--
	}
	if end < 3 {
		return ""
	}

	best := ""
	for _, part := range parts[2:end] {
		part = cleanText(part)
		if part == "" {
			continue
		}
		if _, _, isTime := timeTokenSeconds(part); isTime {
			continue
		}
		if marks.NormalizeEvent(part) != "" && len(part) < 16 {
			continue
		}
		if len(part) > len(best) {
			best = part
		}
	}
	return best
}

func extractAthleticSlug(html []byte) string {
	for _, re := range athleticSlugRes {
		if m := re.FindSubmatch(html); m != nil {
			return string(m[1])
		}
	}
	return ""
}

// scoreConfidence reflects extraction completeness: 0.7 for the mandatory
// event+mark pair, small bonuses for each supporting field, capped at 0.98.
func scoreConfidence(p *Parsed) float64 {
	if p.Event == "" || (p.MarkSeconds == nil && p.MarkMetric == nil) {
		return 0
	}

	confidence := 0.7
	if p.MeetName != nil {
		confidence += 0.1
	}
	if p.MeetDate != nil {
		confidence += 0.05
	}
	if p.Timing != nil {
		confidence += 0.05
	}
	if p.Wind != nil {
		confidence += 0.05
	}
	if confidence > 0.98 {
		confidence = 0.98
	}
	return confidence
}
