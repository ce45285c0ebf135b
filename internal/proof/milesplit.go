package proof

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/marks"
)

// MileSplitParser extracts results from milesplit.com /performance/<id>
// pages. MileSplit performance pages are simpler than athletic.net result
// pages: the event and mark usually sit in the title and meta description.
type MileSplitParser struct{}

// NewMileSplitParser creates the milesplit adapter.
func NewMileSplitParser() *MileSplitParser {
	return &MileSplitParser{}
}

// Provider implements Parser.
func (p *MileSplitParser) Provider() domain.Provider {
	return domain.ProviderMileSplit
}

// Parse implements Parser.
func (p *MileSplitParser) Parse(pageURL string, html []byte) (*Parsed, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	title := cleanText(doc.Find("title").First().Text())
	desc := ""
	if d, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		desc = cleanText(d)
	}

	doc.Find("script, style").Remove()
	body := cleanText(doc.Find("body").Text())

	event := marks.NormalizeEvent(title)
	if event == "" {
		event = marks.NormalizeEvent(pageURL)
	}
	if event == "" {
		event = marks.NormalizeEvent(body)
	}
	if event == "" {
		return nil, fmt.Errorf("%w: no event", ErrMarkMissing)
	}

	parsed := &Parsed{Event: event}

	if marks.IsFieldEvent(event) {
		if !extractFieldMark(parsed, title, desc, body) {
			return nil, fmt.Errorf("%w: no distance mark", ErrMarkMissing)
		}
	} else {
		found := false
		for _, candidate := range []string{title, desc, body} {
			if candidate == "" {
				continue
			}
			if token, seconds, ok := timeTokenSeconds(candidate); ok {
				s := seconds
				parsed.MarkText = token
				parsed.MarkSeconds = &s
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no time mark", ErrMarkMissing)
		}

		if lo, hi, ok := marks.PlausibleRange(event); ok {
			if s := parsed.MarkSeconds; s != nil && (*s < lo || *s > hi) {
				return nil, fmt.Errorf("%w: implausible mark %.2f for %s", ErrMarkMissing, *s, event)
			}
		}
	}

	parsed.Timing = detectTiming(body)
	parsed.Wind = detectWind(body)
	parsed.MeetDate = detectLongDate(title + " " + body)
	parsed.Season = seasonForDate(parsed.MeetDate)

	if meet := cleanText(doc.Find(".meet-name, h2.meet").First().Text()); meet != "" {
		parsed.MeetName = &meet
	}

	parsed.Confidence = scoreConfidence(parsed)

	return parsed, nil
}
