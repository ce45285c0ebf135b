package proof

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

// Shared text helpers for the provider adapters. All extraction here works
// on visible page text; nothing embedded in the page is ever executed.

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nbspReplacer = strings.NewReplacer(" ", " ")

	hmsTokenRe  = regexp.MustCompile(`\b(\d+):([0-5]\d):([0-5]\d(?:\.\d+)?)\b`)
	msTokenRe   = regexp.MustCompile(`\b(\d+):([0-5]\d(?:\.\d+)?)\b`)
	secTokenRe  = regexp.MustCompile(`(?i)\b(\d{1,3}(?:\.\d+))s?\b`)
	windRe      = regexp.MustCompile(`(?i)(?:Wind|W:)?\s*([+-]?\d+(?:\.\d+)?)\s*m/s`)
	fatRe       = regexp.MustCompile(`(?i)\bFAT\b`)
	handRe      = regexp.MustCompile(`(?i)\b(hand|HT)\b`)
	longDateRe  = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.? (\d{1,2}),? (\d{4})\b`)
	metricMarkRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*m\b`)
	imperialRe   = regexp.MustCompile(`(\d+)(?:['’]\s*|\s*-\s*|\s+)(\d+(?:\.\d+)?)\s*["”]?(?:\s|$)`)
)

// cleanText collapses whitespace and non-breaking spaces.
func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(nbspReplacer.Replace(s), " "))
}

// timeTokenSeconds finds the first time-like token in s and converts it to
// seconds. Returns the matched token text alongside.
func timeTokenSeconds(s string) (token string, seconds float64, ok bool) {
	if m := hmsTokenRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		ss, _ := strconv.ParseFloat(m[3], 64)
		return m[0], float64(h)*3600 + float64(mm)*60 + ss, true
	}

	if m := msTokenRe.FindStringSubmatch(s); m != nil {
		mm, _ := strconv.Atoi(m[1])
		ss, _ := strconv.ParseFloat(m[2], 64)
		return m[0], float64(mm)*60 + ss, true
	}

	if m := secTokenRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return m[1], v, true
	}

	return "", 0, false
}

// metricMarkMeters finds a field-event distance in s, either imperial
// (`21' 4"`) or metric (`6.50m`), returning the display text and meters.
func metricMarkMeters(s string) (text string, meters float64, ok bool) {
	if m := imperialRe.FindStringSubmatch(s); m != nil {
		feet, _ := strconv.Atoi(m[1])
		inches, _ := strconv.ParseFloat(m[2], 64)
		if feet >= 0 && feet < 200 && inches >= 0 && inches < 12 {
			v := float64(feet)*0.3048 + inches*0.0254
			return m[1] + "' " + m[2] + `"`, v, true
		}
	}

	if m := metricMarkRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		if v > 0 && v < 100 {
			return m[1] + "m", v, true
		}
	}

	return "", 0, false
}

// detectTiming scans page text for explicit timing-class markers.
func detectTiming(s string) *domain.TimingClass {
	if fatRe.MatchString(s) {
		t := domain.TimingFAT
		return &t
	}
	if handRe.MatchString(s) {
		t := domain.TimingHand
		return &t
	}
	return nil
}

// detectWind extracts a wind reading, rejecting implausible magnitudes.
func detectWind(s string) *float64 {
	m := windRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.Abs(v) > 6 {
		return nil
	}
	return &v
}

// detectLongDate finds a "Jun 7, 2025" style date.
func detectLongDate(s string) *time.Time {
	m := longDateRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	t, err := time.Parse("Jan 2, 2006", m[1]+" "+m[2]+", "+m[3])
	if err != nil {
		return nil
	}
	return &t
}

// seasonForDate infers the competition season from the meet date. Indoor
// season runs December through mid-March.
func seasonForDate(t *time.Time) string {
	if t == nil {
		return "OUTDOOR"
	}
	switch t.Month() {
	case time.December, time.January, time.February:
		return "INDOOR"
	case time.March:
		if t.Day() <= 15 {
			return "INDOOR"
		}
	}
	return "OUTDOOR"
}
