// Package marks parses and normalizes performance marks.
package marks

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

// ErrNoMark is returned when a mark string carries no usable numeric content,
// including DQ/DNF-style sentinels.
var ErrNoMark = errors.New("mark has no numeric content")

var (
	sentinelRe = regexp.MustCompile(`(?i)\b(DQ|DNF|DNS|NH|ND|NM|NT)\b`)
	hmsRe      = regexp.MustCompile(`^(\d+):([0-5]?\d):([0-5]?\d(?:\.\d+)?)$`)
	msRe       = regexp.MustCompile(`^(\d+):([0-5]?\d(?:\.\d+)?)$`)
	secRe      = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	stripRe    = regexp.MustCompile(`[^\dh:.]`)
)

// ParsedMark is the outcome of parsing a raw mark string.
type ParsedMark struct {
	Seconds float64
	Timing  domain.TimingClass
}

// Parse converts a raw mark string to seconds, detecting hand timing from a
// trailing "h". Supported forms: "53.76", "53.7h", "4:12.35", "1:58.4h",
// "1:02:03.45". Wind flags and parentheticals are ignored. Returns ErrNoMark
// for empty strings, non-time sentinels, and anything without digits.
func Parse(markText string) (ParsedMark, error) {
	raw := strings.TrimSpace(markText)
	if raw == "" {
		return ParsedMark{}, ErrNoMark
	}

	if sentinelRe.MatchString(raw) {
		return ParsedMark{}, fmt.Errorf("%w: %q", ErrNoMark, raw)
	}

	compact := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	isHand := strings.HasSuffix(compact, "h")

	// Keep only time-relevant characters, then drop the hand suffix.
	s := stripRe.ReplaceAllString(strings.ToLower(raw), "")
	s = strings.TrimSuffix(s, "h")
	if s == "" {
		return ParsedMark{}, fmt.Errorf("%w: %q", ErrNoMark, raw)
	}

	timing := domain.TimingFAT
	if isHand {
		timing = domain.TimingHand
	}

	if m := hmsRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		ss, _ := strconv.ParseFloat(m[3], 64)
		return ParsedMark{Seconds: float64(h)*3600 + float64(mm)*60 + ss, Timing: timing}, nil
	}

	if m := msRe.FindStringSubmatch(s); m != nil {
		mm, _ := strconv.Atoi(m[1])
		ss, _ := strconv.ParseFloat(m[2], 64)
		return ParsedMark{Seconds: float64(mm)*60 + ss, Timing: timing}, nil
	}

	if secRe.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !isFinite(v) {
			return ParsedMark{}, fmt.Errorf("%w: %q", ErrNoMark, raw)
		}
		return ParsedMark{Seconds: v, Timing: timing}, nil
	}

	return ParsedMark{}, fmt.Errorf("%w: %q", ErrNoMark, raw)
}

// FormatSeconds renders seconds back to a mark string: "53.76" below one
// minute, "4:12.35" above. Hundredth-second precision is preserved so that
// FormatSeconds(Parse(s)) round-trips.
func FormatSeconds(seconds float64) string {
	if !isFinite(seconds) || seconds < 0 {
		return ""
	}

	if seconds < 60 {
		return trimTrailingZeros(strconv.FormatFloat(seconds, 'f', 2, 64))
	}

	mm := int(seconds) / 60
	ss := seconds - float64(mm)*60
	pad := ""
	if ss < 10 {
		pad = "0"
	}
	return fmt.Sprintf("%d:%s%s", mm, pad, trimTrailingZeros(strconv.FormatFloat(ss, 'f', 2, 64)))
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
