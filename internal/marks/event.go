package marks

import (
	"regexp"
	"strings"
)

// Canonical event tokens: "100m", "400m", "110H", "300H" for running events;
// "SP", "LJ" and friends for field events.

var (
	hurdlesRe   = regexp.MustCompile(`(?i)\b(60|80|100|110|200|300|400)\s*(?:m(?:eter)?s?)?\s*(?:H\b|Hurdles)`)
	flatRe      = regexp.MustCompile(`(?i)\b(60|100|200|300|400|800|1500|1600|3000|3200|5000|10000)\s*m(?:eters?)?\b`)
	bareFlatRe  = regexp.MustCompile(`\b(100|200|400|800|1500|1600|3200|5000|10000)\b`)
	fieldEvents = map[string]*regexp.Regexp{
		"SP": regexp.MustCompile(`(?i)\bShot\s*Put\b`),
		"DT": regexp.MustCompile(`(?i)\bDiscus(?:\s+Throw)?\b`),
		"JT": regexp.MustCompile(`(?i)\bJavelin(?:\s+Throw)?\b`),
		"HM": regexp.MustCompile(`(?i)\bHammer(?:\s+Throw)?\b`),
		"LJ": regexp.MustCompile(`(?i)\bLong\s*Jump\b`),
		"TJ": regexp.MustCompile(`(?i)\bTriple\s*Jump\b`),
		"HJ": regexp.MustCompile(`(?i)\bHigh\s*Jump\b`),
		"PV": regexp.MustCompile(`(?i)\bPole\s*Vault\b`),
	}
)

// fieldEventTokens is the closed set of field-event tokens; field events carry
// a metric mark, running events a time mark, never both.
var fieldEventTokens = map[string]bool{
	"SP": true, "DT": true, "JT": true, "HM": true,
	"LJ": true, "TJ": true, "HJ": true, "PV": true,
}

// NormalizeEvent maps a human event label ("110m Hurdles", "400mH",
// "Shot Put") to its canonical token. Returns "" when no event is
// recognized.
func NormalizeEvent(label string) string {
	s := strings.TrimSpace(label)
	if s == "" {
		return ""
	}

	for token, re := range fieldEvents {
		if re.MatchString(s) {
			return token
		}
	}

	if m := hurdlesRe.FindStringSubmatch(s); m != nil {
		return m[1] + "H"
	}

	if m := flatRe.FindStringSubmatch(s); m != nil {
		return m[1] + "m"
	}

	if m := bareFlatRe.FindStringSubmatch(s); m != nil {
		return m[1] + "m"
	}

	return ""
}

// IsFieldEvent reports whether the canonical event token is a field event.
func IsFieldEvent(event string) bool {
	return fieldEventTokens[event]
}

// PlausibleRange returns the believable seconds range for a running event
// token, or ok=false when no range is known. Used to reject absurd parsed
// marks such as a lone "1" on the page.
func PlausibleRange(event string) (low, high float64, ok bool) {
	r, found := eventRanges[event]
	if !found {
		return 0, 0, false
	}
	return r[0], r[1], true
}

var eventRanges = map[string][2]float64{
	"60m":    {6, 15},
	"100m":   {9, 20},
	"200m":   {19, 40},
	"300m":   {32, 90},
	"400m":   {40, 120},
	"800m":   {90, 240},
	"1500m":  {200, 600},
	"1600m":  {220, 600},
	"3000m":  {450, 1400},
	"3200m":  {480, 1500},
	"5000m":  {780, 2400},
	"10000m": {1500, 4500},
	"60H":    {7, 18},
	"80H":    {9, 22},
	"100H":   {11, 25},
	"110H":   {10, 25},
	"200H":   {22, 50},
	"300H":   {34, 80},
	"400H":   {45, 120},
}
