package marks

import "github.com/certifiedsliders/resultclaims/internal/domain"

// Hand-timed marks are corrected toward fully-automatic-timing equivalence
// before ranking. Offsets follow the standard conversion: +0.24s for races
// of 400 meters or shorter (hurdles included), +0.14s for longer races.
const (
	sprintHandOffset   = 0.24
	distanceHandOffset = 0.14
)

// handOffsets is the fixed per-event adjustment table.
var handOffsets = map[string]float64{
	"60m":    sprintHandOffset,
	"100m":   sprintHandOffset,
	"200m":   sprintHandOffset,
	"300m":   sprintHandOffset,
	"400m":   sprintHandOffset,
	"60H":    sprintHandOffset,
	"80H":    sprintHandOffset,
	"100H":   sprintHandOffset,
	"110H":   sprintHandOffset,
	"200H":   sprintHandOffset,
	"300H":   sprintHandOffset,
	"400H":   sprintHandOffset,
	"800m":   distanceHandOffset,
	"1500m":  distanceHandOffset,
	"1600m":  distanceHandOffset,
	"3000m":  distanceHandOffset,
	"3200m":  distanceHandOffset,
	"5000m":  distanceHandOffset,
	"10000m": distanceHandOffset,
}

// Adjust converts raw seconds to the FAT-equivalent adjusted value. Pure and
// deterministic: already-FAT marks and marks with unknown timing pass through
// unchanged, hand-timed marks receive the event's fixed offset. The raw value
// is never mutated; callers store both.
func Adjust(event string, rawSeconds float64, timing *domain.TimingClass) float64 {
	if timing == nil || *timing != domain.TimingHand {
		return rawSeconds
	}

	return rawSeconds + HandOffset(event)
}

// HandOffset returns the hand-to-FAT correction for an event. Event labels
// are normalized first, so "400mH" and "400m Hurdles" resolve to the same
// offset. Unknown running events get the sprint offset; field events have no
// timed correction.
func HandOffset(event string) float64 {
	token := NormalizeEvent(event)
	if token == "" {
		token = event
	}

	if IsFieldEvent(token) {
		return 0
	}

	if off, ok := handOffsets[token]; ok {
		return off
	}

	return sprintHandOffset
}
