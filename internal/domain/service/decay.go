package service

import (
	"math"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
)

// Half-lives for exponential time-decay weighting, in days.
const (
	// TransferHalfLifeDays drives decayed frequency and volume.
	TransferHalfLifeDays = 30.0
	// RecencyHalfLifeDays drives the recency term of the activity index.
	RecencyHalfLifeDays = 90.0
)

const hoursPerDay = 24.0

// ValueFunc extracts the quantity a decayed sum accumulates per transfer.
type ValueFunc func(*entity.Transfer) float64

// UnitValue counts each transfer as 1, yielding decayed frequency.
func UnitValue(*entity.Transfer) float64 { return 1 }

// TransferValue extracts the native-currency value, yielding decayed volume.
func TransferValue(t *entity.Transfer) float64 { return t.ValueOrZero() }

// skipReason classifies why a transfer is excluded from time-based sums.
type skipReason int

const (
	skipNone skipReason = iota
	skipMissingMetadata
	skipMissingTimestamp
	skipUnparsableTimestamp
)

// transferTime extracts and parses a transfer's block timestamp. Records with
// no metadata container, no timestamp field, or an unparsable timestamp are
// reported with the matching skip reason instead of a defaulted time.
func transferTime(t *entity.Transfer) (time.Time, skipReason) {
	if t == nil || t.Metadata == nil {
		return time.Time{}, skipMissingMetadata
	}
	if t.Metadata.BlockTimestamp == "" {
		return time.Time{}, skipMissingTimestamp
	}
	ts, err := time.Parse(time.RFC3339, t.Metadata.BlockTimestamp)
	if err != nil {
		return time.Time{}, skipUnparsableTimestamp
	}
	return ts, skipNone
}

// skipAccumulator collects skip counters locally; callers receive the final
// SkipStats alongside the computed aggregate.
type skipAccumulator struct {
	stats entity.SkipStats
}

func (s *skipAccumulator) note(reason skipReason) {
	switch reason {
	case skipNone:
		s.stats.Processed++
	case skipMissingMetadata:
		s.stats.MissingMetadata++
	case skipMissingTimestamp:
		s.stats.MissingTimestamp++
	case skipUnparsableTimestamp:
		s.stats.UnparsableTimestamp++
	}
}

// decayWeight returns exp(-ln2/halfLife * ageDays).
func decayWeight(ageDays, halfLifeDays float64) float64 {
	return math.Exp(-math.Ln2 / halfLifeDays * ageDays)
}

// DecayedSum computes an exponentially time-weighted aggregate over a
// transfer list. Each transfer with a valid timestamp contributes
// weight * extract(transfer), where weight halves every halfLifeDays days of
// age relative to now. Malformed records are excluded and counted by reason.
func DecayedSum(transfers []*entity.Transfer, now time.Time, halfLifeDays float64, extract ValueFunc) (float64, entity.SkipStats) {
	if extract == nil {
		extract = UnitValue
	}

	var acc skipAccumulator
	sum := 0.0
	for _, t := range transfers {
		ts, reason := transferTime(t)
		acc.note(reason)
		if reason != skipNone {
			continue
		}
		ageDays := now.Sub(ts).Hours() / hoursPerDay
		if ageDays < 0 {
			ageDays = 0
		}
		sum += decayWeight(ageDays, halfLifeDays) * extract(t)
	}
	return sum, acc.stats
}
