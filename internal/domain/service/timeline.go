package service

import (
	"sort"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
)

// Granularity selects the timeline bucketing scheme.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity maps a config string onto a Granularity, defaulting to
// daily buckets for unknown input.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case GranularityWeek:
		return GranularityWeek
	case GranularityMonth:
		return GranularityMonth
	default:
		return GranularityDay
	}
}

// BuildTimeline buckets the batch's transfers by UTC day, week (keyed by the
// week's Sunday), or month, and returns entries sorted ascending by key.
// Transfers without a usable timestamp are excluded under the standard skip
// taxonomy.
func BuildTimeline(batch []*entity.WalletSnapshot, granularity Granularity) ([]entity.TimelineEntry, entity.SkipStats) {
	type bucket struct {
		label  string
		volume float64
		count  int
	}

	var acc skipAccumulator
	buckets := make(map[string]*bucket)
	for _, s := range batch {
		for _, t := range s.Transfers {
			ts, reason := transferTime(t)
			acc.note(reason)
			if reason != skipNone {
				continue
			}
			key, label := bucketKey(ts.UTC(), granularity)
			b, ok := buckets[key]
			if !ok {
				b = &bucket{label: label}
				buckets[key] = b
			}
			b.volume += t.ValueOrZero()
			b.count++
		}
	}

	entries := make([]entity.TimelineEntry, 0, len(buckets))
	for key, b := range buckets {
		entries = append(entries, entity.TimelineEntry{
			Key:    key,
			Label:  b.label,
			Volume: round3(b.volume),
			Count:  b.count,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, acc.stats
}

// bucketKey derives the sortable bucket key and its display label for a
// UTC-truncated timestamp.
func bucketKey(ts time.Time, granularity Granularity) (key, label string) {
	switch granularity {
	case GranularityWeek:
		sunday := ts.AddDate(0, 0, -int(ts.Weekday()))
		return sunday.Format("2006-01-02"), "Week of " + sunday.Format("Jan 2, 2006")
	case GranularityMonth:
		return ts.Format("2006-01"), ts.Format("January 2006")
	default:
		return ts.Format("2006-01-02"), ts.Format("Jan 2, 2006")
	}
}
