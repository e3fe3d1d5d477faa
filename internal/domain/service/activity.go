package service

import (
	"sort"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
)

// Activity index weights. The four ranked factors plus the absolute recency
// term sum to 1.0.
const (
	weightDecayedFrequency = 0.40
	weightDecayedVolume    = 0.30
	weightTxCount          = 0.15
	weightTotalVolume      = 0.10
	weightRecency          = 0.05
)

// Calibration thresholds for single-wallet (absolute) scoring.
const (
	thresholdDecayedFrequency = 10.0
	thresholdDecayedVolume    = 5.0
	thresholdTxCount          = 50.0
	thresholdTotalVolume      = 10.0
)

// ActiveIndexThreshold splits wallets into active and inactive.
const ActiveIndexThreshold = 0.30

// activityFactors are the raw and decayed per-wallet metrics the activity
// index combines.
type activityFactors struct {
	decayedFrequency float64
	decayedVolume    float64
	txCount          float64
	totalVolume      float64
	lastActivity     *time.Time
}

// computeFactors derives a wallet's scoring factors from its transfer list.
func computeFactors(s *entity.WalletSnapshot, now time.Time) (activityFactors, entity.SkipStats) {
	var f activityFactors
	var skips entity.SkipStats

	decayedFreq, freqSkips := DecayedSum(s.Transfers, now, TransferHalfLifeDays, UnitValue)
	decayedVol, _ := DecayedSum(s.Transfers, now, TransferHalfLifeDays, TransferValue)
	skips.Merge(freqSkips)

	f.decayedFrequency = decayedFreq
	f.decayedVolume = decayedVol
	f.txCount = float64(len(s.Transfers))
	for _, t := range s.Transfers {
		f.totalVolume += t.ValueOrZero()
		if ts, reason := transferTime(t); reason == skipNone {
			if f.lastActivity == nil || ts.After(*f.lastActivity) {
				last := ts
				f.lastActivity = &last
			}
		}
	}
	return f, skips
}

// recencyScore is the absolute exponential-decay recency term, identical in
// both scoring modes.
func (f activityFactors) recencyScore(now time.Time) float64 {
	if f.lastActivity == nil {
		return 0
	}
	ageDays := now.Sub(*f.lastActivity).Hours() / hoursPerDay
	if ageDays < 0 {
		ageDays = 0
	}
	return decayWeight(ageDays, RecencyHalfLifeDays)
}

// absoluteIndex scores a wallet against fixed calibration thresholds. Used
// when there is no peer population to rank against.
func (f activityFactors) absoluteIndex(now time.Time) float64 {
	score := weightDecayedFrequency*clamp01(f.decayedFrequency/thresholdDecayedFrequency) +
		weightDecayedVolume*clamp01(f.decayedVolume/thresholdDecayedVolume) +
		weightTxCount*clamp01(f.txCount/thresholdTxCount) +
		weightTotalVolume*clamp01(f.totalVolume/thresholdTotalVolume) +
		weightRecency*f.recencyScore(now)
	return clamp01(score)
}

// PercentileRank returns the fraction of the population strictly below value.
// Ties do not count as below. A population of one degenerates to 0.5, the
// only unbiased rank with no peers.
func PercentileRank(value float64, sortedPopulation []float64) float64 {
	n := len(sortedPopulation)
	if n <= 1 {
		return 0.5
	}
	below := sort.SearchFloat64s(sortedPopulation, value)
	return float64(below) / float64(n)
}

// ActivityScorer scores every wallet of a batch. Percentile ranking needs the
// whole batch's factor vectors before any single wallet can be scored, so the
// scorer runs a first pass over all snapshots at construction and ranks each
// wallet against the sorted vectors on demand.
type ActivityScorer struct {
	now     time.Time
	factors []activityFactors
	index   map[string]int

	sortedFrequency []float64
	sortedVolume    []float64
	sortedTxCount   []float64
	sortedTotal     []float64

	skips entity.SkipStats
}

// NewActivityScorer runs the factor pass over the batch.
func NewActivityScorer(batch []*entity.WalletSnapshot, now time.Time) *ActivityScorer {
	sc := &ActivityScorer{
		now:     now,
		factors: make([]activityFactors, len(batch)),
		index:   make(map[string]int, len(batch)),
	}
	for i, s := range batch {
		f, skips := computeFactors(s, now)
		sc.factors[i] = f
		sc.index[normalizeAddress(s.Address)] = i
		sc.skips.Merge(skips)

		sc.sortedFrequency = append(sc.sortedFrequency, f.decayedFrequency)
		sc.sortedVolume = append(sc.sortedVolume, f.decayedVolume)
		sc.sortedTxCount = append(sc.sortedTxCount, f.txCount)
		sc.sortedTotal = append(sc.sortedTotal, f.totalVolume)
	}
	sort.Float64s(sc.sortedFrequency)
	sort.Float64s(sc.sortedVolume)
	sort.Float64s(sc.sortedTxCount)
	sort.Float64s(sc.sortedTotal)
	return sc
}

// Skips returns the accumulated skip diagnostics of the factor pass.
func (sc *ActivityScorer) Skips() entity.SkipStats {
	return sc.skips
}

// FactorsAt exposes the scoring inputs of the wallet at position i for
// downstream aggregation.
func (sc *ActivityScorer) FactorsAt(i int) (txCount int, totalVolume float64, lastActivity *time.Time) {
	if i < 0 || i >= len(sc.factors) {
		return 0, 0, nil
	}
	f := sc.factors[i]
	return int(f.txCount), f.totalVolume, f.lastActivity
}

// Index returns the activity index of the wallet at position i, in [0, 1]
// and rounded to 3 decimals. A wallet with zero transfers scores exactly 0.
// Batches of one wallet use absolute thresholds; larger batches rank each of
// the four non-recency factors against the peer population, keeping the
// recency term absolute in both modes.
func (sc *ActivityScorer) Index(i int) float64 {
	if i < 0 || i >= len(sc.factors) {
		return 0
	}
	f := sc.factors[i]
	if f.txCount == 0 {
		return 0
	}
	if len(sc.factors) == 1 {
		return round3(f.absoluteIndex(sc.now))
	}

	score := weightDecayedFrequency*PercentileRank(f.decayedFrequency, sc.sortedFrequency) +
		weightDecayedVolume*PercentileRank(f.decayedVolume, sc.sortedVolume) +
		weightTxCount*PercentileRank(f.txCount, sc.sortedTxCount) +
		weightTotalVolume*PercentileRank(f.totalVolume, sc.sortedTotal) +
		weightRecency*f.recencyScore(sc.now)
	return round3(clamp01(score))
}

// IndexByAddress scores a wallet by address (case-insensitive); 0 when the
// address is not part of the batch.
func (sc *ActivityScorer) IndexByAddress(address string) float64 {
	i, ok := sc.index[normalizeAddress(address)]
	if !ok {
		return 0
	}
	return sc.Index(i)
}

// ActivityIndex scores one wallet against its batch. Convenience wrapper for
// single lookups; batch consumers should hold an ActivityScorer to avoid
// recomputing the factor pass per wallet.
func ActivityIndex(s *entity.WalletSnapshot, batch []*entity.WalletSnapshot, now time.Time) float64 {
	sc := NewActivityScorer(batch, now)
	for i, peer := range batch {
		if entity.SameAddress(peer.Address, s.Address) {
			return sc.Index(i)
		}
	}
	// Not part of the batch: score standalone.
	return NewActivityScorer([]*entity.WalletSnapshot{s}, now).Index(0)
}
