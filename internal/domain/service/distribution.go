package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
)

// DefaultWhaleLimit caps the whale ranking when no limit is requested.
const DefaultWhaleLimit = 10

// Concentration tier thresholds on the Gini coefficient. Fixed design
// constants, not configurable.
const (
	giniVeryHigh = 0.7
	giniHigh     = 0.5
	giniModerate = 0.35
	giniLow      = 0.2
)

// Gini computes the Gini coefficient of a balance vector via the sorted-index
// formula, clamped to [0, 1]. Empty and all-zero vectors yield 0.
func Gini(balances []float64) float64 {
	n := len(balances)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), balances...)
	sort.Float64s(sorted)

	var total, weighted float64
	for i, b := range sorted {
		total += b
		weighted += float64(i+1) * b
	}
	if total == 0 {
		return 0
	}
	g := 2*weighted/(float64(n)*total) - float64(n+1)/float64(n)
	return clamp01(g)
}

// Herfindahl computes the Herfindahl-Hirschman index, 10000 times the sum of
// squared balance shares. 0 when the vector totals 0.
func Herfindahl(balances []float64) float64 {
	var total float64
	for _, b := range balances {
		total += b
	}
	if total == 0 {
		return 0
	}
	var hhi float64
	for _, b := range balances {
		share := b / total
		hhi += share * share
	}
	return hhi * 10000
}

// TopShare returns the share of total balance held by the top ceil(n*fraction)
// wallets, never fewer than one. 0 for an empty or zero-total vector.
func TopShare(balances []float64, fraction float64) float64 {
	n := len(balances)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), balances...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	var total float64
	for _, b := range sorted {
		total += b
	}
	if total == 0 {
		return 0
	}

	take := int(math.Ceil(float64(n) * fraction))
	if take < 1 {
		take = 1
	}
	if take > n {
		take = n
	}
	var top float64
	for _, b := range sorted[:take] {
		top += b
	}
	return top / total
}

// ConcentrationLevel maps a Gini value onto the five-tier label.
func ConcentrationLevel(gini float64) string {
	switch {
	case gini >= giniVeryHigh:
		return "Very High"
	case gini >= giniHigh:
		return "High"
	case gini >= giniModerate:
		return "Moderate"
	case gini >= giniLow:
		return "Low"
	default:
		return "Very Low"
	}
}

// DescribeBalances computes descriptive statistics over a balance vector:
// total, mean, median (average of the two middle elements on even counts),
// extrema, and population standard deviation.
func DescribeBalances(balances []float64) entity.BalanceStats {
	n := len(balances)
	if n == 0 {
		return entity.BalanceStats{}
	}
	sorted := append([]float64(nil), balances...)
	sort.Float64s(sorted)

	var total float64
	for _, b := range sorted {
		total += b
	}
	mean := total / float64(n)

	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	var variance float64
	for _, b := range sorted {
		d := b - mean
		variance += d * d
	}
	variance /= float64(n)

	return entity.BalanceStats{
		Total:  round6(total),
		Mean:   round6(mean),
		Median: round6(median),
		Max:    round6(sorted[n-1]),
		Min:    round6(sorted[0]),
		StdDev: round6(math.Sqrt(variance)),
	}
}

// histogramSchemes are the fixed bucket-boundary schemes, selected by the
// batch's maximum balance. Each partitions [0, inf) into half-open ranges
// with an open-ended final range.
var histogramSchemes = []struct {
	maxBelow   float64
	boundaries []float64
}{
	{0.1, []float64{0, 0.001, 0.01, 0.05}},
	{1, []float64{0, 0.01, 0.1, 0.5}},
	{10, []float64{0, 0.1, 1, 5}},
	{math.Inf(1), []float64{0, 1, 10, 50, 100}},
}

// BuildHistogram buckets a balance vector into the scheme matching its
// maximum value. Every balance lands in exactly one bucket; percentages are
// of wallet count.
func BuildHistogram(balances []float64) []entity.BalanceBucket {
	maxBalance := 0.0
	for _, b := range balances {
		if b > maxBalance {
			maxBalance = b
		}
	}

	boundaries := histogramSchemes[len(histogramSchemes)-1].boundaries
	for _, scheme := range histogramSchemes {
		if maxBalance < scheme.maxBelow {
			boundaries = scheme.boundaries
			break
		}
	}

	buckets := make([]entity.BalanceBucket, len(boundaries))
	for i, min := range boundaries {
		max := -1.0
		label := formatBound(min) + "+"
		if i < len(boundaries)-1 {
			max = boundaries[i+1]
			label = fmt.Sprintf("%s - %s", formatBound(min), formatBound(max))
		}
		buckets[i] = entity.BalanceBucket{Range: label, Min: min, Max: max}
	}

	for _, b := range balances {
		i := sort.SearchFloat64s(boundaries, b)
		// SearchFloat64s finds the insertion point; a balance equal to a
		// boundary belongs to the bucket opening at that boundary.
		if i == len(boundaries) || boundaries[i] != b {
			i--
		}
		if i < 0 {
			i = 0
		}
		buckets[i].Count++
		buckets[i].TotalBalance += b
	}

	for i := range buckets {
		buckets[i].Percentage = round3(safeDiv(float64(buckets[i].Count), float64(len(balances))) * 100)
		buckets[i].TotalBalance = round6(buckets[i].TotalBalance)
	}
	return buckets
}

func formatBound(v float64) string {
	return fmt.Sprintf("%g", v)
}

// RankWhales sorts the batch's wallets by descending native balance and
// reports each whale's 1-based rank, share of total balance, activity index
// and transaction count, truncated to limit (DefaultWhaleLimit when <= 0).
func RankWhales(batch []*entity.WalletSnapshot, now time.Time, limit int) []entity.WhaleWallet {
	if limit <= 0 {
		limit = DefaultWhaleLimit
	}
	scorer := NewActivityScorer(batch, now)

	type holder struct {
		pos     int
		balance float64
	}
	holders := make([]holder, len(batch))
	var total float64
	for i, s := range batch {
		b := NativeBalance(s.TokenBalances)
		holders[i] = holder{pos: i, balance: b}
		total += b
	}
	sort.SliceStable(holders, func(i, j int) bool { return holders[i].balance > holders[j].balance })

	if len(holders) > limit {
		holders = holders[:limit]
	}
	whales := make([]entity.WhaleWallet, 0, len(holders))
	for rank, h := range holders {
		txCount, _, _ := scorer.FactorsAt(h.pos)
		whales = append(whales, entity.WhaleWallet{
			Rank:             rank + 1,
			Address:          batch[h.pos].Address,
			Balance:          round6(h.balance),
			Share:            round3(safeDiv(h.balance, total) * 100),
			ActivityIndex:    scorer.Index(h.pos),
			TransactionCount: txCount,
		})
	}
	return whales
}

// AnalyzeDistribution composes concentration metrics, descriptive statistics,
// the dynamic histogram and the whale ranking over the batch's native
// balances.
func AnalyzeDistribution(batch []*entity.WalletSnapshot, now time.Time, whaleLimit int) entity.TokenDistributionAnalysis {
	balances := make([]float64, len(batch))
	for i, s := range batch {
		balances[i] = NativeBalance(s.TokenBalances)
	}

	gini := Gini(balances)
	return entity.TokenDistributionAnalysis{
		Distribution: BuildHistogram(balances),
		Whales:       RankWhales(batch, now, whaleLimit),
		Concentration: entity.ConcentrationMetrics{
			Gini:          round3(gini),
			HHI:           round3(Herfindahl(balances)),
			Top10Percent:  round3(TopShare(balances, 0.1) * 100),
			Top20Percent:  round3(TopShare(balances, 0.2) * 100),
			Concentration: ConcentrationLevel(gini),
		},
		BalanceStats: DescribeBalances(balances),
	}
}
