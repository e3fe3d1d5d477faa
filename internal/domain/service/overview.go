package service

import (
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
)

// DefaultMostActiveLimit caps the most-active-wallets list when no limit is
// configured.
const DefaultMostActiveLimit = 10

// ComputeOverview rolls per-wallet metrics up into batch totals and an
// active/inactive split at the fixed activity threshold.
func ComputeOverview(batch []*entity.WalletSnapshot, now time.Time) (entity.OverviewStats, entity.SkipStats) {
	overview := entity.OverviewStats{
		Wallets: make([]entity.WalletWithActivity, 0, len(batch)),
	}
	if len(batch) == 0 {
		return overview, entity.SkipStats{}
	}

	scorer := NewActivityScorer(batch, now)

	var totalVolume, totalBalance, totalIndex float64
	for i, s := range batch {
		txCount, volume, lastActivity := scorer.FactorsAt(i)
		balance := NativeBalance(s.TokenBalances)
		index := scorer.Index(i)

		overview.TotalTransactions += txCount
		totalVolume += volume
		totalBalance += balance
		totalIndex += index

		if index >= ActiveIndexThreshold {
			overview.ActiveWallets++
		} else {
			overview.InactiveWallets++
		}

		overview.Wallets = append(overview.Wallets, entity.WalletWithActivity{
			Address:          s.Address,
			ActivityIndex:    index,
			TransactionCount: txCount,
			TotalVolume:      round3(volume),
			Balance:          round6(balance),
			LastActivityDate: lastActivity,
		})
	}

	n := float64(len(batch))
	overview.WalletCount = len(batch)
	overview.TotalVolume = round3(totalVolume)
	overview.AverageBalance = round6(totalBalance / n)
	overview.AverageActivityIndex = round3(totalIndex / n)
	return overview, scorer.Skips()
}
