package service

import (
	"testing"

	"wallet-activity-analyzer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOverview(t *testing.T) {
	whale := snapshotWithBalance("0xWhale", "0x1bc16d674ec80000", // 2 ETH
		transferAt("0xwhale", "0xb", 5, daysAgo(1)),
		transferAt("0xc", "0xwhale", 3, daysAgo(2)),
	)
	idle := snapshotWithBalance("0xIdle", "0xde0b6b3a7640000") // 1 ETH

	overview, skips := ComputeOverview([]*entity.WalletSnapshot{whale, idle}, testNow)

	assert.Equal(t, 2, overview.WalletCount)
	assert.Equal(t, 2, overview.TotalTransactions)
	assert.InDelta(t, 8, overview.TotalVolume, 1e-9)
	assert.InDelta(t, 1.5, overview.AverageBalance, 1e-9)
	assert.Equal(t, 2, skips.Processed)
	assert.Zero(t, skips.Skipped())

	require.Len(t, overview.Wallets, 2)
	w, i := overview.Wallets[0], overview.Wallets[1]
	assert.Equal(t, "0xWhale", w.Address)
	assert.Equal(t, 2, w.TransactionCount)
	assert.InDelta(t, 8, w.TotalVolume, 1e-9)
	assert.InDelta(t, 2, w.Balance, 1e-9)
	require.NotNil(t, w.LastActivityDate)
	assert.Equal(t, daysAgo(1), w.LastActivityDate.UTC())

	// With one zero-transfer peer every ranked factor of the whale sits at
	// percentile 0.5, leaving 0.475 plus the one-day recency term.
	assert.InDelta(t, 0.525, w.ActivityIndex, 1e-9)
	assert.Zero(t, i.ActivityIndex)
	assert.Nil(t, i.LastActivityDate)

	assert.Equal(t, 1, overview.ActiveWallets)
	assert.Equal(t, 1, overview.InactiveWallets)
	assert.InDelta(t, 0.2625, overview.AverageActivityIndex, 1e-3)
}

func TestComputeOverview_EmptyBatch(t *testing.T) {
	overview, skips := ComputeOverview(nil, testNow)
	assert.Zero(t, overview.WalletCount)
	assert.Zero(t, overview.AverageBalance)
	assert.Zero(t, overview.AverageActivityIndex)
	assert.NotNil(t, overview.Wallets)
	assert.Empty(t, overview.Wallets)
	assert.Zero(t, skips.Total())
}

func TestComputeOverview_SkipDiagnosticsSurface(t *testing.T) {
	s := snapshotWithBalance("0xa", "0x0",
		transferAt("0xa", "0xb", 1, daysAgo(1)),
		&entity.Transfer{Hash: "0xbad", From: "0xa", To: "0xb"},
	)

	overview, skips := ComputeOverview([]*entity.WalletSnapshot{s}, testNow)
	// The malformed transfer still counts toward the raw transaction count.
	assert.Equal(t, 2, overview.TotalTransactions)
	assert.Equal(t, 1, skips.MissingMetadata)
	assert.Equal(t, 1, skips.Processed)
}
