package service

import (
	"fmt"
	"math/big"
	"testing"

	"wallet-activity-analyzer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawContract(amount float64) *entity.RawContract {
	wei := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18))
	i, _ := wei.Int(nil)
	return &entity.RawContract{Value: fmt.Sprintf("0x%x", i), Address: "0xtoken"}
}

func TestAnalyzePatterns_Directions(t *testing.T) {
	batch := []*entity.WalletSnapshot{
		{Address: "0xA", Transfers: []*entity.Transfer{
			transferAt("0xa", "0xb", 5, daysAgo(1)),        // outgoing, internal
			transferAt("0xstranger", "0xa", 3, daysAgo(2)), // incoming, external
		}},
		{Address: "0xB", Transfers: []*entity.Transfer{
			transferAt("0xb", "0xoutside", 2, daysAgo(3)), // outgoing, external
		}},
	}

	p := AnalyzePatterns(batch)

	assert.Equal(t, 1, p.IncomingCount)
	assert.Equal(t, 2, p.OutgoingCount)
	assert.InDelta(t, 3, p.IncomingVolume, 1e-9)
	assert.InDelta(t, 7, p.OutgoingVolume, 1e-9)
	assert.InDelta(t, 3, p.AverageIncoming, 1e-9)
	assert.InDelta(t, 3.5, p.AverageOutgoing, 1e-9)

	assert.Equal(t, 1, p.InternalCount)
	assert.Equal(t, 2, p.ExternalCount)
	assert.InDelta(t, 5, p.InternalVolume, 1e-9)
	assert.InDelta(t, 5, p.ExternalVolume, 1e-9)

	// Both partitions independently cover the batch's total volume.
	total := 5.0 + 3.0 + 2.0
	assert.InDelta(t, total, p.IncomingVolume+p.OutgoingVolume, 1e-9)
	assert.InDelta(t, total, p.InternalVolume+p.ExternalVolume, 1e-9)
}

func TestAnalyzePatterns_MissingEndpointsAndEmptyBatch(t *testing.T) {
	// Missing from/to compare as empty strings and never match a wallet.
	batch := []*entity.WalletSnapshot{
		{Address: "0xa", Transfers: []*entity.Transfer{
			{Hash: "0x1", Metadata: &entity.TransferMetadata{BlockTimestamp: daysAgo(1).Format("2006-01-02T15:04:05Z")}},
		}},
	}

	p := AnalyzePatterns(batch)
	assert.Zero(t, p.IncomingCount)
	assert.Zero(t, p.OutgoingCount)
	assert.Equal(t, 1, p.ExternalCount)

	// Zero-denominator averages stay 0.
	empty := AnalyzePatterns(nil)
	assert.Zero(t, empty.AverageIncoming)
	assert.Zero(t, empty.AverageOutgoing)
}

func TestAnalyzeFlows(t *testing.T) {
	transfers := []*entity.Transfer{
		transferAt("0xa", "0xb", 5, daysAgo(1)),
		transferAt("0xc", "0xa", 2, daysAgo(2)),
	}
	transfers[0].RawContract = &entity.RawContract{Value: "0x0", Address: "0xTOKEN1"}
	transfers[1].RawContract = &entity.RawContract{Value: "0x0", Address: "0xtoken1"}

	flows := AnalyzeFlows([]*entity.WalletSnapshot{{Address: "0xA", Transfers: transfers}})
	require.Len(t, flows, 1)

	f := flows[0]
	assert.InDelta(t, 2, f.In, 1e-9)
	assert.InDelta(t, 5, f.Out, 1e-9)
	assert.InDelta(t, -3, f.Net, 1e-9)
	assert.Equal(t, 2, f.UniqueTransactions)
	// Contract addresses dedupe case-insensitively.
	assert.Equal(t, 1, f.UniqueTokenContracts)
}

func TestAnalyzeFlows_TokenTransfersExcludedFromSums(t *testing.T) {
	native := transferAt("0xa", "0xb", 5, daysAgo(1))
	native.Category = "external"
	// Stablecoin transfer: value is in token units, not native currency.
	usdt := transferAt("0xa", "0xc", 1000000, daysAgo(2))
	usdt.Category = "erc20"
	usdt.RawContract = &entity.RawContract{Value: "0x0", Address: "0xtether"}
	nft := transferAt("0xd", "0xa", 1, daysAgo(3))
	nft.Category = "erc721"

	flows := AnalyzeFlows([]*entity.WalletSnapshot{{Address: "0xA", Transfers: []*entity.Transfer{native, usdt, nft}}})
	require.Len(t, flows, 1)

	f := flows[0]
	assert.InDelta(t, 5, f.Out, 1e-9)
	assert.Zero(t, f.In)
	assert.InDelta(t, -5, f.Net, 1e-9)

	// Non-external transfers still count toward uniqueness.
	assert.Equal(t, 3, f.UniqueTransactions)
	assert.Equal(t, 1, f.UniqueTokenContracts)
}

func TestAnalyzeGas(t *testing.T) {
	low := transferAt("0xa", "0xb", 5, daysAgo(1))
	low.RawContract = rawContract(5.2)
	high := transferAt("0xa", "0xc", 1, daysAgo(2))
	high.RawContract = rawContract(2.5)
	negative := transferAt("0xa", "0xd", 9, daysAgo(3))
	negative.RawContract = rawContract(1) // raw below value floors at 0
	noRaw := transferAt("0xa", "0xe", 4, daysAgo(4))

	batch := []*entity.WalletSnapshot{{Address: "0xa", Transfers: []*entity.Transfer{low, high, negative, noRaw}}}
	analysis := AnalyzeGas(batch)

	require.NotNil(t, analysis.HighestGas)
	assert.Equal(t, high.Hash, analysis.HighestGas.Hash)
	assert.Equal(t, "0xa", analysis.HighestGas.From)
	assert.Equal(t, "0xc", analysis.HighestGas.To)
	assert.InDelta(t, 1.5, analysis.HighestGas.Estimate, 1e-6)

	assert.InDelta(t, 0.2+1.5, analysis.TotalEstimate, 1e-6)
	assert.InDelta(t, 1.7/4, analysis.AverageEstimate, 1e-6)
}

func TestAnalyzeGas_EmptyBatch(t *testing.T) {
	analysis := AnalyzeGas(nil)
	assert.Nil(t, analysis.HighestGas)
	assert.Zero(t, analysis.TotalEstimate)
	assert.Zero(t, analysis.AverageEstimate)
}
