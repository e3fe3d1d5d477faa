package service

import (
	"testing"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownedNFT(contract, name, tokenType, tokenID string, spam bool, acquired *time.Time) entity.OwnedNFT {
	nft := entity.OwnedNFT{
		Contract: entity.NFTContract{
			Address:   contract,
			Name:      name,
			TokenType: tokenType,
			IsSpam:    spam,
		},
		TokenID: tokenID,
	}
	if acquired != nil {
		ts := acquired.UTC().Format(time.RFC3339)
		nft.AcquiredAt = &entity.NFTAcquired{BlockTimestamp: &ts}
	}
	return nft
}

func nftTestBatch() []*entity.WalletSnapshot {
	older := testNow.AddDate(0, -2, 0)
	newer := testNow.AddDate(0, 0, -3)
	floor := 1.5

	punk1 := ownedNFT("0xPunks", "Punks", "ERC721", "1", false, &older)
	punk1.Contract.OpenSeaMetadata = &entity.OpenSeaMetadata{FloorPrice: &floor}
	punk2 := ownedNFT("0xpunks", "Punks", "ERC721", "2", false, nil)
	spamDrop := ownedNFT("0xSpamDrop", "FreeMint", "ERC1155", "777", true, &newer)

	return []*entity.WalletSnapshot{
		{Address: "0xAlice", NFTHoldings: []entity.OwnedNFT{punk1, punk2, spamDrop}},
		{Address: "0xBob", NFTHoldings: []entity.OwnedNFT{ownedNFT("0xPunks", "Punks", "ERC721", "9", false, nil)}},
		{Address: "0xCarol"},
	}
}

func TestAnalyzeNFTs(t *testing.T) {
	result := AnalyzeNFTs(nftTestBatch(), 0, 0)

	require.Len(t, result.TopCollections, 2)
	punks := result.TopCollections[0]
	assert.Equal(t, "0xPunks", punks.ContractAddress)
	assert.Equal(t, 3, punks.ItemCount)
	assert.Equal(t, 2, punks.HolderCount)
	assert.False(t, punks.IsSpam)
	require.NotNil(t, punks.FloorPrice)
	assert.InDelta(t, 1.5, *punks.FloorPrice, 1e-9)
	assert.Equal(t, "0xSpamDrop", result.TopCollections[1].ContractAddress)

	assert.Equal(t, 2, result.Adoption.HolderCount)
	assert.Equal(t, 4, result.Adoption.TotalItems)
	assert.InDelta(t, 66.667, result.Adoption.AdoptionRate, 1e-9)
	assert.InDelta(t, 2, result.Adoption.AverageHoldings, 1e-9)

	assert.Equal(t, 1, result.Spam.SpamCount)
	assert.InDelta(t, 25, result.Spam.SpamRate, 1e-9)
	require.Len(t, result.Spam.TopSpamContracts, 1)
	assert.Equal(t, "0xSpamDrop", result.Spam.TopSpamContracts[0].ContractAddress)

	// Only dated holdings appear, newest first.
	require.Len(t, result.RecentAcquisitions, 2)
	assert.Equal(t, "0xSpamDrop", result.RecentAcquisitions[0].ContractAddress)
	assert.Equal(t, "0xAlice", result.RecentAcquisitions[0].WalletAddress)
	assert.Equal(t, "0xPunks", result.RecentAcquisitions[1].ContractAddress)
	assert.True(t, result.RecentAcquisitions[0].AcquiredAt.After(result.RecentAcquisitions[1].AcquiredAt))

	assert.Equal(t, 2, result.Diversity.UniqueContracts)
	assert.InDelta(t, 1, result.Diversity.ContractsPerWallet, 1e-9)
	assert.Equal(t, 3, result.Diversity.ERC721Count)
	assert.Equal(t, 1, result.Diversity.ERC1155Count)
}

func TestAnalyzeNFTs_Limits(t *testing.T) {
	result := AnalyzeNFTs(nftTestBatch(), 1, 1)
	require.Len(t, result.TopCollections, 1)
	assert.Equal(t, "0xPunks", result.TopCollections[0].ContractAddress)
	require.Len(t, result.RecentAcquisitions, 1)
	assert.Equal(t, "0xSpamDrop", result.RecentAcquisitions[0].ContractAddress)
}

func TestAnalyzeNFTs_EmptyBatch(t *testing.T) {
	result := AnalyzeNFTs(nil, 0, 0)
	assert.NotNil(t, result.TopCollections)
	assert.Empty(t, result.TopCollections)
	assert.NotNil(t, result.Spam.TopSpamContracts)
	assert.NotNil(t, result.RecentAcquisitions)
	assert.Zero(t, result.Adoption.AdoptionRate)
	assert.Zero(t, result.Spam.SpamRate)
	assert.Zero(t, result.Diversity.ContractsPerWallet)
}
