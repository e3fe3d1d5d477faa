package service

import (
	"sort"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
)

// DefaultCollectionLimit caps the top-collections and spam-contract lists.
const DefaultCollectionLimit = 10

// DefaultAcquisitionLimit caps the recent-acquisitions list.
const DefaultAcquisitionLimit = 10

// AnalyzeNFTs derives collection rankings, adoption, spam and diversity
// metrics over the batch's NFT holdings. Every list in the result is non-nil
// even for a batch with no holdings.
func AnalyzeNFTs(batch []*entity.WalletSnapshot, collectionLimit, acquisitionLimit int) entity.NFTAnalytics {
	if collectionLimit <= 0 {
		collectionLimit = DefaultCollectionLimit
	}
	if acquisitionLimit <= 0 {
		acquisitionLimit = DefaultAcquisitionLimit
	}

	type collection struct {
		stats   entity.NFTCollectionStats
		holders map[string]struct{}
	}
	collections := make(map[string]*collection)
	acquisitions := make([]entity.NFTAcquisition, 0)

	totalItems := 0
	spamItems := 0
	erc721 := 0
	erc1155 := 0
	holderCount := 0
	contractsAcrossWallets := 0

	for _, s := range batch {
		walletContracts := make(map[string]struct{})
		for _, nft := range s.NFTHoldings {
			totalItems++
			addr := normalizeAddress(nft.Contract.Address)
			walletContracts[addr] = struct{}{}

			c, ok := collections[addr]
			if !ok {
				c = &collection{
					stats: entity.NFTCollectionStats{
						ContractAddress: nft.Contract.Address,
						Name:            nft.Contract.Name,
						TokenType:       nft.Contract.TokenType,
						IsSpam:          nft.Contract.IsSpam,
					},
					holders: make(map[string]struct{}),
				}
				collections[addr] = c
			}
			c.stats.ItemCount++
			c.holders[normalizeAddress(s.Address)] = struct{}{}
			if c.stats.FloorPrice == nil && nft.Contract.OpenSeaMetadata != nil {
				c.stats.FloorPrice = nft.Contract.OpenSeaMetadata.FloorPrice
			}

			if nft.Contract.IsSpam {
				spamItems++
			}
			switch nft.Contract.TokenType {
			case "ERC721":
				erc721++
			case "ERC1155":
				erc1155++
			}

			if acquired, ok := nftAcquiredAt(nft); ok {
				acquisitions = append(acquisitions, entity.NFTAcquisition{
					WalletAddress:   s.Address,
					ContractAddress: nft.Contract.Address,
					TokenID:         nft.TokenID,
					TokenType:       nft.Contract.TokenType,
					AcquiredAt:      acquired,
				})
			}
		}
		if len(s.NFTHoldings) > 0 {
			holderCount++
		}
		contractsAcrossWallets += len(walletContracts)
	}

	ranked := make([]entity.NFTCollectionStats, 0, len(collections))
	spam := make([]entity.NFTCollectionStats, 0)
	for _, c := range collections {
		c.stats.HolderCount = len(c.holders)
		ranked = append(ranked, c.stats)
		if c.stats.IsSpam {
			spam = append(spam, c.stats)
		}
	}
	byItemCount := func(list []entity.NFTCollectionStats) func(i, j int) bool {
		return func(i, j int) bool {
			if list[i].ItemCount != list[j].ItemCount {
				return list[i].ItemCount > list[j].ItemCount
			}
			return list[i].ContractAddress < list[j].ContractAddress
		}
	}
	sort.Slice(ranked, byItemCount(ranked))
	sort.Slice(spam, byItemCount(spam))
	if len(ranked) > collectionLimit {
		ranked = ranked[:collectionLimit]
	}
	if len(spam) > collectionLimit {
		spam = spam[:collectionLimit]
	}

	sort.SliceStable(acquisitions, func(i, j int) bool {
		return acquisitions[i].AcquiredAt.After(acquisitions[j].AcquiredAt)
	})
	if len(acquisitions) > acquisitionLimit {
		acquisitions = acquisitions[:acquisitionLimit]
	}

	return entity.NFTAnalytics{
		TopCollections: ranked,
		Adoption: entity.NFTAdoption{
			HolderCount:     holderCount,
			AdoptionRate:    round3(safeDiv(float64(holderCount), float64(len(batch))) * 100),
			AverageHoldings: round3(safeDiv(float64(totalItems), float64(holderCount))),
			TotalItems:      totalItems,
		},
		Spam: entity.NFTSpamAnalysis{
			SpamCount:        spamItems,
			SpamRate:         round3(safeDiv(float64(spamItems), float64(totalItems)) * 100),
			TopSpamContracts: spam,
		},
		RecentAcquisitions: acquisitions,
		Diversity: entity.NFTDiversity{
			UniqueContracts:    len(collections),
			ContractsPerWallet: round3(safeDiv(float64(contractsAcrossWallets), float64(len(batch)))),
			ERC721Count:        erc721,
			ERC1155Count:       erc1155,
		},
	}
}

// nftAcquiredAt parses the acquisition timestamp of a holding; holdings with
// a missing or unparsable timestamp are excluded from the recency list.
func nftAcquiredAt(nft entity.OwnedNFT) (time.Time, bool) {
	if nft.AcquiredAt == nil || nft.AcquiredAt.BlockTimestamp == nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, *nft.AcquiredAt.BlockTimestamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
