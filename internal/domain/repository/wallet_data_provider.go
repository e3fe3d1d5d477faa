package repository

import (
	"context"

	"wallet-activity-analyzer/internal/domain/entity"
)

// WalletDataProvider fetches live wallet data from an external blockchain
// API. Like SnapshotRepository it sits strictly upstream of the analytics
// core.
type WalletDataProvider interface {
	// ResolveAddress validates an address string and returns its
	// checksummed form.
	ResolveAddress(ctx context.Context, input string) (string, error)

	// GetWalletMetadata returns the wallet's balance and on-chain nonce.
	GetWalletMetadata(ctx context.Context, address string) (*entity.WalletMetadata, error)

	// GetTransfers fetches the wallet's asset transfers, both directions,
	// up to the provider's configured cap.
	GetTransfers(ctx context.Context, address string) ([]*entity.Transfer, error)

	// GetTokenBalances fetches the wallet's token balances, including the
	// native-currency entry.
	GetTokenBalances(ctx context.Context, address string) ([]entity.TokenBalance, error)

	// GetOwnedNFTs fetches the wallet's NFT holdings.
	GetOwnedNFTs(ctx context.Context, address string) ([]entity.OwnedNFT, error)
}
