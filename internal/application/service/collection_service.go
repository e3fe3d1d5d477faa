package service

import (
	"context"
	"fmt"

	"wallet-activity-analyzer/internal/domain/entity"
	"wallet-activity-analyzer/internal/domain/repository"
	"wallet-activity-analyzer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// SnapshotCollectionService materializes wallet snapshots before analysis.
// It prefers the live data provider and falls back to the graph repository
// when no provider is configured. The analytics core only ever sees the
// finished batch.
type SnapshotCollectionService struct {
	provider repository.WalletDataProvider
	repo     repository.SnapshotRepository
	logger   *logger.Logger
}

// NewSnapshotCollectionService creates a new snapshot collection service
func NewSnapshotCollectionService(
	provider repository.WalletDataProvider,
	repo repository.SnapshotRepository,
	logger *logger.Logger,
) *SnapshotCollectionService {
	return &SnapshotCollectionService{
		provider: provider,
		repo:     repo,
		logger:   logger.WithComponent("snapshot-collection"),
	}
}

// CollectBatch materializes snapshots for the given addresses. Wallets that
// fail to fetch are logged and dropped rather than failing the whole batch;
// an error is returned only when no snapshot could be materialized at all.
func (s *SnapshotCollectionService) CollectBatch(ctx context.Context, addresses []string) ([]*entity.WalletSnapshot, error) {
	batch := make([]*entity.WalletSnapshot, 0, len(addresses))
	for _, address := range addresses {
		snapshot, err := s.collectOne(ctx, address)
		if err != nil {
			s.logger.Warn("Failed to materialize snapshot, dropping wallet",
				zap.String("address", address),
				zap.Error(err))
			continue
		}
		batch = append(batch, snapshot)
	}
	if len(batch) == 0 && len(addresses) > 0 {
		return nil, fmt.Errorf("no snapshot could be materialized for %d addresses", len(addresses))
	}
	return batch, nil
}

func (s *SnapshotCollectionService) collectOne(ctx context.Context, address string) (*entity.WalletSnapshot, error) {
	if s.provider == nil {
		if s.repo == nil {
			return nil, fmt.Errorf("no snapshot source configured")
		}
		return s.repo.GetWalletSnapshot(ctx, address)
	}

	resolved, err := s.provider.ResolveAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve address: %w", err)
	}

	transfers, err := s.provider.GetTransfers(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transfers: %w", err)
	}
	balances, err := s.provider.GetTokenBalances(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token balances: %w", err)
	}
	nfts, err := s.provider.GetOwnedNFTs(ctx, resolved)
	if err != nil {
		// NFT coverage is best-effort; a wallet without NFT data still has
		// transfer and balance analytics.
		s.logger.Warn("Failed to fetch NFT holdings",
			zap.String("address", resolved),
			zap.Error(err))
		nfts = []entity.OwnedNFT{}
	}

	s.logger.Debug("Materialized snapshot",
		zap.String("address", resolved),
		zap.Int("transfers", len(transfers)),
		zap.Int("token_balances", len(balances)),
		zap.Int("nfts", len(nfts)))

	return &entity.WalletSnapshot{
		Address:       resolved,
		Transfers:     transfers,
		TokenBalances: balances,
		NFTHoldings:   nfts,
	}, nil
}
