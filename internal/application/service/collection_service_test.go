package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wallet-activity-analyzer/internal/domain/entity"
	"wallet-activity-analyzer/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	failResolve map[string]bool
	failNFTs    bool
}

func (f *fakeProvider) ResolveAddress(_ context.Context, input string) (string, error) {
	if f.failResolve[input] {
		return "", errors.New("invalid address")
	}
	return strings.ToLower(input), nil
}

func (f *fakeProvider) GetWalletMetadata(context.Context, string) (*entity.WalletMetadata, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProvider) GetTransfers(_ context.Context, address string) ([]*entity.Transfer, error) {
	return []*entity.Transfer{{Hash: "0x1", From: address, To: "0xpeer"}}, nil
}

func (f *fakeProvider) GetTokenBalances(_ context.Context, address string) ([]entity.TokenBalance, error) {
	return []entity.TokenBalance{{TokenBalance: "0x0"}}, nil
}

func (f *fakeProvider) GetOwnedNFTs(_ context.Context, address string) ([]entity.OwnedNFT, error) {
	if f.failNFTs {
		return nil, errors.New("nft api unavailable")
	}
	return []entity.OwnedNFT{}, nil
}

type fakeRepository struct {
	snapshots map[string]*entity.WalletSnapshot
}

func (f *fakeRepository) GetWalletSnapshot(_ context.Context, address string) (*entity.WalletSnapshot, error) {
	s, ok := f.snapshots[strings.ToLower(address)]
	if !ok {
		return nil, errors.New("wallet not found")
	}
	return s, nil
}

func (f *fakeRepository) ListTrackedAddresses(_ context.Context, limit int) ([]string, error) {
	addresses := make([]string, 0, len(f.snapshots))
	for a := range f.snapshots {
		addresses = append(addresses, a)
	}
	return addresses, nil
}

func noopLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func TestCollectBatch_ProviderPath(t *testing.T) {
	svc := NewSnapshotCollectionService(&fakeProvider{}, nil, noopLogger())

	batch, err := svc.CollectBatch(context.Background(), []string{"0xAlpha", "0xBeta"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "0xalpha", batch[0].Address)
	assert.Len(t, batch[0].Transfers, 1)
	assert.NotNil(t, batch[0].NFTHoldings)
}

func TestCollectBatch_DropsFailingWallets(t *testing.T) {
	provider := &fakeProvider{failResolve: map[string]bool{"bad": true}}
	svc := NewSnapshotCollectionService(provider, nil, noopLogger())

	batch, err := svc.CollectBatch(context.Background(), []string{"0xAlpha", "bad"})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "0xalpha", batch[0].Address)
}

func TestCollectBatch_AllWalletsFail(t *testing.T) {
	provider := &fakeProvider{failResolve: map[string]bool{"bad1": true, "bad2": true}}
	svc := NewSnapshotCollectionService(provider, nil, noopLogger())

	batch, err := svc.CollectBatch(context.Background(), []string{"bad1", "bad2"})
	assert.Error(t, err)
	assert.Nil(t, batch)
}

func TestCollectBatch_EmptyAddressList(t *testing.T) {
	svc := NewSnapshotCollectionService(&fakeProvider{}, nil, noopLogger())

	batch, err := svc.CollectBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestCollectBatch_NFTFailureIsBestEffort(t *testing.T) {
	svc := NewSnapshotCollectionService(&fakeProvider{failNFTs: true}, nil, noopLogger())

	batch, err := svc.CollectBatch(context.Background(), []string{"0xAlpha"})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Empty(t, batch[0].NFTHoldings)
	assert.Len(t, batch[0].Transfers, 1)
}

func TestCollectBatch_RepositoryFallback(t *testing.T) {
	repo := &fakeRepository{snapshots: map[string]*entity.WalletSnapshot{
		"0xalpha": {Address: "0xalpha"},
	}}
	svc := NewSnapshotCollectionService(nil, repo, noopLogger())

	batch, err := svc.CollectBatch(context.Background(), []string{"0xAlpha"})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "0xalpha", batch[0].Address)
}

func TestCollectBatch_NoSourceConfigured(t *testing.T) {
	svc := NewSnapshotCollectionService(nil, nil, noopLogger())

	batch, err := svc.CollectBatch(context.Background(), []string{"0xAlpha"})
	assert.Error(t, err)
	assert.Nil(t, batch)
}
