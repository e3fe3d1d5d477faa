package repository

import (
	"context"

	"wallet-activity-analyzer/internal/domain/entity"
)

// SnapshotRepository materializes wallet snapshots from an indexed store.
// It is an upstream collaborator: the analytics core never calls it, it only
// consumes the snapshots it produces.
type SnapshotRepository interface {
	// GetWalletSnapshot loads one wallet's transfer history as a snapshot.
	GetWalletSnapshot(ctx context.Context, address string) (*entity.WalletSnapshot, error)

	// ListTrackedAddresses returns up to limit wallet addresses known to the
	// store, most recently active first.
	ListTrackedAddresses(ctx context.Context, limit int) ([]string, error)
}
