package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
	"wallet-activity-analyzer/internal/domain/repository"
	"wallet-activity-analyzer/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4JSnapshotRepository materializes wallet snapshots from the transfer
// graph an upstream indexer maintains. Balance and NFT data do not live in
// the graph, so snapshots built here carry transfers only.
type Neo4JSnapshotRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JSnapshotRepository creates a new Neo4J snapshot repository
func NewNeo4JSnapshotRepository(client *Neo4JClient, logger *logger.Logger) repository.SnapshotRepository {
	return &Neo4JSnapshotRepository{
		client: client,
		logger: logger.WithComponent("neo4j-snapshot-repo"),
	}
}

// GetWalletSnapshot loads one wallet's transfer history as a snapshot.
func (r *Neo4JSnapshotRepository) GetWalletSnapshot(ctx context.Context, address string) (*entity.WalletSnapshot, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (from:Wallet)-[t:SENT_TO]->(to:Wallet)
		WHERE toLower(from.address) = toLower($address)
		   OR toLower(to.address) = toLower($address)
		RETURN t.tx_hash, from.address, to.address, t.value, t.timestamp
		ORDER BY t.timestamp DESC
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, query, map[string]interface{}{"address": address})
		if err != nil {
			return nil, err
		}
		return records.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet snapshot: %w", err)
	}

	records := result.([]*neo4j.Record)
	transfers := make([]*entity.Transfer, 0, len(records))
	for _, record := range records {
		transfers = append(transfers, transferFromRecord(record))
	}

	r.logger.Debug("Materialized snapshot from graph",
		zap.String("address", address),
		zap.Int("transfers", len(transfers)))

	return &entity.WalletSnapshot{
		Address:       address,
		Transfers:     transfers,
		TokenBalances: []entity.TokenBalance{},
		NFTHoldings:   []entity.OwnedNFT{},
	}, nil
}

// ListTrackedAddresses returns up to limit addresses, most recently seen
// first.
func (r *Neo4JSnapshotRepository) ListTrackedAddresses(ctx context.Context, limit int) ([]string, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (w:Wallet)
		RETURN w.address
		ORDER BY w.last_seen DESC
		LIMIT $limit
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, query, map[string]interface{}{"limit": limit})
		if err != nil {
			return nil, err
		}
		return records.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked addresses: %w", err)
	}

	records := result.([]*neo4j.Record)
	addresses := make([]string, 0, len(records))
	for _, record := range records {
		if address, ok := record.Values[0].(string); ok {
			addresses = append(addresses, address)
		}
	}
	return addresses, nil
}

// transferFromRecord maps a graph relationship onto a Transfer, leaving the
// metadata container nil when the relationship has no timestamp so the core's
// skip accounting sees the absence.
func transferFromRecord(record *neo4j.Record) *entity.Transfer {
	values := record.Values

	t := &entity.Transfer{Category: "external"}
	if hash, ok := values[0].(string); ok {
		t.Hash = hash
	}
	if from, ok := values[1].(string); ok {
		t.From = from
	}
	if to, ok := values[2].(string); ok {
		t.To = to
	}
	if raw, ok := values[3].(string); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			value := v
			t.Value = &value
		}
	}
	if ts, ok := values[4].(time.Time); ok {
		t.Metadata = &entity.TransferMetadata{
			BlockTimestamp: ts.UTC().Format(time.RFC3339),
		}
	}
	return t
}
