package main

import (
	"context"
	"testing"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
	"wallet-activity-analyzer/internal/infrastructure/config"
	"wallet-activity-analyzer/internal/infrastructure/logger"
	"wallet-activity-analyzer/internal/infrastructure/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingAnalytics captures the size of every analyzed batch.
type recordingAnalytics struct {
	batches chan int
}

func (r *recordingAnalytics) Analyze(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.AnalyticsPayload, error) {
	r.batches <- len(batch)
	return &entity.AnalyticsPayload{GeneratedAt: now}, nil
}

func (r *recordingAnalytics) Overview(context.Context, []*entity.WalletSnapshot, time.Time) (*entity.OverviewStats, error) {
	return &entity.OverviewStats{}, nil
}

func (r *recordingAnalytics) TransactionInsights(context.Context, []*entity.WalletSnapshot, time.Time) (*entity.TransactionInsights, error) {
	return &entity.TransactionInsights{}, nil
}

func (r *recordingAnalytics) TokenDistribution(context.Context, []*entity.WalletSnapshot, time.Time) (*entity.TokenDistributionAnalysis, error) {
	return &entity.TokenDistributionAnalysis{}, nil
}

func (r *recordingAnalytics) NFTAnalytics(context.Context, []*entity.WalletSnapshot) (*entity.NFTAnalytics, error) {
	return &entity.NFTAnalytics{}, nil
}

func newLoopFixture(batchSize int, window time.Duration) (*config.Config, *messaging.NATSPublisher, *recordingAnalytics) {
	cfg := &config.Config{}
	cfg.App.BatchSize = batchSize
	cfg.App.BatchWindow = window

	log := &logger.Logger{Logger: zap.NewNop()}
	// Never connected: publishing degrades to a no-op drop.
	publisher := messaging.NewNATSPublisher(&cfg.NATS, log)

	return cfg, publisher, &recordingAnalytics{batches: make(chan int, 8)}
}

func waitForBatch(t *testing.T, rec *recordingAnalytics) int {
	t.Helper()
	select {
	case n := <-rec.batches:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no batch was analyzed in time")
		return 0
	}
}

func TestProcessSnapshots_FlushesWhenBatchFull(t *testing.T) {
	cfg, publisher, rec := newLoopFixture(2, time.Hour)
	msgChan := make(chan *entity.WalletSnapshot, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		processSnapshots(ctx, msgChan, rec, publisher, zap.NewNop(), cfg)
		close(done)
	}()

	msgChan <- &entity.WalletSnapshot{Address: "0xa"}
	msgChan <- &entity.WalletSnapshot{Address: "0xb"}

	assert.Equal(t, 2, waitForBatch(t, rec))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on context cancellation")
	}
}

func TestProcessSnapshots_FlushesPendingBatchOnCancel(t *testing.T) {
	cfg, publisher, rec := newLoopFixture(10, time.Hour)
	msgChan := make(chan *entity.WalletSnapshot, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		processSnapshots(ctx, msgChan, rec, publisher, zap.NewNop(), cfg)
		close(done)
	}()

	msgChan <- &entity.WalletSnapshot{Address: "0xa"}
	// Give the loop a moment to buffer the snapshot before cancelling.
	require.Eventually(t, func() bool { return len(msgChan) == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.Equal(t, 1, waitForBatch(t, rec))
	<-done
}

func TestProcessSnapshots_FlushesOnClosedChannel(t *testing.T) {
	cfg, publisher, rec := newLoopFixture(10, time.Hour)
	msgChan := make(chan *entity.WalletSnapshot, 4)

	done := make(chan struct{})
	go func() {
		processSnapshots(context.Background(), msgChan, rec, publisher, zap.NewNop(), cfg)
		close(done)
	}()

	msgChan <- &entity.WalletSnapshot{Address: "0xa"}
	msgChan <- &entity.WalletSnapshot{Address: "0xb"}
	close(msgChan)

	assert.Equal(t, 2, waitForBatch(t, rec))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on channel close")
	}
}

func TestProcessSnapshots_FlushesOnBatchWindow(t *testing.T) {
	cfg, publisher, rec := newLoopFixture(100, 50*time.Millisecond)
	msgChan := make(chan *entity.WalletSnapshot, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go processSnapshots(ctx, msgChan, rec, publisher, zap.NewNop(), cfg)

	msgChan <- &entity.WalletSnapshot{Address: "0xa"}
	assert.Equal(t, 1, waitForBatch(t, rec))
}
