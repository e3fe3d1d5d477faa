package service

import (
	"context"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
)

// AnalyticsService defines the batch analytics operations exposed to
// transport and presentation layers. Implementations must be pure with
// respect to the snapshot batch and the injected now: the same inputs yield
// identical output on every call.
type AnalyticsService interface {
	// Analyze runs every analyzer over the batch and composes the full
	// analytics payload.
	Analyze(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.AnalyticsPayload, error)

	// Overview rolls per-wallet metrics up into batch totals.
	Overview(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.OverviewStats, error)

	// TransactionInsights produces the timeline, pattern, flow and gas view.
	TransactionInsights(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.TransactionInsights, error)

	// TokenDistribution produces concentration and histogram analytics over
	// the batch's native balances.
	TokenDistribution(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.TokenDistributionAnalysis, error)

	// NFTAnalytics produces collection, adoption, spam and diversity metrics.
	NFTAnalytics(ctx context.Context, batch []*entity.WalletSnapshot) (*entity.NFTAnalytics, error)
}
