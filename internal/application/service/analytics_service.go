package service

import (
	"context"
	"sort"
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
	"wallet-activity-analyzer/internal/domain/service"
	"wallet-activity-analyzer/internal/infrastructure/config"
	"wallet-activity-analyzer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// AnalyticsApplicationService implements AnalyticsService by composing the
// pure domain analyzers and logging their skip diagnostics as a structured
// side channel.
type AnalyticsApplicationService struct {
	cfg    *config.AnalyticsConfig
	logger *logger.Logger
}

// NewAnalyticsApplicationService creates a new analytics application service
func NewAnalyticsApplicationService(cfg *config.AnalyticsConfig, logger *logger.Logger) service.AnalyticsService {
	return &AnalyticsApplicationService{
		cfg:    cfg,
		logger: logger.WithComponent("analytics-service"),
	}
}

// Analyze runs every analyzer over the batch and composes the full payload.
func (s *AnalyticsApplicationService) Analyze(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.AnalyticsPayload, error) {
	s.logger.Info("Analyzing snapshot batch",
		zap.Int("wallet_count", len(batch)),
		zap.Time("as_of", now))

	overview, err := s.Overview(ctx, batch, now)
	if err != nil {
		return nil, err
	}
	insights, err := s.TransactionInsights(ctx, batch, now)
	if err != nil {
		return nil, err
	}
	distribution, err := s.TokenDistribution(ctx, batch, now)
	if err != nil {
		return nil, err
	}
	nfts, err := s.NFTAnalytics(ctx, batch)
	if err != nil {
		return nil, err
	}

	return &entity.AnalyticsPayload{
		GeneratedAt:  now,
		Overview:     *overview,
		Transactions: *insights,
		Distribution: *distribution,
		NFTs:         *nfts,
	}, nil
}

// Overview rolls per-wallet metrics up into batch totals.
func (s *AnalyticsApplicationService) Overview(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.OverviewStats, error) {
	overview, skips := service.ComputeOverview(batch, now)
	s.logSkips("overview", skips)
	return &overview, nil
}

// TransactionInsights produces the timeline, pattern, flow and gas view.
func (s *AnalyticsApplicationService) TransactionInsights(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.TransactionInsights, error) {
	timeline, skips := service.BuildTimeline(batch, service.ParseGranularity(s.cfg.TimelineGranularity))
	s.logSkips("timeline", skips)

	overview, _ := service.ComputeOverview(batch, now)
	mostActive := append([]entity.WalletWithActivity(nil), overview.Wallets...)
	sort.SliceStable(mostActive, func(i, j int) bool {
		return mostActive[i].ActivityIndex > mostActive[j].ActivityIndex
	})
	limit := s.cfg.MostActiveLimit
	if limit <= 0 {
		limit = service.DefaultMostActiveLimit
	}
	if len(mostActive) > limit {
		mostActive = mostActive[:limit]
	}

	return &entity.TransactionInsights{
		Timeline:          timeline,
		MostActiveWallets: mostActive,
		Patterns:          service.AnalyzePatterns(batch),
		Flows:             service.AnalyzeFlows(batch),
		GasAnalysis:       service.AnalyzeGas(batch),
		Skips:             skips,
	}, nil
}

// TokenDistribution produces concentration and histogram analytics.
func (s *AnalyticsApplicationService) TokenDistribution(ctx context.Context, batch []*entity.WalletSnapshot, now time.Time) (*entity.TokenDistributionAnalysis, error) {
	analysis := service.AnalyzeDistribution(batch, now, s.cfg.WhaleLimit)
	return &analysis, nil
}

// NFTAnalytics produces collection, adoption, spam and diversity metrics.
func (s *AnalyticsApplicationService) NFTAnalytics(ctx context.Context, batch []*entity.WalletSnapshot) (*entity.NFTAnalytics, error) {
	analytics := service.AnalyzeNFTs(batch, s.cfg.CollectionLimit, s.cfg.AcquisitionLimit)
	return &analytics, nil
}

// logSkips surfaces skip diagnostics without failing the analysis; a wallet
// with no usable records legitimately reports zero activity.
func (s *AnalyticsApplicationService) logSkips(analyzer string, skips entity.SkipStats) {
	if skips.Skipped() == 0 {
		return
	}
	s.logger.Warn("Skipped transfers with malformed timestamps",
		zap.String("analyzer", analyzer),
		zap.Int("missing_metadata", skips.MissingMetadata),
		zap.Int("missing_timestamp", skips.MissingTimestamp),
		zap.Int("unparsable_timestamp", skips.UnparsableTimestamp),
		zap.Int("processed", skips.Processed),
		zap.Float64("skip_rate_pct", skips.SkipRate()))
}
