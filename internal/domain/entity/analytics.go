package entity

import (
	"time"
)

// SkipStats counts transfers excluded from time-based aggregates, broken down
// by reason. Skips are surfaced as diagnostics next to computed results, never
// raised as errors.
type SkipStats struct {
	MissingMetadata     int `json:"missingMetadata"`
	MissingTimestamp    int `json:"missingTimestamp"`
	UnparsableTimestamp int `json:"unparsableTimestamp"`
	Processed           int `json:"processed"`
}

// Skipped returns the number of excluded transfers across all reasons.
func (s SkipStats) Skipped() int {
	return s.MissingMetadata + s.MissingTimestamp + s.UnparsableTimestamp
}

// Total returns the number of transfers considered.
func (s SkipStats) Total() int {
	return s.Processed + s.Skipped()
}

// SkipRate returns the percentage of considered transfers that were skipped.
func (s SkipStats) SkipRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Skipped()) / float64(total) * 100
}

// Merge accumulates another counter set into this one.
func (s *SkipStats) Merge(o SkipStats) {
	s.MissingMetadata += o.MissingMetadata
	s.MissingTimestamp += o.MissingTimestamp
	s.UnparsableTimestamp += o.UnparsableTimestamp
	s.Processed += o.Processed
}

// WalletWithActivity is a wallet's scored summary within a batch.
type WalletWithActivity struct {
	Address          string     `json:"address"`
	ActivityIndex    float64    `json:"activityIndex"`
	TransactionCount int        `json:"transactionCount"`
	TotalVolume      float64    `json:"totalVolume"`
	Balance          float64    `json:"balance"`
	LastActivityDate *time.Time `json:"lastActivityDate"`
}

// OverviewStats rolls per-wallet metrics up into batch-level totals.
type OverviewStats struct {
	WalletCount          int                  `json:"walletCount"`
	TotalTransactions    int                  `json:"totalTransactions"`
	TotalVolume          float64              `json:"totalVolume"`
	AverageBalance       float64              `json:"averageBalance"`
	AverageActivityIndex float64              `json:"averageActivityIndex"`
	ActiveWallets        int                  `json:"activeWallets"`
	InactiveWallets      int                  `json:"inactiveWallets"`
	Wallets              []WalletWithActivity `json:"wallets"`
}

// TimelineEntry is one time bucket of transfer activity.
type TimelineEntry struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Volume float64 `json:"volume"`
	Count  int     `json:"count"`
}

// PatternStats partitions a batch's transfers two independent ways:
// incoming/outgoing relative to each snapshot's own address, and
// internal/external relative to the tracked address set.
type PatternStats struct {
	IncomingCount   int     `json:"incomingCount"`
	OutgoingCount   int     `json:"outgoingCount"`
	IncomingVolume  float64 `json:"incomingVolume"`
	OutgoingVolume  float64 `json:"outgoingVolume"`
	AverageIncoming float64 `json:"averageIncoming"`
	AverageOutgoing float64 `json:"averageOutgoing"`
	InternalCount   int     `json:"internalCount"`
	ExternalCount   int     `json:"externalCount"`
	InternalVolume  float64 `json:"internalVolume"`
	ExternalVolume  float64 `json:"externalVolume"`
}

// WalletFlowStats summarizes native-currency flows for one wallet.
type WalletFlowStats struct {
	Address              string  `json:"address"`
	In                   float64 `json:"totalIn"`
	Out                  float64 `json:"totalOut"`
	Net                  float64 `json:"net"`
	UniqueTransactions   int     `json:"uniqueTransactions"`
	UniqueTokenContracts int     `json:"uniqueTokenContracts"`
}

// GasTransfer identifies the transfer with the highest estimated gas spend.
type GasTransfer struct {
	Hash     string  `json:"hash"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Estimate float64 `json:"estimate"`
}

// GasAnalysis aggregates per-transfer gas-spend estimates. The estimate is
// the difference between the raw contract value and the reported transfer
// value, which is a best-effort heuristic rather than an exact gas
// computation; it is preserved from the original scoring design.
type GasAnalysis struct {
	TotalEstimate   float64      `json:"totalEstimate"`
	AverageEstimate float64      `json:"averageEstimate"`
	HighestGas      *GasTransfer `json:"highestGas"`
}

// TransactionInsights is the composed transaction-analytics payload.
type TransactionInsights struct {
	Timeline          []TimelineEntry      `json:"timeline"`
	MostActiveWallets []WalletWithActivity `json:"mostActiveWallets"`
	Patterns          PatternStats         `json:"patterns"`
	Flows             []WalletFlowStats    `json:"flows"`
	GasAnalysis       GasAnalysis          `json:"gasAnalysis"`
	Skips             SkipStats            `json:"skips"`
}

// BalanceBucket is one range of the dynamic balance histogram. Ranges are
// half-open [Min, Max); a negative Max marks the open-ended final range.
type BalanceBucket struct {
	Range        string  `json:"range"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Count        int     `json:"count"`
	Percentage   float64 `json:"percentage"`
	TotalBalance float64 `json:"totalBalance"`
}

// ConcentrationMetrics holds inequality indices over a balance vector.
type ConcentrationMetrics struct {
	Gini          float64 `json:"gini"`
	HHI           float64 `json:"hhi"`
	Top10Percent  float64 `json:"top10PercentShare"`
	Top20Percent  float64 `json:"top20PercentShare"`
	Concentration string  `json:"concentrationLevel"`
}

// BalanceStats holds descriptive statistics over a balance vector.
type BalanceStats struct {
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	StdDev float64 `json:"stdDev"`
}

// WhaleWallet is a wallet ranked by descending native balance.
type WhaleWallet struct {
	Rank             int     `json:"rank"`
	Address          string  `json:"address"`
	Balance          float64 `json:"balance"`
	Share            float64 `json:"shareOfTotal"`
	ActivityIndex    float64 `json:"activityIndex"`
	TransactionCount int     `json:"transactionCount"`
}

// TokenDistributionAnalysis is the composed balance-distribution payload.
type TokenDistributionAnalysis struct {
	Distribution  []BalanceBucket      `json:"distribution"`
	Whales        []WhaleWallet        `json:"whales"`
	Concentration ConcentrationMetrics `json:"concentration"`
	BalanceStats  BalanceStats         `json:"balanceStats"`
}

// NFTCollectionStats summarizes one collection across the batch.
type NFTCollectionStats struct {
	ContractAddress string   `json:"contractAddress"`
	Name            string   `json:"name"`
	TokenType       string   `json:"tokenType"`
	HolderCount     int      `json:"holderCount"`
	ItemCount       int      `json:"itemCount"`
	FloorPrice      *float64 `json:"floorPrice"`
	IsSpam          bool     `json:"isSpam"`
}

// NFTAdoption measures how widely NFTs are held across the batch.
type NFTAdoption struct {
	HolderCount     int     `json:"holderCount"`
	AdoptionRate    float64 `json:"adoptionRate"`
	AverageHoldings float64 `json:"averageHoldingsPerHolder"`
	TotalItems      int     `json:"totalItems"`
}

// NFTSpamAnalysis breaks holdings down by spam classification.
type NFTSpamAnalysis struct {
	SpamCount        int                  `json:"spamCount"`
	SpamRate         float64              `json:"spamRate"`
	TopSpamContracts []NFTCollectionStats `json:"topSpamContracts"`
}

// NFTAcquisition is one dated acquisition event.
type NFTAcquisition struct {
	WalletAddress   string    `json:"walletAddress"`
	ContractAddress string    `json:"contractAddress"`
	TokenID         string    `json:"tokenId"`
	TokenType       string    `json:"tokenType"`
	AcquiredAt      time.Time `json:"acquiredAt"`
}

// NFTDiversity measures holding spread across contracts and token standards.
type NFTDiversity struct {
	UniqueContracts    int     `json:"uniqueContracts"`
	ContractsPerWallet float64 `json:"avgContractsPerWallet"`
	ERC721Count        int     `json:"erc721Count"`
	ERC1155Count       int     `json:"erc1155Count"`
}

// NFTAnalytics is the composed NFT payload.
type NFTAnalytics struct {
	TopCollections     []NFTCollectionStats `json:"topCollections"`
	Adoption           NFTAdoption          `json:"adoption"`
	Spam               NFTSpamAnalysis      `json:"spamAnalysis"`
	RecentAcquisitions []NFTAcquisition     `json:"recentAcquisitions"`
	Diversity          NFTDiversity         `json:"diversity"`
}

// AnalyticsPayload is the full batch analysis handed to presentation.
type AnalyticsPayload struct {
	GeneratedAt  time.Time                 `json:"generatedAt"`
	Overview     OverviewStats             `json:"overview"`
	Transactions TransactionInsights       `json:"transactions"`
	Distribution TokenDistributionAnalysis `json:"distribution"`
	NFTs         NFTAnalytics              `json:"nfts"`
}
