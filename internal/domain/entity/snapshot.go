package entity

import (
	"strings"
)

// WalletSnapshot is one wallet's materialized activity record: everything the
// analytics core needs, fetched upfront by a data provider. Snapshots are
// treated as immutable for the duration of an analysis run.
type WalletSnapshot struct {
	Address       string         `json:"address"`
	Transfers     []*Transfer    `json:"transfers"`
	TokenBalances []TokenBalance `json:"tokenBalances"`
	NFTHoldings   []OwnedNFT     `json:"nftHoldings"`
}

// Transfer represents a single asset transfer touching a wallet.
// Value and the nested containers are nullable: upstream providers omit them
// for some transfer categories, and the core must tolerate that.
type Transfer struct {
	Hash        string            `json:"hash"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Value       *float64          `json:"value"`
	RawContract *RawContract      `json:"rawContract"`
	Metadata    *TransferMetadata `json:"metadata"`
	Category    string            `json:"category"`
}

// RawContract carries the raw fixed-point representation of a transfer value,
// as an 18-decimal hex string.
type RawContract struct {
	Value   string `json:"value"`
	Address string `json:"address"`
}

// TransferMetadata holds the block timestamp container for a transfer.
type TransferMetadata struct {
	BlockTimestamp string `json:"blockTimestamp"`
}

// ValueOrZero returns the transfer value in native units, treating a missing
// value as 0.
func (t *Transfer) ValueOrZero() float64 {
	if t == nil || t.Value == nil {
		return 0
	}
	return *t.Value
}

// TokenBalance is one token position of a wallet. A nil TokenAddress marks
// the chain's native currency.
type TokenBalance struct {
	TokenAddress *string `json:"tokenAddress"`
	TokenBalance string  `json:"tokenBalance"`
}

// OwnedNFT is a single NFT holding with its contract classification.
type OwnedNFT struct {
	Contract   NFTContract  `json:"contract"`
	TokenID    string       `json:"tokenId"`
	AcquiredAt *NFTAcquired `json:"acquiredAt"`
}

// NFTContract describes the collection an NFT belongs to.
type NFTContract struct {
	Address         string           `json:"address"`
	Name            string           `json:"name"`
	IsSpam          bool             `json:"isSpam"`
	TokenType       string           `json:"tokenType"`
	OpenSeaMetadata *OpenSeaMetadata `json:"openSeaMetadata"`
}

// OpenSeaMetadata carries marketplace pricing for a collection.
type OpenSeaMetadata struct {
	FloorPrice *float64 `json:"floorPrice"`
}

// NFTAcquired holds the acquisition timestamp container of an NFT.
type NFTAcquired struct {
	BlockTimestamp *string `json:"blockTimestamp"`
}

// WalletMetadata is the lightweight wallet summary returned by upstream
// providers (balance in wei, on-chain nonce).
type WalletMetadata struct {
	Address          string `json:"address"`
	ENS              string `json:"ens,omitempty"`
	WeiBalance       string `json:"ethBalance"`
	TransactionCount int64  `json:"transactionCount"`
}

// SameAddress compares two addresses case-insensitively. Address identity is
// checksummed-or-not agnostic throughout the analytics core.
func SameAddress(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
