package service

import (
	"time"

	"wallet-activity-analyzer/internal/domain/entity"
)

// testNow is the fixed reference instant used across the analyzer tests.
var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func transferAt(from, to string, value float64, ts time.Time) *entity.Transfer {
	return &entity.Transfer{
		Hash:     "0xhash-" + ts.Format("20060102T150405"),
		From:     from,
		To:       to,
		Value:    &value,
		Metadata: &entity.TransferMetadata{BlockTimestamp: ts.UTC().Format(time.RFC3339)},
	}
}

func daysAgo(n float64) time.Time {
	return testNow.Add(-time.Duration(n * 24 * float64(time.Hour)))
}

func nativeBalanceEntry(hex string) entity.TokenBalance {
	return entity.TokenBalance{TokenAddress: nil, TokenBalance: hex}
}

func snapshotWithBalance(address, balanceHex string, transfers ...*entity.Transfer) *entity.WalletSnapshot {
	return &entity.WalletSnapshot{
		Address:       address,
		Transfers:     transfers,
		TokenBalances: []entity.TokenBalance{nativeBalanceEntry(balanceHex)},
	}
}
