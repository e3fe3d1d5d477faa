package service

import (
	"wallet-activity-analyzer/internal/domain/entity"
)

// AnalyzePatterns classifies every transfer of the batch two independent
// ways: incoming vs outgoing relative to the owning snapshot's address, and
// internal vs external relative to the tracked address set. A transfer is
// internal only when both endpoints belong to the batch. Missing from/to
// fields compare as empty strings.
func AnalyzePatterns(batch []*entity.WalletSnapshot) entity.PatternStats {
	tracked := trackedAddresses(batch)

	var p entity.PatternStats
	for _, s := range batch {
		own := normalizeAddress(s.Address)
		for _, t := range s.Transfers {
			from := normalizeAddress(t.From)
			to := normalizeAddress(t.To)
			value := t.ValueOrZero()

			if to == own && own != "" {
				p.IncomingCount++
				p.IncomingVolume += value
			}
			if from == own && own != "" {
				p.OutgoingCount++
				p.OutgoingVolume += value
			}

			_, fromTracked := tracked[from]
			_, toTracked := tracked[to]
			if fromTracked && toTracked {
				p.InternalCount++
				p.InternalVolume += value
			} else {
				p.ExternalCount++
				p.ExternalVolume += value
			}
		}
	}

	p.AverageIncoming = round3(safeDiv(p.IncomingVolume, float64(p.IncomingCount)))
	p.AverageOutgoing = round3(safeDiv(p.OutgoingVolume, float64(p.OutgoingCount)))
	p.IncomingVolume = round3(p.IncomingVolume)
	p.OutgoingVolume = round3(p.OutgoingVolume)
	p.InternalVolume = round3(p.InternalVolume)
	p.ExternalVolume = round3(p.ExternalVolume)
	return p
}

// AnalyzeFlows summarizes native-currency in/out/net flows per wallet, along
// with unique transaction hashes and token contracts touched. Only external
// transfers contribute to the flow sums: token-category transfers carry their
// value in token units, not native currency. Hash and contract counting stays
// category-agnostic.
func AnalyzeFlows(batch []*entity.WalletSnapshot) []entity.WalletFlowStats {
	flows := make([]entity.WalletFlowStats, 0, len(batch))
	for _, s := range batch {
		own := normalizeAddress(s.Address)
		hashes := make(map[string]struct{})
		contracts := make(map[string]struct{})

		var in, out float64
		for _, t := range s.Transfers {
			if t.Hash != "" {
				hashes[t.Hash] = struct{}{}
			}
			if t.RawContract != nil && t.RawContract.Address != "" {
				contracts[normalizeAddress(t.RawContract.Address)] = struct{}{}
			}
			// A missing category is tolerated as external; sparse upstream
			// records omit it.
			if t.Category != "" && t.Category != "external" {
				continue
			}
			value := t.ValueOrZero()
			if own != "" && normalizeAddress(t.To) == own {
				in += value
			}
			if own != "" && normalizeAddress(t.From) == own {
				out += value
			}
		}

		flows = append(flows, entity.WalletFlowStats{
			Address:              s.Address,
			In:                   round3(in),
			Out:                  round3(out),
			Net:                  round3(in - out),
			UniqueTransactions:   len(hashes),
			UniqueTokenContracts: len(contracts),
		})
	}
	return flows
}

// AnalyzeGas estimates gas spent per transfer as the raw fixed-point contract
// value minus the reported transfer value, floored at 0, and retains the
// single highest-gas transfer across the batch. The difference is a
// best-effort heuristic: for arbitrary token transfers the two quantities are
// not guaranteed to differ by exactly the fee.
func AnalyzeGas(batch []*entity.WalletSnapshot) entity.GasAnalysis {
	var analysis entity.GasAnalysis
	count := 0
	for _, s := range batch {
		for _, t := range s.Transfers {
			estimate := gasEstimate(t)
			count++
			analysis.TotalEstimate += estimate

			if estimate > 0 && (analysis.HighestGas == nil || estimate > analysis.HighestGas.Estimate) {
				analysis.HighestGas = &entity.GasTransfer{
					Hash:     t.Hash,
					From:     t.From,
					To:       t.To,
					Estimate: round6(estimate),
				}
			}
		}
	}
	analysis.AverageEstimate = round6(safeDiv(analysis.TotalEstimate, float64(count)))
	analysis.TotalEstimate = round6(analysis.TotalEstimate)
	return analysis
}

// gasEstimate is max(0, rawContractValueDecimal - transferValue).
func gasEstimate(t *entity.Transfer) float64 {
	if t == nil || t.RawContract == nil {
		return 0
	}
	raw, ok := parseFixedPointHex(t.RawContract.Value)
	if !ok {
		return 0
	}
	estimate := raw.InexactFloat64() - t.ValueOrZero()
	if estimate < 0 {
		return 0
	}
	return estimate
}

// trackedAddresses builds the case-insensitive batch address set.
func trackedAddresses(batch []*entity.WalletSnapshot) map[string]struct{} {
	tracked := make(map[string]struct{}, len(batch))
	for _, s := range batch {
		if a := normalizeAddress(s.Address); a != "" {
			tracked[a] = struct{}{}
		}
	}
	return tracked
}
