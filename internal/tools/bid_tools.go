package tools

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MinimumNextBid 计算下一口最低出价（lamports），仅供界面提示，链上程序才是权威校验。
//
// 规则：
//   - 当前为 0 时最低出价为 1（不能出 0）
//   - 否则为 round((1 + pct/100) * current)
//   - 若取整后仍等于 current（百分比太小），则取 current + 1，保证严格递增
func MinimumNextBid(current uint64, minBidPercentageIncrease uint64) uint64 {
	if current == 0 {
		return 1
	}

	cur := decimal.NewFromBigInt(new(big.Int).SetUint64(current), 0)
	factor := decimal.NewFromBigInt(new(big.Int).SetUint64(minBidPercentageIncrease), 0).
		Div(hundred).
		Add(decimal.NewFromInt(1))

	next := factor.Mul(cur).Round(0).BigInt()
	if !next.IsUint64() {
		// 溢出 u64 时链上也无法接受，退化为最小步长
		return saturatingInc(current)
	}

	minimum := next.Uint64()
	if minimum <= current {
		return saturatingInc(current)
	}
	return minimum
}

// IsBidSufficient 出价是否达到最低要求（含保留价）
func IsBidSufficient(amount, current, minBidPercentageIncrease, minReservePrice uint64) bool {
	if amount < minReservePrice {
		return false
	}
	return amount >= MinimumNextBid(current, minBidPercentageIncrease)
}

func saturatingInc(v uint64) uint64 {
	if v == ^uint64(0) {
		return v
	}
	return v + 1
}
