package tools

import (
	"fmt"
	"math/big"

	"auction-factory-sol/internal/consts"

	"github.com/shopspring/decimal"
)

var lamportsPerSol = decimal.NewFromBigInt(new(big.Int).SetUint64(consts.LamportsPerSol), 0)

type plainTier struct {
	limit  decimal.Decimal
	places int32
}

// 先按档位小数位舍入，舍入后仍小于上限才落在该档
var plainTiers = []plainTier{
	{limit: decimal.NewFromInt(10), places: 3},
	{limit: decimal.NewFromInt(100), places: 2},
	{limit: decimal.NewFromInt(1000), places: 1},
}

type suffixTier struct {
	threshold decimal.Decimal
	suffix    string
}

// 从小到大匹配，缩放舍入后不足 1000 即停
var suffixTiers = []suffixTier{
	{threshold: decimal.New(1, 3), suffix: "K"},
	{threshold: decimal.New(1, 6), suffix: "M"},
	{threshold: decimal.New(1, 9), suffix: "B"},
	{threshold: decimal.New(1, 12), suffix: "T"},
}

var suffixLimit = decimal.NewFromInt(1000)

// ParseSol 解析用户输入的 SOL 数量（十进制字符串）
func ParseSol(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// ToLamports SOL -> lamports，小数部分截断
func ToLamports(sol decimal.Decimal) (uint64, error) {
	if sol.IsNegative() {
		return 0, fmt.Errorf("negative amount: %s", sol.String())
	}
	v := sol.Mul(lamportsPerSol).Truncate(0).BigInt()
	if !v.IsUint64() {
		return 0, fmt.Errorf("amount overflows u64 lamports: %s", sol.String())
	}
	return v.Uint64(), nil
}

// FromLamports lamports -> SOL，精确无损
func FromLamports(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -consts.SolDecimals)
}

// FormatAmount 把 lamports 格式化为展示用的 SOL 字符串：
//   - < 10: 3 位小数；< 100: 2 位；< 1000: 1 位
//   - >= 1000 且 truncateToSuffix: 按 K/M/B/T 缩放并保留 3 位小数，如 1500 -> "1.500K"
//   - >= 1000 且 !truncateToSuffix: 输出完整十进制数值，不带后缀
//
// 档位按舍入后的值判定，9.9996 输出 "10.00" 而不是 "10.000"。
// decimals 非空时覆盖上面所有档位的小数位数。
func FormatAmount(lamports uint64, truncateToSuffix bool, decimals ...int) string {
	sol := FromLamports(lamports)
	explicit := len(decimals) > 0 && decimals[0] >= 0

	places := func(def int32) int32 {
		if explicit {
			return int32(decimals[0])
		}
		return def
	}

	for _, tier := range plainTiers {
		p := places(tier.places)
		if rounded := sol.Round(p); rounded.LessThan(tier.limit) {
			return rounded.StringFixed(p)
		}
	}

	if !truncateToSuffix {
		if explicit {
			return sol.StringFixed(int32(decimals[0]))
		}
		return sol.String()
	}

	p := places(3)
	for i, tier := range suffixTiers {
		scaled := sol.Div(tier.threshold).Round(p)
		if scaled.LessThan(suffixLimit) || i == len(suffixTiers)-1 {
			return scaled.StringFixed(p) + tier.suffix
		}
	}
	return sol.StringFixed(p)
}
