package tools

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLamports(t *testing.T) {
	v, err := ToLamports(decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), v)

	// 超过 9 位的小数截断
	v, err = ToLamports(decimal.RequireFromString("0.0000000019"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	_, err = ToLamports(decimal.RequireFromString("-1"))
	assert.Error(t, err)

	_, err = ToLamports(decimal.RequireFromString("100000000000"))
	assert.Error(t, err, "超过 u64 应报错")
}

func TestLamportsRoundTrip(t *testing.T) {
	inputs := []string{"0", "1", "0.1", "2.123456789", "3.1234567891234", "42.000000001"}
	for _, in := range inputs {
		x := decimal.RequireFromString(in)
		lamports, err := ToLamports(x)
		require.NoError(t, err)
		back := FromLamports(lamports)
		assert.True(t, back.Equal(x.Truncate(9)), "input=%s back=%s", in, back)
	}
}

func TestParseSol(t *testing.T) {
	d, err := ParseSol("0.25")
	require.NoError(t, err)
	assert.Equal(t, "0.25", d.String())

	_, err = ParseSol("abc")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	const sol = uint64(1_000_000_000)

	tests := []struct {
		name     string
		lamports uint64
		suffix   bool
		decimals []int
		want     string
	}{
		{"零", 0, true, nil, "0.000"},
		{"小于 10 三位小数", 1_234_500_000, true, nil, "1.235"},
		{"小于 10 不带后缀", 9 * sol, true, nil, "9.000"},
		{"小于 100 两位小数", 12_345_000_000, true, nil, "12.35"},
		{"小于 1000 一位小数", 123_450_000_000, true, nil, "123.5"},
		{"1500 缩写为 K", 1500 * sol, true, nil, "1.500K"},
		{"百万级 M", 2_500_000 * sol, true, nil, "2.500M"},
		{"十亿级 B", 3_000_000_000 * sol, true, nil, "3.000B"},
		{"不缩写时输出完整数值", 1500 * sol, false, nil, "1500"},
		{"不缩写保留小数", 1500*sol + 250_000_000, false, nil, "1500.25"},
		{"显式小数位覆盖", 1_234_500_000, true, []int{1}, "1.2"},
		{"显式小数位作用于后缀", 1500 * sol, true, []int{1}, "1.5K"},
		{"显式小数位作用于完整数值", 1500 * sol, false, []int{2}, "1500.00"},
		{"舍入进位到 100 以下档", 9_999_600_000, true, nil, "10.00"},
		{"舍入进位到 1000 以下档", 99_996_000_000, true, nil, "100.0"},
		{"舍入进位到 K", 999_960_000_000, true, nil, "1.000K"},
		{"舍入进位到 M", 999_999_999_600_000, true, nil, "1.000M"},
		{"舍入进位不缩写", 999_960_000_000, false, nil, "999.96"},
		{"边界下方不进位", 9_999_400_000, true, nil, "9.999"},
		{"显式小数位进位", 9_960_000_000, true, []int{1}, "10.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.lamports, tt.suffix, tt.decimals...))
		})
	}
}
