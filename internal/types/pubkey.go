package types

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
)

// TryPubkeyFromBase58 解析 base58 字符串为 PublicKey，失败时返回 error（用于不信任输入路径）
//
// common.PublicKeyFromString 对非法输入不报错，命令行参数等外部输入统一走这里。
func TryPubkeyFromBase58(s string) (common.PublicKey, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("failed to decode base58 pubkey %q: %w", s, err)
	}
	if len(data) != common.PublicKeyLength {
		return common.PublicKey{}, fmt.Errorf("invalid pubkey length: got %d, want %d, input=%q", len(data), common.PublicKeyLength, s)
	}
	return common.PublicKeyFromBytes(data), nil
}

func IsEmptyPubkey(p common.PublicKey) bool {
	return p == common.PublicKey{}
}
