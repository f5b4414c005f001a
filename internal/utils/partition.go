package utils

import "github.com/blocto/solana-go-sdk/common"

// PartitionForKey 按账户地址选择分区，同一拍卖的事件始终落在同一分区以保持顺序。
// 非加密哈希，PDA 地址本身分布均匀。
func PartitionForKey(key common.PublicKey, partitions int32) int32 {
	if partitions <= 1 {
		return 0
	}
	b := key.Bytes()
	mod := uint32(partitions)
	switch mod {
	case 2, 4, 8, 16:
		return int32(uint32(b[27]) & (mod - 1)) // 低位掩码替代取模
	}
	hash := uint32(b[7])<<24 | uint32(b[15])<<16 | uint32(b[19])<<8 | uint32(b[27])
	return int32(hash % mod)
}
