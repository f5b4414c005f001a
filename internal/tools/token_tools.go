package tools

import (
	"auction-factory-sol/internal/consts"

	"github.com/blocto/solana-go-sdk/common"
)

// IsSPLTokenProgram 判断账户 owner 是否为标准的 SPL Token 程序。
func IsSPLTokenProgram(programId common.PublicKey) bool {
	return programId == consts.TokenProgram
}

// IsTokenAccountInitialized 判断一个账户是否已作为 token account 存在：
// 链上不存在（lamports 为 0 且无数据）或 owner 不是 token 程序都视为未初始化。
func IsTokenAccountInitialized(lamports uint64, owner common.PublicKey, dataLen int) bool {
	if lamports == 0 && dataLen == 0 {
		return false
	}
	return IsSPLTokenProgram(owner)
}
