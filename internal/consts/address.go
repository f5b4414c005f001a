package consts

import "github.com/blocto/solana-go-sdk/common"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	// Programs
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	TokenMetaProgramIdStr     = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	SysVarRentStr             = "SysvarRent111111111111111111111111111111111"

	// 拍卖工厂程序的默认部署地址，可在配置中覆盖
	AuctionFactoryProgramStr = "Aj37SxY7FJrVfJe6H7PZphvPrvHsES77p7aAZFwT4kHx"
)

var (
	// Programs
	SystemProgram          = common.PublicKeyFromString(SystemProgramStr)
	TokenProgram           = common.PublicKeyFromString(TokenProgramStr)
	AssociatedTokenProgram = common.PublicKeyFromString(AssociatedTokenProgramStr)
	TokenMetaProgram       = common.PublicKeyFromString(TokenMetaProgramIdStr)
	SysVarRent             = common.PublicKeyFromString(SysVarRentStr)

	AuctionFactoryProgram = common.PublicKeyFromString(AuctionFactoryProgramStr)
)
