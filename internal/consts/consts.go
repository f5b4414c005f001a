package consts

import "runtime"

// PDA 种子标签，必须与链上程序保持一致
const (
	AuctionSeed        = "aux"
	AuctionFactorySeed = "aux_fax"
	ConfigSeed         = "config"
	MetadataSeed       = "metadata"
	EditionSeed        = "edition"
)

const (
	LamportsPerSol   uint64 = 1_000_000_000
	SolDecimals             = 9
	FirstSequence    uint64 = 1 // 拍卖序号从 1 开始
	ResourceDecimals uint8  = 0 // 拍卖资源是 supply=1 的 NFT
)

// CpuCount 表示逻辑 CPU 核心数，用于控制并发任务调度上限
var CpuCount = runtime.NumCPU()
