package types

import (
	"github.com/blocto/solana-go-sdk/common"
)

// AuctionFactoryData 工厂级拍卖参数
type AuctionFactoryData struct {
	Duration                 uint64 // 拍卖时长（秒）
	TimeBuffer               uint64 // 临近结束出价时的顺延窗口（秒）
	MinBidPercentageIncrease uint64 // 最小加价百分比（整数百分点）
	MinReservePrice          uint64 // 保留价（lamports）
}

// AuctionFactory 是链上工厂账户的只读投影
type AuctionFactory struct {
	Address       common.PublicKey
	Bump          uint8
	Sequence      uint64 // 最近一次创建的拍卖序号，0 表示还没有拍卖
	Authority     common.PublicKey
	IsActive      bool
	Data          AuctionFactoryData
	InitializedAt int64
	ActiveSince   int64
	Treasury      common.PublicKey
	Config        common.PublicKey
}

// Bid 单条出价记录，记录后不可变
type Bid struct {
	Bidder    common.PublicKey
	Amount    uint64
	UpdatedAt int64
}

// Auction 是单场拍卖账户的只读投影
type Auction struct {
	Address          common.PublicKey
	Bump             uint8
	Sequence         uint64
	Authority        common.PublicKey
	StartTime        int64
	EndTime          int64
	FinalizedEndTime int64 // 结算前为 0
	Settled          bool
	Amount           uint64           // 当前最高出价（lamports）
	Bidder           common.PublicKey // 零值表示还没有人出价
	BidTime          int64
	Resource         *common.PublicKey // 拍品 mint，最多赋值一次
	Bids             []Bid             // 按时间升序，index 0 为最早保留的一条
}

// HasBidder 是否已经有人出价
func (a *Auction) HasBidder() bool {
	return a.Amount > 0 && !IsEmptyPubkey(a.Bidder)
}

// HasResource 是否已铸造拍品
func (a *Auction) HasResource() bool {
	return a.Resource != nil && !IsEmptyPubkey(*a.Resource)
}

// BidHistory 返回按时间倒序排列的出价副本（最新在前），便于展示
func (a *Auction) BidHistory() []Bid {
	out := make([]Bid, len(a.Bids))
	for i, b := range a.Bids {
		out[len(a.Bids)-1-i] = b
	}
	return out
}

// Config 是拍品描述的环形缓冲区
type Config struct {
	Address   common.PublicKey
	Bump      uint8
	MaxSupply uint32
	UpdateIdx uint32 // 环形写游标，按 MaxSupply 取模
	IsUpdated bool
	Buffer    []string
}

// IsFull 缓冲区是否已写满，写满后追加会覆盖 UpdateIdx 处的槽位
func (c *Config) IsFull() bool {
	return c.MaxSupply > 0 && uint32(len(c.Buffer)) >= c.MaxSupply
}

// NextWriteIndex 下一次追加写入的槽位
func (c *Config) NextWriteIndex() uint32 {
	if !c.IsFull() {
		return uint32(len(c.Buffer))
	}
	return c.UpdateIdx % c.MaxSupply
}

// EntryIndexFor 返回第 sequence 场拍卖将取用的缓冲区槽位（序号从 1 开始，按 MaxSupply 取模）
func (c *Config) EntryIndexFor(sequence uint64) (uint32, bool) {
	if c.MaxSupply == 0 || sequence == 0 {
		return 0, false
	}
	idx := uint32((sequence - 1) % uint64(c.MaxSupply))
	return idx, idx < uint32(len(c.Buffer))
}
