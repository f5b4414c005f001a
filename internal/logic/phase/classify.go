package phase

import (
	"auction-factory-sol/internal/types"
)

// Phase 表示当前应该执行的动作
type Phase int

const (
	PhaseNone   Phase = iota // 数据未加载等无法判定的情况
	PhaseCreate              // 创建下一场拍卖，或为当前拍卖铸造/供给拍品
	PhaseBid                 // 可出价
	PhaseSettle              // 已到期未结算
)

func (p Phase) String() string {
	switch p {
	case PhaseCreate:
		return "create"
	case PhaseBid:
		return "bid"
	case PhaseSettle:
		return "settle"
	default:
		return "none"
	}
}

// Classify 纯函数：根据工厂与当前拍卖快照判定阶段。
//
// 判定顺序不可调换：CREATE 优先，已结算且已过期的拍卖应进入 CREATE（下一场），
// 而不是再次 SETTLE。auction 为 nil 表示当前序号的拍卖尚未加载。
func Classify(factory *types.AuctionFactory, auction *types.Auction, now int64) Phase {
	if factory == nil {
		return PhaseNone
	}

	// 1. 还没有任何拍卖
	if factory.Sequence == 0 {
		return PhaseCreate
	}
	if auction == nil {
		return PhaseNone
	}

	// 2. 已结算 -> 下一场；未铸造拍品 -> mint 子状态，同属 CREATE
	if auction.Settled || !auction.HasResource() {
		return PhaseCreate
	}

	// 3. 未到期可出价
	if now < auction.EndTime {
		return PhaseBid
	}

	// 4. 到期未结算
	return PhaseSettle
}

// CreateStep CREATE 阶段内部的下一步
type CreateStep int

const (
	StepNone          CreateStep = iota
	StepCreateAuction            // 创建新拍卖（first / next）
	StepMintResource             // 为当前拍卖铸造并供给拍品
)

func (s CreateStep) String() string {
	switch s {
	case StepCreateAuction:
		return "create_auction"
	case StepMintResource:
		return "mint_resource"
	default:
		return "none"
	}
}

// NextCreateStep 在 CREATE 阶段区分是创建新拍卖还是补铸拍品
func NextCreateStep(factory *types.AuctionFactory, auction *types.Auction, now int64) CreateStep {
	if Classify(factory, auction, now) != PhaseCreate {
		return StepNone
	}
	if factory.Sequence == 0 || auction.Settled {
		return StepCreateAuction
	}
	return StepMintResource
}
