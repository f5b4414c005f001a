package phase

import "auction-factory-sol/internal/types"

// State 单场拍卖的生命周期状态，只能前进不能回退：
// Pending -> ReadyToBid -> Ended -> Settled
type State int

const (
	StatePending    State = iota // 尚未铸造拍品
	StateReadyToBid              // 拍品已就绪且未到期，唯一接受出价的状态
	StateEnded                   // 已到期未结算
	StateSettled                 // 终态
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReadyToBid:
		return "ready_to_bid"
	case StateEnded:
		return "ended"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// StateOf 计算拍卖在 now 时刻所处的状态
func StateOf(auction *types.Auction, now int64) State {
	switch {
	case auction.Settled:
		return StateSettled
	case !auction.HasResource():
		return StatePending
	case now < auction.EndTime:
		return StateReadyToBid
	default:
		return StateEnded
	}
}

// AcceptsBids 只有 ReadyToBid 接受出价
func (s State) AcceptsBids() bool {
	return s == StateReadyToBid
}

// CanTransition 状态只能按顺序前进（允许跳过中间状态，如无人出价直接到期）
func CanTransition(from, to State) bool {
	return to > from
}
