package progress

// Snapshot 监听服务最近一次观察到的拍卖生命周期状态，按工厂地址存储
type Snapshot struct {
	FactorySequence uint64 `redis:"factory_sequence"`
	AuctionAddress  string `redis:"auction"`
	Phase           string `redis:"phase"`
	State           string `redis:"state"`
	Amount          uint64 `redis:"amount"`
	Bidder          string `redis:"bidder"`
	EndTime         int64  `redis:"end_time"`
	Settled         bool   `redis:"settled"`
	ObservedAt      int64  `redis:"observed_at"` // Unix 秒，不参与变化判定
}

// SameLifecycle 除观察时间外全部字段一致即视为未变化
func (s Snapshot) SameLifecycle(other Snapshot) bool {
	s.ObservedAt, other.ObservedAt = 0, 0
	return s == other
}

// ChangeKind 描述两次快照之间的变化类型，用于日志与事件
type ChangeKind int

const (
	ChangeNone    ChangeKind = 0
	ChangeFirst   ChangeKind = 1 // 首次观察
	ChangeAuction ChangeKind = 2 // 新拍卖
	ChangePhase   ChangeKind = 3 // 阶段变化
	ChangeBid     ChangeKind = 4 // 领先出价变化
	ChangeOther   ChangeKind = 5 // 结束时间顺延等
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeFirst:
		return "first"
	case ChangeAuction:
		return "auction"
	case ChangePhase:
		return "phase"
	case ChangeBid:
		return "bid"
	case ChangeOther:
		return "other"
	default:
		return "none"
	}
}

// Diff 判定从 prev 到 next 的主要变化；prev 为 nil 表示首次观察
func Diff(prev *Snapshot, next Snapshot) ChangeKind {
	switch {
	case prev == nil:
		return ChangeFirst
	case prev.SameLifecycle(next):
		return ChangeNone
	case prev.FactorySequence != next.FactorySequence || prev.AuctionAddress != next.AuctionAddress:
		return ChangeAuction
	case prev.Phase != next.Phase || prev.State != next.State || prev.Settled != next.Settled:
		return ChangePhase
	case prev.Amount != next.Amount || prev.Bidder != next.Bidder:
		return ChangeBid
	default:
		return ChangeOther
	}
}
