package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"auction-factory-sol/internal/logic/phase"
	"auction-factory-sol/internal/logic/progress"
	"auction-factory-sol/internal/mq"
	"auction-factory-sol/internal/types"
	"auction-factory-sol/internal/utils"
	"auction-factory-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/common"
)

// AuctionReader 监听所需的只读能力，*auction.Client 直接满足
type AuctionReader interface {
	FactoryAddress() (common.PublicKey, uint8, error)
	FetchCurrentAuction(ctx context.Context) (*types.AuctionFactory, *types.Auction, error)
}

// EventPublisher 生命周期事件出口，为 nil 时只记日志
type EventPublisher interface {
	Publish(ctx context.Context, jobs []*mq.KafkaJob) error
}

type WatchOption struct {
	Interval   time.Duration
	Topic      string
	Partitions int32
	Now        func() time.Time // 测试注入
}

// AuctionWatchService 周期性读取当前拍卖，生命周期变化时记录并发布事件。
// 定时触发之外还可以被 Trigger 提前唤醒（geyser 账户推送）。
type AuctionWatchService struct {
	reader    AuctionReader
	progress  *progress.ProgressManager
	publisher EventPublisher
	opt       WatchOption

	ctx     context.Context
	cancel  context.CancelCauseFunc
	nudge   chan struct{}
	running sync.Mutex // 同一时刻只有一次刷新
	once    sync.Once

	// 受 running 保护
	lastAuction string
	lastState   phase.State
}

func NewAuctionWatchService(reader AuctionReader, pm *progress.ProgressManager, publisher EventPublisher, opt WatchOption) *AuctionWatchService {
	if opt.Interval <= 0 {
		opt.Interval = 5 * time.Second
	}
	if opt.Partitions <= 0 {
		opt.Partitions = 1
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &AuctionWatchService{
		reader:    reader,
		progress:  pm,
		publisher: publisher,
		opt:       opt,
		ctx:       ctx,
		cancel:    cancel,
		nudge:     make(chan struct{}, 1),
	}
}

// Start 阻塞直到 Stop，满足 go-zero service.Service
func (s *AuctionWatchService) Start() {
	logger.Infof("[AuctionWatch] 启动, interval=%v", s.opt.Interval)
	s.refresh()

	ticker := time.NewTicker(s.opt.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		case <-s.nudge:
		}
		s.refresh()
	}
}

func (s *AuctionWatchService) Stop() {
	s.once.Do(func() {
		s.cancel(errors.New("AuctionWatchService stop"))
		logger.Infof("[AuctionWatch] 已停止")
	})
}

// Trigger 请求尽快刷新一次，多次触发会合并
func (s *AuctionWatchService) Trigger() {
	select {
	case s.nudge <- struct{}{}:
	default:
	}
}

func (s *AuctionWatchService) refresh() {
	err := s.RefreshOnce(s.ctx)
	if err == nil || s.ctx.Err() != nil {
		return
	}
	if types.IsRetryable(err) {
		logger.Warnf("[AuctionWatch] 刷新失败，下个周期重试: %v", err)
		return
	}
	logger.Errorf("[AuctionWatch] 刷新失败: %v", err)
}

// RefreshOnce 读取 -> 判定 -> 比较快照 -> 发布。快照先于发布写入，发布失败的事件不补发
func (s *AuctionWatchService) RefreshOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[AuctionWatch] refresh panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("refresh panic: %v", r)
		}
	}()
	s.running.Lock()
	defer s.running.Unlock()

	factoryAddr, _, err := s.reader.FactoryAddress()
	if err != nil {
		return err
	}

	// 1. 读取工厂与当前拍卖
	factory, auction, err := s.reader.FetchCurrentAuction(ctx)
	if err != nil {
		return err
	}

	// 2. 生成快照并与上次比较
	now := s.opt.Now().Unix()
	if auction != nil && s.staleRead(auction, now) {
		return nil
	}
	snap := BuildSnapshot(factory, auction, now)
	kind, prev := s.progress.Observe(ctx, factoryAddr.ToBase58(), snap)
	if kind == progress.ChangeNone {
		return nil
	}
	logChange(kind, prev, snap)

	// 3. 发布事件
	if s.publisher == nil {
		return nil
	}
	job, err := s.buildJob(factoryAddr, kind, snap)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, []*mq.KafkaJob{job}); err != nil {
		return fmt.Errorf("publish auction_phase: %w", err)
	}
	return nil
}

// staleRead 同一场拍卖的状态只前进，出现回退说明读到了落后的 RPC 节点，丢弃本次结果
func (s *AuctionWatchService) staleRead(auction *types.Auction, now int64) bool {
	addr := auction.Address.ToBase58()
	st := phase.StateOf(auction, now)
	if addr == s.lastAuction && st != s.lastState && !phase.CanTransition(s.lastState, st) {
		// 本地时钟快于链上时，临近结束的出价顺延会让 ended 回到 ready_to_bid
		if s.lastState != phase.StateEnded || st != phase.StateReadyToBid {
			logger.Warnf("[AuctionWatch] 拍卖 %s 状态回退 %s -> %s，忽略本次读取", addr, s.lastState, st)
			return true
		}
	}
	s.lastAuction, s.lastState = addr, st
	return false
}

// BuildSnapshot auction 为 nil 时只记录工厂序号与阶段
func BuildSnapshot(factory *types.AuctionFactory, auction *types.Auction, now int64) progress.Snapshot {
	snap := progress.Snapshot{
		FactorySequence: factory.Sequence,
		Phase:           phase.Classify(factory, auction, now).String(),
		ObservedAt:      now,
	}
	if auction == nil {
		return snap
	}
	snap.AuctionAddress = auction.Address.ToBase58()
	snap.State = phase.StateOf(auction, now).String()
	snap.Amount = auction.Amount
	snap.EndTime = auction.EndTime
	snap.Settled = auction.Settled
	if auction.HasBidder() {
		snap.Bidder = auction.Bidder.ToBase58()
	}
	return snap
}

func (s *AuctionWatchService) buildJob(factory common.PublicKey, kind progress.ChangeKind, snap progress.Snapshot) (*mq.KafkaJob, error) {
	value, err := utils.EncodeFields(utils.EventTypeAuctionPhase, map[string]any{
		"type":     "auction_phase",
		"change":   kind.String(),
		"factory":  factory.ToBase58(),
		"sequence": snap.FactorySequence,
		"auction":  snap.AuctionAddress,
		"phase":    snap.Phase,
		"state":    snap.State,
		"amount":   snap.Amount,
		"bidder":   snap.Bidder,
		"end_time": snap.EndTime,
		"settled":  snap.Settled,
	})
	if err != nil {
		return nil, err
	}

	// 还没有拍卖时按工厂地址分区
	key := factory
	if snap.AuctionAddress != "" {
		key = common.PublicKeyFromString(snap.AuctionAddress)
	}
	return &mq.KafkaJob{
		Topic:     s.opt.Topic,
		Partition: utils.PartitionForKey(key, s.opt.Partitions),
		Key:       key.Bytes(),
		Value:     value,
	}, nil
}

func logChange(kind progress.ChangeKind, prev *progress.Snapshot, next progress.Snapshot) {
	switch {
	case prev == nil:
		logger.Infof("[AuctionWatch] 首次观察: seq=%d phase=%s state=%s", next.FactorySequence, next.Phase, next.State)
	case kind == progress.ChangeBid:
		logger.Infof("[AuctionWatch] 新出价: seq=%d amount=%d bidder=%s", next.FactorySequence, next.Amount, next.Bidder)
	default:
		logger.Infof("[AuctionWatch] %s 变化: seq %d -> %d, phase %s -> %s, state %s -> %s",
			kind, prev.FactorySequence, next.FactorySequence, prev.Phase, next.Phase, prev.State, next.State)
	}
}
