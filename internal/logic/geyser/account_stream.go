package geyser

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"auction-factory-sol/internal/config"
	"auction-factory-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/common"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

const maxBackoffFactor = 8

// AccountUpdate 订阅推送的一次账户写入
type AccountUpdate struct {
	Pubkey common.PublicKey
	Owner  common.PublicKey
	Slot   uint64
}

// AccountStream 订阅工厂账户与拍卖程序名下账户的写入，每次推送回调 onUpdate。
// 断流后按退避间隔重连，直到 Stop。
type AccountStream struct {
	cfg      config.GeyserConfig
	factory  common.PublicKey
	program  common.PublicKey
	onUpdate func(AccountUpdate)

	mu     sync.Mutex
	conn   *grpc.ClientConn
	client pb.GeyserClient

	ctx    context.Context
	cancel context.CancelCauseFunc
}

func NewAccountStream(cfg config.GeyserConfig, factory, program common.PublicKey, onUpdate func(AccountUpdate)) (*AccountStream, error) {
	target, creds := dialTarget(cfg.Endpoint)
	conn, err := grpc.NewClient(
		target,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(64*1024*1024)),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("geyser client %s: %w", cfg.Endpoint, err)
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	return &AccountStream{
		cfg:      cfg,
		factory:  factory,
		program:  program,
		onUpdate: onUpdate,
		conn:     conn,
		client:   pb.NewGeyserClient(conn),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start 阻塞运行订阅循环，直到 Stop
func (s *AccountStream) Start() {
	attempts := 0
	for s.ctx.Err() == nil {
		if attempts > 0 {
			wait := backoff(time.Duration(s.cfg.ReconnectIntervalSec)*time.Second, attempts)
			logger.Infof("[Geyser] %v 后第 %d 次重连", wait, attempts)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(wait):
			}
		}

		received, err := s.subscribeOnce(s.ctx)
		if s.ctx.Err() != nil {
			return
		}
		if received {
			attempts = 0 // 收到过数据说明连接可用，退避重新计
		}
		attempts++
		logger.Warnf("[Geyser] 订阅中断: %v", err)
	}
}

func (s *AccountStream) Stop() {
	s.cancel(errors.New("AccountStream stop"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	logger.Infof("[Geyser] 已停止")
}

// subscribeOnce 建立一次订阅并持续接收，返回是否收到过任何推送
func (s *AccountStream) subscribeOnce(parent context.Context) (bool, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// 1. 建立流并发送订阅请求
	if s.cfg.XToken != "" {
		ctx = metadata.NewOutgoingContext(ctx, metadata.New(map[string]string{"x-token": s.cfg.XToken}))
	}
	stream, err := s.client.Subscribe(ctx)
	if err != nil {
		return false, fmt.Errorf("subscribe: %w", err)
	}
	sendTimeout := time.Duration(s.cfg.SendTimeoutSec) * time.Second
	if err := sendWithTimeout(ctx, stream.Send, BuildSubscribeRequest(s.factory, s.program), sendTimeout); err != nil {
		return false, fmt.Errorf("send subscribe request: %w", err)
	}
	logger.Infof("[Geyser] 已订阅 factory=%s program=%s", s.factory.ToBase58(), s.program.ToBase58())

	// 2. 应用层心跳
	go s.pingLoop(ctx, stream)

	// 3. 接收循环
	received := false
	for {
		update, err := stream.Recv()
		if err != nil {
			return received, err
		}
		received = true
		s.handle(update)
	}
}

func (s *AccountStream) handle(update *pb.SubscribeUpdate) {
	acc := update.GetAccount()
	if acc == nil || acc.GetAccount() == nil {
		return // ping/pong
	}
	info := acc.GetAccount()
	if s.onUpdate != nil {
		s.onUpdate(AccountUpdate{
			Pubkey: common.PublicKeyFromBytes(info.GetPubkey()),
			Owner:  common.PublicKeyFromBytes(info.GetOwner()),
			Slot:   acc.GetSlot(),
		})
	}
}

// BuildSubscribeRequest 工厂账户单独列出，拍卖账户按 owner 匹配
func BuildSubscribeRequest(factory, program common.PublicKey) *pb.SubscribeRequest {
	commitment := pb.CommitmentLevel_CONFIRMED
	return &pb.SubscribeRequest{
		Accounts: map[string]*pb.SubscribeRequestFilterAccounts{
			"auction_factory": {Account: []string{factory.ToBase58()}},
			"auction_program": {Owner: []string{program.ToBase58()}},
		},
		Commitment: &commitment,
	}
}

func (s *AccountStream) pingLoop(ctx context.Context, stream pb.Geyser_SubscribeClient) {
	ticker := time.NewTicker(time.Duration(s.cfg.PingIntervalSec) * time.Second)
	defer ticker.Stop()
	sendTimeout := time.Duration(s.cfg.SendTimeoutSec) * time.Second
	var id int32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id++
			err := sendWithTimeout(ctx, stream.Send, &pb.SubscribeRequest{Ping: &pb.SubscribeRequestPing{Id: id}}, sendTimeout)
			if err != nil {
				// 只记录，断流由 Recv 发现
				logger.Warnf("[Geyser] ping 失败: %v", err)
			}
		}
	}
}

// 带超时的 Send
func sendWithTimeout[T any](ctx context.Context, sendFunc func(T) error, req T, timeout time.Duration) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sendFunc(req)
	}()

	select {
	case <-timeoutCtx.Done():
		return timeoutCtx.Err()
	case err := <-done:
		return err
	}
}

// backoff 线性增长，最多 maxBackoffFactor 倍
func backoff(base time.Duration, attempts int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempts > maxBackoffFactor {
		attempts = maxBackoffFactor
	}
	if attempts < 1 {
		attempts = 1
	}
	return base * time.Duration(attempts)
}

// dialTarget http:// 前缀使用明文，其余走 TLS
func dialTarget(endpoint string) (string, credentials.TransportCredentials) {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), insecure.NewCredentials()
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	default:
		return endpoint, credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
}
