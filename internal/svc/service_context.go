package svc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"auction-factory-sol/internal/cache"
	"auction-factory-sol/internal/config"
	"auction-factory-sol/internal/logic/auction"
	"auction-factory-sol/internal/logic/progress"
	"auction-factory-sol/internal/mq"
	"auction-factory-sol/internal/types"
	"auction-factory-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/redis/go-redis/v9"
)

const defaultRpcTimeout = 10 * time.Second

// ServiceContext 持有 CLI 与监听服务共用的全部依赖
type ServiceContext struct {
	Config          config.Config
	Rpc             *client.Client
	Auction         *auction.Client
	Redis           *redis.Client // 未配置时为 nil
	MetadataCache   *cache.MetadataCache
	ProgressManager *progress.ProgressManager
	Publisher       *mq.Publisher // 未配置 brokers 时为 nil
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	// 1. RPC 与拍卖客户端
	var programID common.PublicKey
	if c.Program.ProgramID != "" {
		id, err := types.TryPubkeyFromBase58(c.Program.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("program.program_id: %w", err)
		}
		programID = id
	}
	rpcClient := newRpcClient(c.Rpc)
	auctionClient := auction.NewClient(rpcClient, auction.Options{
		ProgramID:   programID,
		FactorySeed: c.Program.FactorySeed,
		ConfigSeed:  c.Program.ConfigSeed,
	})

	sc := &ServiceContext{
		Config:  c,
		Rpc:     rpcClient,
		Auction: auctionClient,
	}

	// 2. Redis（可选），不可用时回落到内存存储
	var metadataStore cache.Store = cache.NewMemoryStore()
	var snapshotStore progress.SnapshotStore
	if c.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Warnf("[ServiceContext] Redis %s 不可用，使用内存存储: %v", c.Redis.Addr, err)
			_ = rdb.Close()
		} else {
			sc.Redis = rdb
			metadataStore = cache.NewRedisStore(rdb, c.Redis.KeyPrefix)
			snapshotStore = progress.NewRedisSnapshotStore(rdb, c.Redis.KeyPrefix)
		}
	}
	sc.MetadataCache = cache.NewMetadataCache(metadataStore, rpcClient)
	sc.ProgressManager = progress.NewProgressManager(snapshotStore)

	logger.Infof("[ServiceContext] 初始化完成, rpc=%s program=%s", c.Rpc.Endpoint, auctionClient.ProgramID().ToBase58())
	return sc, nil
}

// EnablePublisher 创建 Kafka 生产者，仅监听服务需要
func (sc *ServiceContext) EnablePublisher() error {
	if sc.Config.KafkaProducerConf.Brokers == "" || sc.Publisher != nil {
		return nil
	}
	producer, err := mq.NewKafkaProducer(sc.Config.KafkaProducerConf)
	if err != nil {
		return err
	}
	sc.Publisher = mq.NewPublisher(producer, 5*time.Second)
	return nil
}

// newRpcClient 每次 RPC 请求受 timeout_ms 约束，节点无响应时调用方拿到网络错误而不是一直挂起
func newRpcClient(c config.RpcConfig) *client.Client {
	timeout := time.Duration(c.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultRpcTimeout
	}
	return client.New(
		rpc.WithEndpoint(c.Endpoint),
		rpc.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

// Close 关闭服务上下文中的资源
func (sc *ServiceContext) Close() {
	if sc.Publisher != nil {
		sc.Publisher.Close()
	}
	if sc.Redis != nil {
		_ = sc.Redis.Close()
	}
	logger.Sync()
}
