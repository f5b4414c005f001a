package auction

import (
	"context"
	"fmt"

	"auction-factory-sol/internal/consts"
	"auction-factory-sol/internal/pda"
	"auction-factory-sol/internal/program/auctionfactory"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
)

// Connection 是客户端依赖的最小 RPC 能力集合，*client.Client 直接满足
type Connection interface {
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
}

var _ Connection = (*client.Client)(nil)

type Options struct {
	ProgramID   common.PublicKey // 为空时使用默认部署地址
	FactorySeed string
	ConfigSeed  string
	Workers     int // 批量读取的并发上限
}

// Client 是与拍卖工厂程序交互的唯一读写入口。
// 不缓存任何链上状态：每次调用都重新推导地址并重新读取前置条件，失败后可以直接重试。
type Client struct {
	conn        Connection
	deriver     *pda.Deriver
	factorySeed string
	configSeed  string
	workers     int
}

func NewClient(conn Connection, opt Options) *Client {
	programID := opt.ProgramID
	if programID == (common.PublicKey{}) {
		programID = consts.AuctionFactoryProgram
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = consts.CpuCount + 2
	}
	return &Client{
		conn:        conn,
		deriver:     pda.NewDeriver(programID),
		factorySeed: opt.FactorySeed,
		configSeed:  opt.ConfigSeed,
		workers:     workers,
	}
}

func (c *Client) ProgramID() common.PublicKey {
	return c.deriver.ProgramID()
}

func (c *Client) Deriver() *pda.Deriver {
	return c.deriver
}

// FactoryAddress 工厂 PDA 与 bump
func (c *Client) FactoryAddress() (common.PublicKey, uint8, error) {
	return c.deriver.FactoryAddress(c.factorySeed)
}

// ConfigAddress 拍品描述缓冲区 PDA 与 bump
func (c *Client) ConfigAddress() (common.PublicKey, uint8, error) {
	return c.deriver.ConfigAddress(c.configSeed)
}

// AuctionAddress 第 sequence 场拍卖的 PDA 与 bump
func (c *Client) AuctionAddress(sequence uint64) (common.PublicKey, uint8, error) {
	factory, _, err := c.FactoryAddress()
	if err != nil {
		return common.PublicKey{}, 0, err
	}
	return c.deriver.AuctionAddress(sequence, factory)
}

// auctionRef 推导单场拍卖指令共用的种子与地址
func (c *Client) auctionRef(sequence uint64) (auctionfactory.AuctionRef, error) {
	factory, factoryBump, err := c.FactoryAddress()
	if err != nil {
		return auctionfactory.AuctionRef{}, err
	}
	auction, auctionBump, err := c.deriver.AuctionAddress(sequence, factory)
	if err != nil {
		return auctionfactory.AuctionRef{}, fmt.Errorf("derive auction %d: %w", sequence, err)
	}
	return auctionfactory.AuctionRef{
		ProgramID:      c.ProgramID(),
		FactoryBump:    factoryBump,
		FactorySeed:    c.factorySeed,
		AuctionFactory: factory,
		AuctionBump:    auctionBump,
		Auction:        auction,
		Sequence:       sequence,
	}, nil
}
