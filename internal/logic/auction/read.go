package auction

import (
	"context"
	"fmt"

	"auction-factory-sol/internal/program/auctionfactory"
	"auction-factory-sol/internal/types"
	"auction-factory-sol/pkg/utils"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
)

// FetchFactory 读取并解码工厂账户
func (c *Client) FetchFactory(ctx context.Context, address common.PublicKey) (*types.AuctionFactory, error) {
	data, err := c.fetchAccountData(ctx, "fetch_factory", address)
	if err != nil {
		return nil, err
	}
	return auctionfactory.DecodeAuctionFactory(address, data)
}

// FetchAuction 读取并解码拍卖账户
func (c *Client) FetchAuction(ctx context.Context, address common.PublicKey) (*types.Auction, error) {
	data, err := c.fetchAccountData(ctx, "fetch_auction", address)
	if err != nil {
		return nil, err
	}
	return auctionfactory.DecodeAuction(address, data)
}

// FetchConfig 读取并解码拍品描述缓冲区
func (c *Client) FetchConfig(ctx context.Context, address common.PublicKey) (*types.Config, error) {
	data, err := c.fetchAccountData(ctx, "fetch_config", address)
	if err != nil {
		return nil, err
	}
	return auctionfactory.DecodeConfig(address, data)
}

// FetchCurrentAuction 读取工厂并定位当前拍卖；工厂还没有创建过拍卖时返回 nil auction
func (c *Client) FetchCurrentAuction(ctx context.Context) (*types.AuctionFactory, *types.Auction, error) {
	factoryAddr, _, err := c.FactoryAddress()
	if err != nil {
		return nil, nil, err
	}
	factory, err := c.FetchFactory(ctx, factoryAddr)
	if err != nil {
		return nil, nil, err
	}
	if factory.Sequence == 0 {
		return factory, nil, nil
	}

	auctionAddr, _, err := c.deriver.AuctionAddress(factory.Sequence, factoryAddr)
	if err != nil {
		return nil, nil, err
	}
	auction, err := c.FetchAuction(ctx, auctionAddr)
	if err != nil {
		return factory, nil, err
	}
	return factory, auction, nil
}

// FetchAuctionBySequence 按序号读取历史或当前拍卖
func (c *Client) FetchAuctionBySequence(ctx context.Context, sequence uint64) (*types.Auction, error) {
	addr, _, err := c.AuctionAddress(sequence)
	if err != nil {
		return nil, err
	}
	return c.FetchAuction(ctx, addr)
}

// FetchAuctions 并发读取 [from, to] 区间的拍卖，结果按序号升序；任一失败即返回错误
func (c *Client) FetchAuctions(ctx context.Context, from, to uint64) ([]*types.Auction, error) {
	if from == 0 || to < from {
		return nil, types.Preconditionf("invalid sequence range [%d, %d]", from, to)
	}

	seqs := make([]uint64, 0, to-from+1)
	for s := from; s <= to; s++ {
		seqs = append(seqs, s)
	}

	type result struct {
		auction *types.Auction
		err     error
	}
	results := utils.ParallelMap(seqs, c.workers, func(seq uint64) result {
		a, err := c.FetchAuctionBySequence(ctx, seq)
		if err != nil {
			return result{err: fmt.Errorf("auction %d: %w", seq, err)}
		}
		return result{auction: a}
	})

	auctions := make([]*types.Auction, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		auctions = append(auctions, r.auction)
	}
	return auctions, nil
}

// fetchAccount 读取原始账户；RPC 对不存在的账户返回零值，这里转换为 ErrNotFound
func (c *Client) fetchAccount(ctx context.Context, op string, address common.PublicKey) (client.AccountInfo, error) {
	info, err := c.conn.GetAccountInfo(ctx, address.ToBase58())
	if err != nil {
		return client.AccountInfo{}, classifyRPCError(op, err)
	}
	if info.Lamports == 0 && len(info.Data) == 0 {
		return client.AccountInfo{}, fmt.Errorf("%w: %s", types.ErrNotFound, address.ToBase58())
	}
	return info, nil
}

func (c *Client) fetchAccountData(ctx context.Context, op string, address common.PublicKey) ([]byte, error) {
	info, err := c.fetchAccount(ctx, op, address)
	if err != nil {
		return nil, err
	}
	return info.Data, nil
}
