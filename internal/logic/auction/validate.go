package auction

import (
	"context"
	"errors"
	"fmt"

	"auction-factory-sol/internal/types"
)

// ValidateFactoryInitialized 工厂账户必须存在；不存在时返回 ErrNotInitialized，不发起交易
func (c *Client) ValidateFactoryInitialized(ctx context.Context) (*types.AuctionFactory, error) {
	addr, _, err := c.FactoryAddress()
	if err != nil {
		return nil, err
	}
	factory, err := c.FetchFactory(ctx, addr)
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("%w: auction factory %s", types.ErrNotInitialized, addr.ToBase58())
	}
	if err != nil {
		return nil, err
	}
	return factory, nil
}

// ValidateConfigInitialized 拍品描述缓冲区必须存在
func (c *Client) ValidateConfigInitialized(ctx context.Context) (*types.Config, error) {
	addr, _, err := c.ConfigAddress()
	if err != nil {
		return nil, err
	}
	cfg, err := c.FetchConfig(ctx, addr)
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("%w: config %s", types.ErrNotInitialized, addr.ToBase58())
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateFactoryActive 创建与出价前要求工厂已初始化且处于激活状态
func (c *Client) validateFactoryActive(ctx context.Context) (*types.AuctionFactory, error) {
	factory, err := c.ValidateFactoryInitialized(ctx)
	if err != nil {
		return nil, err
	}
	if !factory.IsActive {
		return nil, fmt.Errorf("%w: %s", types.ErrInactive, factory.Address.ToBase58())
	}
	return factory, nil
}
