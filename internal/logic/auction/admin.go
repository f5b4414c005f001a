package auction

import (
	"context"

	"auction-factory-sol/internal/program/auctionfactory"
	"auction-factory-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	solTypes "github.com/blocto/solana-go-sdk/types"
)

// 单笔交易 1232 字节上限，扣除签名、账户表与其他参数后留给 uri 列表的预算
const maxUriBytesPerTx = 800

// InitializeFactory 初始化工厂，config 必须已经初始化
func (c *Client) InitializeFactory(ctx context.Context, data types.AuctionFactoryData, treasury common.PublicKey, payer solTypes.Account) (string, error) {
	if _, err := c.ValidateConfigInitialized(ctx); err != nil {
		return "", err
	}
	factory, factoryBump, err := c.FactoryAddress()
	if err != nil {
		return "", err
	}
	config, configBump, err := c.ConfigAddress()
	if err != nil {
		return "", err
	}

	ix := auctionfactory.InitializeAuctionFactory(auctionfactory.InitializeAuctionFactoryParam{
		ProgramID:      c.ProgramID(),
		FactoryBump:    factoryBump,
		FactorySeed:    c.factorySeed,
		ConfigBump:     configBump,
		ConfigSeed:     c.configSeed,
		Data:           toDataLayout(data),
		AuctionFactory: factory,
		Config:         config,
		Treasury:       treasury,
		Payer:          payer.PublicKey,
	})
	return c.submit(ctx, "initialize_auction_factory", payer, nil, ix)
}

// InitializeConfig 创建容量为 maxSupply 的拍品描述缓冲区
func (c *Client) InitializeConfig(ctx context.Context, maxSupply uint32, payer solTypes.Account) (string, error) {
	if maxSupply == 0 {
		return "", types.Preconditionf("max supply must be positive")
	}
	config, configBump, err := c.ConfigAddress()
	if err != nil {
		return "", err
	}
	ix := auctionfactory.InitializeConfig(auctionfactory.InitializeConfigParam{
		ProgramID:  c.ProgramID(),
		ConfigBump: configBump,
		ConfigSeed: c.configSeed,
		MaxSupply:  maxSupply,
		Config:     config,
		Payer:      payer.PublicKey,
	})
	return c.submit(ctx, "initialize_config", payer, nil, ix)
}

// AddUrisToConfig 追加拍品描述，按交易大小分批提交；返回已成功提交的签名，遇到失败立即停止
func (c *Client) AddUrisToConfig(ctx context.Context, uris []string, payer solTypes.Account) ([]string, error) {
	if _, err := c.ValidateFactoryInitialized(ctx); err != nil {
		return nil, err
	}
	if _, err := c.ValidateConfigInitialized(ctx); err != nil {
		return nil, err
	}
	batches, err := ChunkUris(uris, maxUriBytesPerTx)
	if err != nil {
		return nil, err
	}

	factory, _, err := c.FactoryAddress()
	if err != nil {
		return nil, err
	}
	config, configBump, err := c.ConfigAddress()
	if err != nil {
		return nil, err
	}

	sigs := make([]string, 0, len(batches))
	for _, batch := range batches {
		ix := auctionfactory.AddUrisToConfig(auctionfactory.AddUrisToConfigParam{
			ProgramID:      c.ProgramID(),
			ConfigBump:     configBump,
			ConfigSeed:     c.configSeed,
			Uris:           batch,
			Payer:          payer.PublicKey,
			AuctionFactory: factory,
			Config:         config,
		})
		sig, err := c.submit(ctx, "add_uris_to_config", payer, nil, ix)
		if err != nil {
			return sigs, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// ChunkUris 按 borsh 编码后的字节数分组（每项 4 字节长度前缀 + 内容）
func ChunkUris(uris []string, budget int) ([][]string, error) {
	var (
		batches [][]string
		current []string
		size    int
	)
	for _, uri := range uris {
		n := 4 + len(uri)
		if n > budget {
			return nil, types.Preconditionf("uri too long for a single transaction: %d bytes", len(uri))
		}
		if size+n > budget && len(current) > 0 {
			batches = append(batches, current)
			current, size = nil, 0
		}
		current = append(current, uri)
		size += n
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}

// ToggleFactoryStatus 切换工厂激活状态
func (c *Client) ToggleFactoryStatus(ctx context.Context, payer solTypes.Account) (string, error) {
	p, err := c.adminParam(ctx, payer)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, "toggle_auction_factory_status", payer, nil, auctionfactory.ToggleAuctionFactoryStatus(p))
}

// ModifyFactoryData 更新拍卖参数，只影响之后创建的拍卖
func (c *Client) ModifyFactoryData(ctx context.Context, data types.AuctionFactoryData, payer solTypes.Account) (string, error) {
	p, err := c.adminParam(ctx, payer)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, "modify_auction_factory_data", payer, nil, auctionfactory.ModifyAuctionFactoryData(p, toDataLayout(data)))
}

func (c *Client) UpdateTreasury(ctx context.Context, treasury common.PublicKey, payer solTypes.Account) (string, error) {
	p, err := c.adminParam(ctx, payer)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, "update_treasury", payer, nil, auctionfactory.UpdateTreasury(p, treasury))
}

func (c *Client) UpdateAuthority(ctx context.Context, newAuthority common.PublicKey, payer solTypes.Account) (string, error) {
	p, err := c.adminParam(ctx, payer)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, "update_authority", payer, nil, auctionfactory.UpdateAuthority(p, newAuthority))
}

// adminParam 权限由程序校验，客户端只确认工厂存在
func (c *Client) adminParam(ctx context.Context, payer solTypes.Account) (auctionfactory.FactoryAdminParam, error) {
	factory, err := c.ValidateFactoryInitialized(ctx)
	if err != nil {
		return auctionfactory.FactoryAdminParam{}, err
	}
	_, bump, err := c.FactoryAddress()
	if err != nil {
		return auctionfactory.FactoryAdminParam{}, err
	}
	return auctionfactory.FactoryAdminParam{
		ProgramID:      c.ProgramID(),
		FactoryBump:    bump,
		FactorySeed:    c.factorySeed,
		Payer:          payer.PublicKey,
		AuctionFactory: factory.Address,
	}, nil
}

func toDataLayout(d types.AuctionFactoryData) auctionfactory.FactoryDataLayout {
	return auctionfactory.FactoryDataLayout{
		TimeBuffer:               d.TimeBuffer,
		MinBidPercentageIncrease: d.MinBidPercentageIncrease,
		MinReservePrice:          d.MinReservePrice,
		Duration:                 d.Duration,
	}
}
