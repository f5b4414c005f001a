package auction

import (
	"context"
	"fmt"

	"auction-factory-sol/internal/consts"
	"auction-factory-sol/internal/pda"
	"auction-factory-sol/internal/program/auctionfactory"
	"auction-factory-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	solTypes "github.com/blocto/solana-go-sdk/types"
)

// MintResourceToAuction 为第 sequence 场拍卖铸造唯一拍品：
// 新建 mint（mint/freeze authority 均为拍卖 PDA）、创建拍卖持有的 ATA，再由程序以 PDA 身份铸造 1 个单位。
// 拍品是否已存在由程序原子校验，客户端不做预检。
func (c *Client) MintResourceToAuction(ctx context.Context, sequence uint64, mint, payer solTypes.Account) (string, error) {
	rent, err := c.conn.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", classifyRPCError("mint_to_auction", err)
	}
	ixs, err := c.mintResourceInstructions(sequence, mint.PublicKey, payer.PublicKey, rent)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, "mint_to_auction", payer, []solTypes.Account{mint}, ixs...)
}

func (c *Client) mintResourceInstructions(sequence uint64, mint, payer common.PublicKey, rentLamports uint64) ([]solTypes.Instruction, error) {
	ref, err := c.auctionRef(sequence)
	if err != nil {
		return nil, err
	}
	tokenAccount, _, err := pda.AssociatedTokenAddress(ref.Auction, mint)
	if err != nil {
		return nil, err
	}

	freezeAuth := ref.Auction
	return []solTypes.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer,
			New:      mint,
			Owner:    consts.TokenProgram,
			Lamports: rentLamports,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   consts.ResourceDecimals,
			Mint:       mint,
			MintAuth:   ref.Auction,
			FreezeAuth: &freezeAuth,
		}),
		associated_token_account.Create(associated_token_account.CreateParam{
			Funder:                 payer,
			Owner:                  ref.Auction,
			Mint:                   mint,
			AssociatedTokenAccount: tokenAccount,
		}),
		auctionfactory.MintToAuction(auctionfactory.MintToAuctionParam{
			AuctionRef:   ref,
			Payer:        payer,
			Mint:         mint,
			TokenAccount: tokenAccount,
		}),
	}, nil
}

// SupplyResource 为已铸造的拍品挂载展示元数据，描述取自 Config 环形缓冲区（游标由程序维护）
func (c *Client) SupplyResource(ctx context.Context, sequence uint64, mint common.PublicKey, payer solTypes.Account) (string, error) {
	cfg, err := c.ValidateConfigInitialized(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := cfg.EntryIndexFor(sequence); !ok {
		// 缓冲区不足由程序拒绝，这里只提示
		logger.Warnf("[AuctionClient] config 缓冲区可能不足: sequence=%d, buffer=%d, max_supply=%d", sequence, len(cfg.Buffer), cfg.MaxSupply)
	}

	ixs, err := c.supplyResourceInstructions(sequence, mint, payer.PublicKey)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, "supply_resource_to_auction", payer, nil, ixs...)
}

func (c *Client) supplyResourceInstructions(sequence uint64, mint, payer common.PublicKey) ([]solTypes.Instruction, error) {
	ref, err := c.auctionRef(sequence)
	if err != nil {
		return nil, err
	}
	config, configBump, err := c.ConfigAddress()
	if err != nil {
		return nil, err
	}
	metadata, _, err := pda.MetadataAddress(mint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata: %w", err)
	}
	edition, _, err := pda.MasterEditionAddress(mint)
	if err != nil {
		return nil, fmt.Errorf("derive master edition: %w", err)
	}

	return []solTypes.Instruction{
		auctionfactory.SupplyResourceToAuction(auctionfactory.SupplyResourceToAuctionParam{
			AuctionRef:    ref,
			ConfigBump:    configBump,
			ConfigSeed:    c.configSeed,
			Payer:         payer,
			Config:        config,
			Metadata:      metadata,
			MasterEdition: edition,
			Mint:          mint,
		}),
	}, nil
}
