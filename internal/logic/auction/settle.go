package auction

import (
	"context"
	"fmt"

	"auction-factory-sol/internal/pda"
	"auction-factory-sol/internal/program/auctionfactory"
	"auction-factory-sol/internal/tools"
	"auction-factory-sol/internal/types"
	"auction-factory-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	solTypes "github.com/blocto/solana-go-sdk/types"
)

// settlePlan 结算前从链上状态推导出的全部账户
type settlePlan struct {
	ref                 auctionfactory.AuctionRef
	treasury            common.PublicKey
	mint                common.PublicKey
	bidder              *common.PublicKey // nil 表示无人出价
	bidderTokenAccount  common.PublicKey
	auctionTokenAccount common.PublicKey
	metadata            common.PublicKey
	createBidderAccount bool
}

// SettleAuction 结算第 sequence 场拍卖：
// 中标者 ATA 未初始化时在同一笔交易里先创建；无人出价时使用一次性身份的 ATA 占位，拍品由程序销毁。
func (c *Client) SettleAuction(ctx context.Context, sequence uint64, payer solTypes.Account) (string, error) {
	factory, err := c.ValidateFactoryInitialized(ctx)
	if err != nil {
		return "", err
	}
	ref, err := c.auctionRef(sequence)
	if err != nil {
		return "", err
	}
	auction, err := c.FetchAuction(ctx, ref.Auction)
	if err != nil {
		return "", err
	}
	if !auction.HasResource() {
		return "", types.Preconditionf("auction %d has no resource to settle", sequence)
	}

	plan, err := c.planSettle(ctx, ref, factory, auction)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, "settle_auction", payer, nil, settleInstructions(plan, payer.PublicKey)...)
}

func (c *Client) planSettle(ctx context.Context, ref auctionfactory.AuctionRef, factory *types.AuctionFactory, auction *types.Auction) (*settlePlan, error) {
	mint := *auction.Resource
	plan := &settlePlan{
		ref:      ref,
		treasury: factory.Treasury,
		mint:     mint,
	}

	var err error
	if plan.auctionTokenAccount, _, err = pda.AssociatedTokenAddress(ref.Auction, mint); err != nil {
		return nil, err
	}
	if plan.metadata, _, err = pda.MetadataAddress(mint); err != nil {
		return nil, err
	}

	if !auction.HasBidder() {
		placeholder := solTypes.NewAccount()
		if plan.bidderTokenAccount, _, err = pda.AssociatedTokenAddress(placeholder.PublicKey, mint); err != nil {
			return nil, err
		}
		logger.Infof("[AuctionClient] 拍卖 %d 无人出价, 使用占位账户 %s", ref.Sequence, plan.bidderTokenAccount.ToBase58())
		return plan, nil
	}

	bidder := auction.Bidder
	plan.bidder = &bidder
	if plan.bidderTokenAccount, _, err = pda.AssociatedTokenAddress(bidder, mint); err != nil {
		return nil, err
	}
	info, err := c.conn.GetAccountInfo(ctx, plan.bidderTokenAccount.ToBase58())
	if err != nil {
		return nil, classifyRPCError("settle_auction", fmt.Errorf("get bidder token account: %w", err))
	}
	plan.createBidderAccount = !tools.IsTokenAccountInitialized(info.Lamports, info.Owner, len(info.Data))
	return plan, nil
}

func settleInstructions(plan *settlePlan, payer common.PublicKey) []solTypes.Instruction {
	ixs := make([]solTypes.Instruction, 0, 2)
	if plan.createBidderAccount && plan.bidder != nil {
		ixs = append(ixs, associated_token_account.Create(associated_token_account.CreateParam{
			Funder:                 payer,
			Owner:                  *plan.bidder,
			Mint:                   plan.mint,
			AssociatedTokenAccount: plan.bidderTokenAccount,
		}))
	}
	return append(ixs, auctionfactory.SettleAuction(auctionfactory.SettleAuctionParam{
		AuctionRef:          plan.ref,
		Payer:               payer,
		Treasury:            plan.treasury,
		Metadata:            plan.metadata,
		BidderTokenAccount:  plan.bidderTokenAccount,
		AuctionTokenAccount: plan.auctionTokenAccount,
		Mint:                plan.mint,
	}))
}

// CloseTarget 指定要回收租金的拍卖 token 账户，可以是任意一场拍卖
type CloseTarget struct {
	Auction      common.PublicKey
	Bump         uint8
	Sequence     uint64
	TokenAccount common.PublicKey
}

// CloseResourceTokenAccount 将拍卖已清空的 token 账户租金退回 treasury，任何人任何时候都可调用
func (c *Client) CloseResourceTokenAccount(ctx context.Context, target CloseTarget, payer solTypes.Account) (string, error) {
	factory, err := c.ValidateFactoryInitialized(ctx)
	if err != nil {
		return "", err
	}
	_, factoryBump, err := c.FactoryAddress()
	if err != nil {
		return "", err
	}

	ix := auctionfactory.CloseAuctionTokenAccount(auctionfactory.CloseAuctionTokenAccountParam{
		AuctionRef: auctionfactory.AuctionRef{
			ProgramID:      c.ProgramID(),
			FactoryBump:    factoryBump,
			FactorySeed:    c.factorySeed,
			AuctionFactory: factory.Address,
			AuctionBump:    target.Bump,
			Auction:        target.Auction,
			Sequence:       target.Sequence,
		},
		Payer:               payer.PublicKey,
		Treasury:            factory.Treasury,
		AuctionTokenAccount: target.TokenAccount,
	})
	return c.submit(ctx, "close_auction_token_account", payer, nil, ix)
}

// CloseTargetFor 按序号推导 CloseTarget，拍品 token 账户为拍卖 PDA 持有的 ATA
func (c *Client) CloseTargetFor(sequence uint64, mint common.PublicKey) (CloseTarget, error) {
	addr, bump, err := c.AuctionAddress(sequence)
	if err != nil {
		return CloseTarget{}, err
	}
	tokenAccount, _, err := pda.AssociatedTokenAddress(addr, mint)
	if err != nil {
		return CloseTarget{}, err
	}
	return CloseTarget{Auction: addr, Bump: bump, Sequence: sequence, TokenAccount: tokenAccount}, nil
}
