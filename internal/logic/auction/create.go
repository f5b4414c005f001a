package auction

import (
	"context"
	"fmt"

	"auction-factory-sol/internal/consts"
	"auction-factory-sol/internal/program/auctionfactory"
	"auction-factory-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	solTypes "github.com/blocto/solana-go-sdk/types"
)

// CreateVariant 创建拍卖的两种指令形态，由 sequence 一次性选定
type CreateVariant interface {
	isCreateVariant()
}

// CreateFirst 第一场拍卖，没有前驱
type CreateFirst struct {
	Sequence uint64
}

// CreateNext 后续拍卖必须显式引用前一场拍卖的地址与 bump
type CreateNext struct {
	CurrentSequence uint64
	NextSequence    uint64
	CurrentAddress  common.PublicKey
	CurrentBump     uint8
}

func (CreateFirst) isCreateVariant() {}
func (CreateNext) isCreateVariant()  {}

// SelectCreateVariant sequence == 1 为首场，其余引用 sequence-1
func (c *Client) SelectCreateVariant(sequence uint64) (CreateVariant, error) {
	if sequence == 0 {
		return nil, types.Preconditionf("auction sequence starts at %d", consts.FirstSequence)
	}
	if sequence == consts.FirstSequence {
		return CreateFirst{Sequence: sequence}, nil
	}

	current := sequence - 1
	addr, bump, err := c.AuctionAddress(current)
	if err != nil {
		return nil, err
	}
	return CreateNext{
		CurrentSequence: current,
		NextSequence:    sequence,
		CurrentAddress:  addr,
		CurrentBump:     bump,
	}, nil
}

// CreateAuction 创建第 sequence 场拍卖。工厂必须已初始化且处于激活状态。
func (c *Client) CreateAuction(ctx context.Context, sequence uint64, payer solTypes.Account) (string, error) {
	if _, err := c.validateFactoryActive(ctx); err != nil {
		return "", err
	}
	ixs, err := c.createAuctionInstructions(sequence, payer.PublicKey)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, "create_auction", payer, nil, ixs...)
}

func (c *Client) createAuctionInstructions(sequence uint64, payer common.PublicKey) ([]solTypes.Instruction, error) {
	variant, err := c.SelectCreateVariant(sequence)
	if err != nil {
		return nil, err
	}
	ref, err := c.auctionRef(sequence)
	if err != nil {
		return nil, err
	}

	switch v := variant.(type) {
	case CreateFirst:
		return []solTypes.Instruction{
			auctionfactory.CreateFirstAuction(auctionfactory.CreateFirstAuctionParam{
				ProgramID:      ref.ProgramID,
				FactoryBump:    ref.FactoryBump,
				FactorySeed:    ref.FactorySeed,
				Sequence:       v.Sequence,
				AuctionBump:    ref.AuctionBump,
				Payer:          payer,
				AuctionFactory: ref.AuctionFactory,
				Auction:        ref.Auction,
			}),
		}, nil
	case CreateNext:
		return []solTypes.Instruction{
			auctionfactory.CreateNextAuction(auctionfactory.CreateNextAuctionParam{
				ProgramID:          ref.ProgramID,
				FactoryBump:        ref.FactoryBump,
				FactorySeed:        ref.FactorySeed,
				CurrentSequence:    v.CurrentSequence,
				NextSequence:       v.NextSequence,
				CurrentAuctionBump: v.CurrentBump,
				NextAuctionBump:    ref.AuctionBump,
				Payer:              payer,
				AuctionFactory:     ref.AuctionFactory,
				CurrentAuction:     v.CurrentAddress,
				NextAuction:        ref.Auction,
			}),
		}, nil
	default:
		return nil, fmt.Errorf("unknown create variant %T", variant)
	}
}
