package auction

import (
	"context"

	"auction-factory-sol/internal/program/auctionfactory"
	"auction-factory-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	solTypes "github.com/blocto/solana-go-sdk/types"
)

// PlaceBid 对第 sequence 场拍卖出价 amount lamports。
// 当前领先者必须作为账户传入（程序向其退款），因此每次都重新读取拍卖账户。
// 出价是否足够完全由程序判定；被拒绝说明有人抢先，不会自动重试。
func (c *Client) PlaceBid(ctx context.Context, sequence, amount uint64, bidder solTypes.Account) (string, error) {
	if _, err := c.validateFactoryActive(ctx); err != nil {
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

	ix := placeBidInstruction(ref, auction, amount, bidder.PublicKey)
	return c.submit(ctx, "place_bid", bidder, nil, ix)
}

// placeBidInstruction 还没有人出价时以出价者自身占位领先者账户
func placeBidInstruction(ref auctionfactory.AuctionRef, auction *types.Auction, amount uint64, bidder common.PublicKey) solTypes.Instruction {
	leading := bidder
	if auction.HasBidder() {
		leading = auction.Bidder
	}
	return auctionfactory.PlaceBid(auctionfactory.PlaceBidParam{
		AuctionRef:    ref,
		Amount:        amount,
		Bidder:        bidder,
		LeadingBidder: leading,
	})
}
