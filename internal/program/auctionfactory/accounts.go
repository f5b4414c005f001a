package auctionfactory

import (
	"bytes"
	"fmt"

	"auction-factory-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/near/borsh-go"
)

// 以下结构体字段顺序与整数宽度由链上程序的 schema 决定，不可调整。

type FactoryDataLayout struct {
	TimeBuffer               uint64
	MinBidPercentageIncrease uint64
	MinReservePrice          uint64
	Duration                 uint64
}

type AuctionFactoryLayout struct {
	Bump          uint8
	Sequence      uint64
	Authority     common.PublicKey
	IsActive      bool
	Data          FactoryDataLayout
	InitializedAt int64
	ActiveSince   int64
	Treasury      common.PublicKey
	Config        common.PublicKey
}

type BidLayout struct {
	Bidder    common.PublicKey
	UpdatedAt int64
	Amount    uint64
}

type AuctionLayout struct {
	Bump             uint8
	Sequence         uint64
	Authority        common.PublicKey
	StartTime        int64
	EndTime          int64
	FinalizedEndTime int64
	Settled          bool
	Amount           uint64
	Bidder           common.PublicKey
	BidTime          int64
	Resource         *common.PublicKey // Option<Pubkey>
	Bids             []BidLayout       // 容量由链上程序决定，这里按长度前缀解码
}

type ConfigLayout struct {
	Bump      uint8
	MaxSupply uint32
	UpdateIdx uint32
	IsUpdated bool
	Buffer    []string
}

// DecodeAuctionFactory 解码工厂账户
func DecodeAuctionFactory(address common.PublicKey, data []byte) (*types.AuctionFactory, error) {
	var raw AuctionFactoryLayout
	if err := decodeAccount(AccountAuctionFactory, data, &raw); err != nil {
		return nil, err
	}
	return &types.AuctionFactory{
		Address:   address,
		Bump:      raw.Bump,
		Sequence:  raw.Sequence,
		Authority: raw.Authority,
		IsActive:  raw.IsActive,
		Data: types.AuctionFactoryData{
			Duration:                 raw.Data.Duration,
			TimeBuffer:               raw.Data.TimeBuffer,
			MinBidPercentageIncrease: raw.Data.MinBidPercentageIncrease,
			MinReservePrice:          raw.Data.MinReservePrice,
		},
		InitializedAt: raw.InitializedAt,
		ActiveSince:   raw.ActiveSince,
		Treasury:      raw.Treasury,
		Config:        raw.Config,
	}, nil
}

// DecodeAuction 解码拍卖账户
func DecodeAuction(address common.PublicKey, data []byte) (*types.Auction, error) {
	var raw AuctionLayout
	if err := decodeAccount(AccountAuction, data, &raw); err != nil {
		return nil, err
	}

	bids := make([]types.Bid, 0, len(raw.Bids))
	for _, b := range raw.Bids {
		bids = append(bids, types.Bid{
			Bidder:    b.Bidder,
			Amount:    b.Amount,
			UpdatedAt: b.UpdatedAt,
		})
	}

	var resource *common.PublicKey
	if raw.Resource != nil && !types.IsEmptyPubkey(*raw.Resource) {
		r := *raw.Resource
		resource = &r
	}

	return &types.Auction{
		Address:          address,
		Bump:             raw.Bump,
		Sequence:         raw.Sequence,
		Authority:        raw.Authority,
		StartTime:        raw.StartTime,
		EndTime:          raw.EndTime,
		FinalizedEndTime: raw.FinalizedEndTime,
		Settled:          raw.Settled,
		Amount:           raw.Amount,
		Bidder:           raw.Bidder,
		BidTime:          raw.BidTime,
		Resource:         resource,
		Bids:             bids,
	}, nil
}

// DecodeConfig 解码拍品描述环形缓冲区账户
func DecodeConfig(address common.PublicKey, data []byte) (*types.Config, error) {
	var raw ConfigLayout
	if err := decodeAccount(AccountConfig, data, &raw); err != nil {
		return nil, err
	}
	if raw.MaxSupply > 0 && uint32(len(raw.Buffer)) > raw.MaxSupply {
		return nil, fmt.Errorf("%w: config buffer len %d exceeds max supply %d", types.ErrDecode, len(raw.Buffer), raw.MaxSupply)
	}
	return &types.Config{
		Address:   address,
		Bump:      raw.Bump,
		MaxSupply: raw.MaxSupply,
		UpdateIdx: raw.UpdateIdx,
		IsUpdated: raw.IsUpdated,
		Buffer:    raw.Buffer,
	}, nil
}

// EncodeAccount 按 Anchor 布局编码账户数据（判别符 + borsh），本地模拟链上状态时使用
func EncodeAccount(name string, layout any) ([]byte, error) {
	body, err := borsh.Serialize(layout)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", name, err)
	}
	disc := AccountDiscriminator(name)
	return append(disc[:], body...), nil
}

func decodeAccount(name string, data []byte, out any) (err error) {
	// borsh 对畸形数据可能 panic，统一转换为 DecodeError
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", types.ErrDecode, name, r)
		}
	}()

	if len(data) < DiscriminatorLength {
		return fmt.Errorf("%w: %s: data too short (%d bytes)", types.ErrDecode, name, len(data))
	}
	disc := AccountDiscriminator(name)
	if !bytes.Equal(data[:DiscriminatorLength], disc[:]) {
		return fmt.Errorf("%w: %s: discriminator mismatch", types.ErrDecode, name)
	}
	if err := borsh.Deserialize(out, data[DiscriminatorLength:]); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrDecode, name, err)
	}
	return nil
}
