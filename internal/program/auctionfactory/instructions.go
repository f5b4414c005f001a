package auctionfactory

import (
	"fmt"

	"auction-factory-sol/internal/consts"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// 每个指令的参数顺序与账户顺序都是链上程序的固定契约，顺序错一位就会被拒绝。

type InitializeAuctionFactoryParam struct {
	ProgramID      common.PublicKey
	FactoryBump    uint8
	FactorySeed    string
	ConfigBump     uint8
	ConfigSeed     string
	Data           FactoryDataLayout
	AuctionFactory common.PublicKey
	Config         common.PublicKey
	Treasury       common.PublicKey
	Payer          common.PublicKey
}

func InitializeAuctionFactory(p InitializeAuctionFactoryParam) types.Instruction {
	return build(p.ProgramID, IxInitializeAuctionFactory, struct {
		Bump       uint8
		Seed       string
		ConfigBump uint8
		ConfigSeed string
		Data       FactoryDataLayout
	}{p.FactoryBump, p.FactorySeed, p.ConfigBump, p.ConfigSeed, p.Data}, []types.AccountMeta{
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: true},
		{PubKey: p.Config, IsSigner: false, IsWritable: false},
		{PubKey: p.Treasury, IsSigner: false, IsWritable: false},
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
	})
}

type InitializeConfigParam struct {
	ProgramID  common.PublicKey
	ConfigBump uint8
	ConfigSeed string
	MaxSupply  uint32
	Config     common.PublicKey
	Payer      common.PublicKey
}

func InitializeConfig(p InitializeConfigParam) types.Instruction {
	return build(p.ProgramID, IxInitializeConfig, struct {
		ConfigBump uint8
		ConfigSeed string
		MaxSupply  uint32
	}{p.ConfigBump, p.ConfigSeed, p.MaxSupply}, []types.AccountMeta{
		{PubKey: p.Config, IsSigner: false, IsWritable: true},
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
	})
}

type AddUrisToConfigParam struct {
	ProgramID      common.PublicKey
	ConfigBump     uint8
	ConfigSeed     string
	Uris           []string
	Payer          common.PublicKey
	AuctionFactory common.PublicKey
	Config         common.PublicKey
}

func AddUrisToConfig(p AddUrisToConfigParam) types.Instruction {
	return build(p.ProgramID, IxAddUrisToConfig, struct {
		ConfigBump uint8
		ConfigSeed string
		Uris       []string
	}{p.ConfigBump, p.ConfigSeed, p.Uris}, []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: false},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: false},
		{PubKey: p.Config, IsSigner: false, IsWritable: true},
	})
}

// FactoryAdminParam 仅需要工厂 bump/seed 的管理类指令共用
type FactoryAdminParam struct {
	ProgramID      common.PublicKey
	FactoryBump    uint8
	FactorySeed    string
	Payer          common.PublicKey
	AuctionFactory common.PublicKey
}

type factorySeedArgs struct {
	Bump uint8
	Seed string
}

func ToggleAuctionFactoryStatus(p FactoryAdminParam) types.Instruction {
	return build(p.ProgramID, IxToggleAuctionFactoryStatus, factorySeedArgs{p.FactoryBump, p.FactorySeed}, []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: false},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: true},
	})
}

func ModifyAuctionFactoryData(p FactoryAdminParam, data FactoryDataLayout) types.Instruction {
	return build(p.ProgramID, IxModifyAuctionFactoryData, struct {
		Bump uint8
		Seed string
		Data FactoryDataLayout
	}{p.FactoryBump, p.FactorySeed, data}, []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: false},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: true},
	})
}

func UpdateTreasury(p FactoryAdminParam, treasury common.PublicKey) types.Instruction {
	return build(p.ProgramID, IxUpdateTreasury, factorySeedArgs{p.FactoryBump, p.FactorySeed}, []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: false},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: true},
		{PubKey: treasury, IsSigner: false, IsWritable: false},
	})
}

func UpdateAuthority(p FactoryAdminParam, newAuthority common.PublicKey) types.Instruction {
	return build(p.ProgramID, IxUpdateAuthority, factorySeedArgs{p.FactoryBump, p.FactorySeed}, []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: false},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: true},
		{PubKey: newAuthority, IsSigner: false, IsWritable: false},
	})
}

type CreateFirstAuctionParam struct {
	ProgramID      common.PublicKey
	FactoryBump    uint8
	FactorySeed    string
	Sequence       uint64
	AuctionBump    uint8
	Payer          common.PublicKey
	AuctionFactory common.PublicKey
	Auction        common.PublicKey
}

func CreateFirstAuction(p CreateFirstAuctionParam) types.Instruction {
	return build(p.ProgramID, IxCreateFirstAuction, struct {
		Bump        uint8
		Seed        string
		Sequence    uint64
		AuctionBump uint8
	}{p.FactoryBump, p.FactorySeed, p.Sequence, p.AuctionBump}, []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: true},
		{PubKey: p.Auction, IsSigner: false, IsWritable: true},
		{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
	})
}

type CreateNextAuctionParam struct {
	ProgramID          common.PublicKey
	FactoryBump        uint8
	FactorySeed        string
	CurrentSequence    uint64
	NextSequence       uint64
	CurrentAuctionBump uint8
	NextAuctionBump    uint8
	Payer              common.PublicKey
	AuctionFactory     common.PublicKey
	CurrentAuction     common.PublicKey
	NextAuction        common.PublicKey
}

func CreateNextAuction(p CreateNextAuctionParam) types.Instruction {
	return build(p.ProgramID, IxCreateNextAuction, struct {
		Bump               uint8
		Seed               string
		CurrentSequence    uint64
		NextSequence       uint64
		CurrentAuctionBump uint8
		NextAuctionBump    uint8
	}{p.FactoryBump, p.FactorySeed, p.CurrentSequence, p.NextSequence, p.CurrentAuctionBump, p.NextAuctionBump}, []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: true},
		{PubKey: p.CurrentAuction, IsSigner: false, IsWritable: false},
		{PubKey: p.NextAuction, IsSigner: false, IsWritable: true},
		{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
	})
}

// AuctionRef 定位一场拍卖所需的全部种子与地址
type AuctionRef struct {
	ProgramID      common.PublicKey
	FactoryBump    uint8
	FactorySeed    string
	AuctionFactory common.PublicKey
	AuctionBump    uint8
	Auction        common.PublicKey
	Sequence       uint64
}

type auctionArgs struct {
	Bump        uint8
	Seed        string
	AuctionBump uint8
	Sequence    uint64
}

func (r AuctionRef) args() auctionArgs {
	return auctionArgs{r.FactoryBump, r.FactorySeed, r.AuctionBump, r.Sequence}
}

type MintToAuctionParam struct {
	AuctionRef
	Payer        common.PublicKey
	Mint         common.PublicKey
	TokenAccount common.PublicKey
}

func MintToAuction(p MintToAuctionParam) types.Instruction {
	return build(p.ProgramID, IxMintToAuction, p.args(), []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: false},
		{PubKey: p.Auction, IsSigner: false, IsWritable: true},
		{PubKey: p.Mint, IsSigner: false, IsWritable: true},
		{PubKey: p.TokenAccount, IsSigner: false, IsWritable: true},
		{PubKey: consts.TokenProgram, IsSigner: false, IsWritable: false},
		{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
	})
}

type SupplyResourceToAuctionParam struct {
	AuctionRef
	ConfigBump    uint8
	ConfigSeed    string
	Payer         common.PublicKey
	Config        common.PublicKey
	Metadata      common.PublicKey
	MasterEdition common.PublicKey
	Mint          common.PublicKey
}

func SupplyResourceToAuction(p SupplyResourceToAuctionParam) types.Instruction {
	return build(p.ProgramID, IxSupplyResourceToAuction, struct {
		Bump        uint8
		Seed        string
		AuctionBump uint8
		ConfigBump  uint8
		ConfigSeed  string
		Sequence    uint64
	}{p.FactoryBump, p.FactorySeed, p.AuctionBump, p.ConfigBump, p.ConfigSeed, p.Sequence}, []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: false},
		{PubKey: p.Config, IsSigner: false, IsWritable: true},
		{PubKey: p.Auction, IsSigner: false, IsWritable: true},
		{PubKey: p.Metadata, IsSigner: false, IsWritable: true},
		{PubKey: p.MasterEdition, IsSigner: false, IsWritable: true},
		{PubKey: p.Mint, IsSigner: false, IsWritable: true},
		{PubKey: consts.TokenMetaProgram, IsSigner: false, IsWritable: false},
		{PubKey: consts.TokenProgram, IsSigner: false, IsWritable: false},
		{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
		{PubKey: consts.SysVarRent, IsSigner: false, IsWritable: false},
	})
}

type PlaceBidParam struct {
	AuctionRef
	Amount        uint64
	Bidder        common.PublicKey
	LeadingBidder common.PublicKey // 被超越的当前领先者，链上退款给它
}

func PlaceBid(p PlaceBidParam) types.Instruction {
	return build(p.ProgramID, IxPlaceBid, struct {
		Bump        uint8
		Seed        string
		AuctionBump uint8
		Sequence    uint64
		Amount      uint64
	}{p.FactoryBump, p.FactorySeed, p.AuctionBump, p.Sequence, p.Amount}, []types.AccountMeta{
		{PubKey: p.Bidder, IsSigner: true, IsWritable: true},
		{PubKey: p.LeadingBidder, IsSigner: false, IsWritable: true},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: false},
		{PubKey: p.Auction, IsSigner: false, IsWritable: true},
		{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
	})
}

type SettleAuctionParam struct {
	AuctionRef
	Payer               common.PublicKey
	Treasury            common.PublicKey
	Metadata            common.PublicKey
	BidderTokenAccount  common.PublicKey
	AuctionTokenAccount common.PublicKey
	Mint                common.PublicKey
}

func SettleAuction(p SettleAuctionParam) types.Instruction {
	return build(p.ProgramID, IxSettleAuction, p.args(), []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: false},
		{PubKey: p.Auction, IsSigner: false, IsWritable: true},
		{PubKey: p.Treasury, IsSigner: false, IsWritable: true},
		{PubKey: p.Metadata, IsSigner: false, IsWritable: true},
		{PubKey: p.BidderTokenAccount, IsSigner: false, IsWritable: true},
		{PubKey: p.AuctionTokenAccount, IsSigner: false, IsWritable: true},
		{PubKey: p.Mint, IsSigner: false, IsWritable: true},
		{PubKey: consts.TokenMetaProgram, IsSigner: false, IsWritable: false},
		{PubKey: consts.TokenProgram, IsSigner: false, IsWritable: false},
		{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
	})
}

type CloseAuctionTokenAccountParam struct {
	AuctionRef
	Payer               common.PublicKey
	Treasury            common.PublicKey
	AuctionTokenAccount common.PublicKey
}

func CloseAuctionTokenAccount(p CloseAuctionTokenAccountParam) types.Instruction {
	return build(p.ProgramID, IxCloseAuctionTokenAccount, p.args(), []types.AccountMeta{
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.Treasury, IsSigner: false, IsWritable: true},
		{PubKey: p.AuctionFactory, IsSigner: false, IsWritable: false},
		{PubKey: p.Auction, IsSigner: false, IsWritable: false},
		{PubKey: p.AuctionTokenAccount, IsSigner: false, IsWritable: true},
		{PubKey: consts.TokenProgram, IsSigner: false, IsWritable: false},
	})
}

// build 组装 Anchor 指令：8 字节判别符 + borsh 参数。
// 参数结构体都是固定类型，序列化失败只可能是编程错误，与 SDK 内置指令构造器一样直接 panic。
func build(programID common.PublicKey, name string, args any, accounts []types.AccountMeta) types.Instruction {
	body, err := borsh.Serialize(args)
	if err != nil {
		panic(fmt.Sprintf("serialize %s args: %v", name, err))
	}
	disc := InstructionDiscriminator(name)
	data := make([]byte, 0, DiscriminatorLength+len(body))
	data = append(data, disc[:]...)
	data = append(data, body...)

	return types.Instruction{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      data,
	}
}
