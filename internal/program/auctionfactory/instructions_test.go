package auctionfactory

import (
	"encoding/binary"
	"testing"

	"auction-factory-sol/internal/consts"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	payer   = common.PublicKeyFromString("Fm8dLV2kVqFEE8zAqyWe8mg8wNUdzYeZwQEyLEVHbx9M")
	factory = common.PublicKeyFromString("5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1")
	auction = common.PublicKeyFromString("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
)

func ref() AuctionRef {
	return AuctionRef{
		ProgramID:      consts.AuctionFactoryProgram,
		FactoryBump:    255,
		FactorySeed:    "fx",
		AuctionFactory: factory,
		AuctionBump:    251,
		Auction:        auction,
		Sequence:       7,
	}
}

// 判别符 + u8 bump + "fx"(4 字节长度前缀 + 2) + u8 auction_bump + u64 sequence
func assertAuctionArgs(t *testing.T, data []byte) []byte {
	t.Helper()
	require.GreaterOrEqual(t, len(data), 8+1+4+2+1+8)
	body := data[8:]
	assert.Equal(t, byte(255), body[0])
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(body[1:5]))
	assert.Equal(t, "fx", string(body[5:7]))
	assert.Equal(t, byte(251), body[7])
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(body[8:16]))
	return body[16:]
}

func TestPlaceBid_Layout(t *testing.T) {
	leader := common.PublicKeyFromString("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
	ix := PlaceBid(PlaceBidParam{
		AuctionRef:    ref(),
		Amount:        105,
		Bidder:        payer,
		LeadingBidder: leader,
	})

	assert.Equal(t, consts.AuctionFactoryProgram, ix.ProgramID)
	disc := InstructionDiscriminator(IxPlaceBid)
	assert.Equal(t, disc[:], ix.Data[:8])

	rest := assertAuctionArgs(t, ix.Data)
	require.Len(t, rest, 8)
	assert.Equal(t, uint64(105), binary.LittleEndian.Uint64(rest))

	require.Len(t, ix.Accounts, 5)
	assert.Equal(t, types.AccountMeta{PubKey: payer, IsSigner: true, IsWritable: true}, ix.Accounts[0])
	assert.Equal(t, types.AccountMeta{PubKey: leader, IsSigner: false, IsWritable: true}, ix.Accounts[1])
	assert.Equal(t, factory, ix.Accounts[2].PubKey)
	assert.Equal(t, auction, ix.Accounts[3].PubKey)
	assert.True(t, ix.Accounts[3].IsWritable)
	assert.Equal(t, consts.SystemProgram, ix.Accounts[4].PubKey)
}

func TestCreateAuction_Variants(t *testing.T) {
	first := CreateFirstAuction(CreateFirstAuctionParam{
		ProgramID:      consts.AuctionFactoryProgram,
		FactoryBump:    255,
		FactorySeed:    "fx",
		Sequence:       1,
		AuctionBump:    250,
		Payer:          payer,
		AuctionFactory: factory,
		Auction:        auction,
	})
	disc := InstructionDiscriminator(IxCreateFirstAuction)
	assert.Equal(t, disc[:], first.Data[:8])
	assert.Len(t, first.Data, 8+1+4+2+8+1)
	assert.Len(t, first.Accounts, 4)

	prev := common.PublicKeyFromString("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	next := CreateNextAuction(CreateNextAuctionParam{
		ProgramID:          consts.AuctionFactoryProgram,
		FactoryBump:        255,
		FactorySeed:        "fx",
		CurrentSequence:    1,
		NextSequence:       2,
		CurrentAuctionBump: 250,
		NextAuctionBump:    249,
		Payer:              payer,
		AuctionFactory:     factory,
		CurrentAuction:     prev,
		NextAuction:        auction,
	})
	disc = InstructionDiscriminator(IxCreateNextAuction)
	assert.Equal(t, disc[:], next.Data[:8])

	body := next.Data[8+1+4+2:]
	require.Len(t, body, 8+8+1+1)
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(body[0:8]))
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(body[8:16]))
	assert.Equal(t, byte(250), body[16])
	assert.Equal(t, byte(249), body[17])

	require.Len(t, next.Accounts, 5)
	assert.Equal(t, prev, next.Accounts[2].PubKey)
	assert.False(t, next.Accounts[2].IsWritable)
	assert.Equal(t, auction, next.Accounts[3].PubKey)
	assert.True(t, next.Accounts[3].IsWritable)
}

func TestSettleAuction_Layout(t *testing.T) {
	treasury := common.PublicKeyFromString("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	ix := SettleAuction(SettleAuctionParam{
		AuctionRef:          ref(),
		Payer:               payer,
		Treasury:            treasury,
		Metadata:            common.PublicKeyFromString("11111111111111111111111111111113"),
		BidderTokenAccount:  common.PublicKeyFromString("11111111111111111111111111111114"),
		AuctionTokenAccount: common.PublicKeyFromString("11111111111111111111111111111115"),
		Mint:                common.PublicKeyFromString("11111111111111111111111111111116"),
	})
	assert.Empty(t, assertAuctionArgs(t, ix.Data))

	require.Len(t, ix.Accounts, 11)
	assert.Equal(t, treasury, ix.Accounts[3].PubKey)
	assert.Equal(t, consts.TokenMetaProgram, ix.Accounts[8].PubKey)
	assert.Equal(t, consts.TokenProgram, ix.Accounts[9].PubKey)
	assert.Equal(t, consts.SystemProgram, ix.Accounts[10].PubKey)
	for i, a := range ix.Accounts {
		assert.Equal(t, i == 0, a.IsSigner, "只有 payer 签名, index=%d", i)
	}
}

func TestSupplyResource_Layout(t *testing.T) {
	ix := SupplyResourceToAuction(SupplyResourceToAuctionParam{
		AuctionRef: ref(),
		ConfigBump: 248,
		ConfigSeed: "cfg",
		Payer:      payer,
	})
	body := ix.Data[8:]
	// bump, seed, auction_bump, config_bump, config_seed, sequence
	require.Len(t, body, 1+4+2+1+1+4+3+8)
	assert.Equal(t, byte(251), body[7])
	assert.Equal(t, byte(248), body[8])
	assert.Equal(t, "cfg", string(body[13:16]))
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(body[16:]))

	require.Len(t, ix.Accounts, 11)
	assert.Equal(t, consts.SysVarRent, ix.Accounts[10].PubKey)
}

func TestAddUrisToConfig_Layout(t *testing.T) {
	ix := AddUrisToConfig(AddUrisToConfigParam{
		ProgramID:  consts.AuctionFactoryProgram,
		ConfigBump: 1,
		ConfigSeed: "c",
		Uris:       []string{"ab", "xyz"},
	})
	body := ix.Data[8:]
	assert.Equal(t, []byte{
		1,
		1, 0, 0, 0, 'c',
		2, 0, 0, 0,
		2, 0, 0, 0, 'a', 'b',
		3, 0, 0, 0, 'x', 'y', 'z',
	}, body)
	require.Len(t, ix.Accounts, 3)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[2].IsWritable)
}

func TestAdminInstructions_Accounts(t *testing.T) {
	p := FactoryAdminParam{
		ProgramID:      consts.AuctionFactoryProgram,
		FactoryBump:    200,
		FactorySeed:    "fx",
		Payer:          payer,
		AuctionFactory: factory,
	}
	newKey := common.PublicKeyFromString("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")

	toggle := ToggleAuctionFactoryStatus(p)
	assert.Len(t, toggle.Accounts, 2)
	assert.Len(t, toggle.Data, 8+1+4+2)

	modify := ModifyAuctionFactoryData(p, FactoryDataLayout{TimeBuffer: 1, MinBidPercentageIncrease: 2, MinReservePrice: 3, Duration: 4})
	body := modify.Data[8+1+4+2:]
	require.Len(t, body, 32)
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(body[0:8]))
	assert.Equal(t, uint64(4), binary.LittleEndian.Uint64(body[24:32]))

	treasury := UpdateTreasury(p, newKey)
	require.Len(t, treasury.Accounts, 3)
	assert.Equal(t, newKey, treasury.Accounts[2].PubKey)

	authority := UpdateAuthority(p, newKey)
	assert.Equal(t, InstructionDiscriminator(IxUpdateAuthority), [8]byte(authority.Data[:8]))
	assert.NotEqual(t, treasury.Data[:8], authority.Data[:8])
}
