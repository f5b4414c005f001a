package pda

import (
	"strconv"
	"testing"

	"auction-factory-sol/internal/consts"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuctionAddress_Deterministic(t *testing.T) {
	d := NewDeriver(consts.AuctionFactoryProgram)
	factory, _, err := d.FactoryAddress("factory-seed")
	require.NoError(t, err)

	addr1, bump1, err := d.AuctionAddress(7, factory)
	require.NoError(t, err)
	addr2, bump2, err := d.AuctionAddress(7, factory)
	require.NoError(t, err)

	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)

	// bump 必须能复现同一地址
	recreated, err := common.CreateProgramAddress([][]byte{
		[]byte(consts.AuctionSeed),
		factory.Bytes(),
		[]byte(strconv.FormatUint(7, 10)),
		{bump1},
	}, consts.AuctionFactoryProgram)
	require.NoError(t, err)
	assert.Equal(t, addr1, recreated)
	assert.False(t, common.IsOnCurve(addr1), "PDA 不应落在曲线上")
}

func TestAuctionAddress_DistinctPerSequenceAndFactory(t *testing.T) {
	d := NewDeriver(consts.AuctionFactoryProgram)
	factoryA, _, err := d.FactoryAddress("a")
	require.NoError(t, err)
	factoryB, _, err := d.FactoryAddress("b")
	require.NoError(t, err)

	seen := make(map[common.PublicKey]struct{})
	for _, f := range []common.PublicKey{factoryA, factoryB} {
		for seq := uint64(1); seq <= 20; seq++ {
			addr, _, err := d.AuctionAddress(seq, f)
			require.NoError(t, err)
			_, dup := seen[addr]
			require.False(t, dup, "factory=%s seq=%d 地址重复", f, seq)
			seen[addr] = struct{}{}
		}
	}
}

func TestFactoryAndConfigAddress_UseDifferentTags(t *testing.T) {
	d := NewDeriver(consts.AuctionFactoryProgram)
	factory, _, err := d.FactoryAddress("same")
	require.NoError(t, err)
	config, _, err := d.ConfigAddress("same")
	require.NoError(t, err)
	assert.NotEqual(t, factory, config)

	other := NewDeriver(consts.TokenProgram)
	factory2, _, err := other.FactoryAddress("same")
	require.NoError(t, err)
	assert.NotEqual(t, factory, factory2, "不同程序地址应得到不同 PDA")
}

func TestAssociatedTokenAddress_MatchesSDK(t *testing.T) {
	owner := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey

	got, gotBump, err := AssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	want, wantBump, err := common.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, wantBump, gotBump)
}

func TestMetadataAddresses_MatchSDK(t *testing.T) {
	mint := types.NewAccount().PublicKey

	metadata, _, err := MetadataAddress(mint)
	require.NoError(t, err)
	want, err := token_metadata.GetTokenMetaPubkey(mint)
	require.NoError(t, err)
	assert.Equal(t, want, metadata)

	edition, _, err := MasterEditionAddress(mint)
	require.NoError(t, err)
	wantEdition, err := token_metadata.GetMasterEdition(mint)
	require.NoError(t, err)
	assert.Equal(t, wantEdition, edition)
	assert.NotEqual(t, metadata, edition)
}
