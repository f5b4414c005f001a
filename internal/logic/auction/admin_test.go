package auction

import (
	"strings"
	"testing"

	"auction-factory-sol/internal/program/auctionfactory"
	"auction-factory-sol/internal/types"

	solTypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkUris(t *testing.T) {
	uris := []string{
		strings.Repeat("a", 10), // 14
		strings.Repeat("b", 10), // 14
		strings.Repeat("c", 20), // 24
		strings.Repeat("d", 1),  // 5
	}

	batches, err := ChunkUris(uris, 30)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{uris[0], uris[1]},
		{uris[2], uris[3]},
	}, batches)

	batches, err = ChunkUris(nil, 30)
	require.NoError(t, err)
	assert.Empty(t, batches)

	_, err = ChunkUris([]string{strings.Repeat("x", 40)}, 30)
	assert.ErrorIs(t, err, types.ErrPrecondition)
}

func TestAddUrisToConfig_SubmitsPerBatch(t *testing.T) {
	e := newTestEnv(t)
	e.putFactory(0, true)
	e.putConfig(100)

	uris := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		uris = append(uris, "https://arweave.net/"+strings.Repeat("z", 43))
	}
	sigs, err := e.c.AddUrisToConfig(e.ctx, uris, solTypes.NewAccount())
	require.NoError(t, err)

	// 每项 4 + 63 = 67 字节，800 字节预算一批 11 个
	assert.Len(t, sigs, 3)
	assert.Equal(t, 3, e.conn.sentCount())
	ixs := e.conn.lastInstructions(t)
	assert.Equal(t, auctionfactory.InstructionDiscriminator(auctionfactory.IxAddUrisToConfig), ixs[0].discriminator())
}

func TestAdmin_RequiresInitializedState(t *testing.T) {
	e := newTestEnv(t)
	payer := solTypes.NewAccount()

	_, err := e.c.ToggleFactoryStatus(e.ctx, payer)
	assert.ErrorIs(t, err, types.ErrNotInitialized)

	_, err = e.c.InitializeFactory(e.ctx, types.AuctionFactoryData{Duration: 60}, testTreasury, payer)
	assert.ErrorIs(t, err, types.ErrNotInitialized, "config 未初始化")

	_, err = e.c.InitializeConfig(e.ctx, 0, payer)
	assert.ErrorIs(t, err, types.ErrPrecondition)
	assert.Equal(t, 0, e.conn.sentCount())

	e.putConfig(10)
	_, err = e.c.InitializeFactory(e.ctx, types.AuctionFactoryData{Duration: 60}, testTreasury, payer)
	require.NoError(t, err)
	ixs := e.conn.lastInstructions(t)
	assert.Equal(t, auctionfactory.InstructionDiscriminator(auctionfactory.IxInitializeAuctionFactory), ixs[0].discriminator())
	assert.Equal(t, testTreasury, ixs[0].accounts[2])

	e.putFactory(0, true)
	_, err = e.c.UpdateAuthority(e.ctx, testTreasury, payer)
	require.NoError(t, err)
	ixs = e.conn.lastInstructions(t)
	assert.Equal(t, auctionfactory.InstructionDiscriminator(auctionfactory.IxUpdateAuthority), ixs[0].discriminator())
	assert.Equal(t, testTreasury, ixs[0].accounts[2])
}
