package auction

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"auction-factory-sol/internal/consts"
	"auction-factory-sol/internal/program/auctionfactory"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	solTypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"
)

// fakeConn 内存版链上状态，记录所有提交的交易
type fakeConn struct {
	mu       sync.Mutex
	accounts map[string]client.AccountInfo
	sent     []solTypes.Transaction
	getErr   error
	sendErr  error
}

func newFakeConn() *fakeConn {
	return &fakeConn{accounts: make(map[string]client.AccountInfo)}
}

func (f *fakeConn) GetAccountInfo(_ context.Context, addr string) (client.AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return client.AccountInfo{}, f.getErr
	}
	return f.accounts[addr], nil
}

func (f *fakeConn) GetLatestBlockhash(context.Context) (rpc.GetLatestBlockhashValue, error) {
	return rpc.GetLatestBlockhashValue{Blockhash: "11111111111111111111111111111111"}, nil
}

func (f *fakeConn) SendTransaction(_ context.Context, tx solTypes.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, tx)
	return fmt.Sprintf("sig-%d", len(f.sent)), nil
}

func (f *fakeConn) GetMinimumBalanceForRentExemption(context.Context, uint64) (uint64, error) {
	return 1_461_600, nil
}

func (f *fakeConn) put(t *testing.T, addr, owner common.PublicKey, name string, layout any) {
	t.Helper()
	data, err := auctionfactory.EncodeAccount(name, layout)
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[addr.ToBase58()] = client.AccountInfo{Lamports: 1_000_000, Owner: owner, Data: data}
}

func (f *fakeConn) putTokenAccount(addr common.PublicKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[addr.ToBase58()] = client.AccountInfo{Lamports: 2_039_280, Owner: consts.TokenProgram, Data: make([]byte, 165)}
}

func (f *fakeConn) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// sentIx 从已编译的消息还原出的指令
type sentIx struct {
	program  common.PublicKey
	accounts []common.PublicKey
	data     []byte
}

func (ix sentIx) discriminator() [8]byte {
	var d [8]byte
	copy(d[:], ix.data)
	return d
}

func (f *fakeConn) lastInstructions(t *testing.T) []sentIx {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "没有提交任何交易")

	msg := f.sent[len(f.sent)-1].Message
	out := make([]sentIx, 0, len(msg.Instructions))
	for _, ci := range msg.Instructions {
		accounts := make([]common.PublicKey, 0, len(ci.Accounts))
		for _, idx := range ci.Accounts {
			accounts = append(accounts, msg.Accounts[idx])
		}
		out = append(out, sentIx{
			program:  msg.Accounts[ci.ProgramIDIndex],
			accounts: accounts,
			data:     ci.Data,
		})
	}
	return out
}
