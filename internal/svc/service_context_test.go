package svc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"auction-factory-sol/internal/config"
	"auction-factory-sol/internal/consts"
	"auction-factory-sol/internal/types"

	solTypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeypair(t *testing.T, key []byte) string {
	t.Helper()
	parts := make([]string, len(key))
	for i, b := range key {
		parts[i] = fmt.Sprint(b)
	}
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, []byte("["+strings.Join(parts, ",")+"]"), 0o600))
	return path
}

func TestLoadKeypair(t *testing.T) {
	want := solTypes.NewAccount()
	got, err := LoadKeypair(writeKeypair(t, want.PrivateKey))
	require.NoError(t, err)
	assert.Equal(t, want.PublicKey, got.PublicKey)

	_, err = LoadKeypair("")
	assert.Error(t, err)

	_, err = LoadKeypair(writeKeypair(t, []byte{1, 2, 3}))
	assert.Error(t, err, "长度不足 64 字节")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1, 256]"), 0o600))
	_, err = LoadKeypair(bad)
	assert.ErrorContains(t, err, "out of range")
}

func TestNewServiceContext_MemoryFallback(t *testing.T) {
	sc, err := NewServiceContext(config.Config{
		Rpc:     config.RpcConfig{Endpoint: "http://127.0.0.1:8899", TimeoutMs: 100},
		Program: config.ProgramConfig{FactorySeed: "fx", ConfigSeed: "cfg"},
	})
	require.NoError(t, err)
	defer sc.Close()

	assert.Nil(t, sc.Redis)
	assert.Nil(t, sc.Publisher)
	assert.NotNil(t, sc.MetadataCache)
	assert.Equal(t, consts.AuctionFactoryProgram, sc.Auction.ProgramID())
	require.NoError(t, sc.EnablePublisher(), "未配置 brokers 时不创建生产者")
	assert.Nil(t, sc.Publisher)

	_, err = NewServiceContext(config.Config{Program: config.ProgramConfig{ProgramID: "not-base58-0OIl"}})
	assert.Error(t, err)
}

func TestNewServiceContext_RpcTimeout(t *testing.T) {
	// 节点收到请求后不响应
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()

	sc, err := NewServiceContext(config.Config{
		Rpc:     config.RpcConfig{Endpoint: srv.URL, TimeoutMs: 100},
		Program: config.ProgramConfig{FactorySeed: "fx", ConfigSeed: "cfg"},
	})
	require.NoError(t, err)
	defer sc.Close()

	start := time.Now()
	_, _, err = sc.Auction.FetchCurrentAuction(context.Background())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNetwork)
	assert.True(t, types.IsRetryable(err))
	assert.Less(t, elapsed, 2*time.Second, "超时应在 timeout_ms 附近返回")
}

func TestNewRpcClient_DefaultTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":null}}`))
	}))
	defer srv.Close()

	// timeout_ms 未设置时使用默认值，正常响应不受影响
	c := newRpcClient(config.RpcConfig{Endpoint: srv.URL})
	info, err := c.GetAccountInfo(context.Background(), consts.AuctionFactoryProgram.ToBase58())
	require.NoError(t, err)
	assert.Empty(t, info.Data)
}
