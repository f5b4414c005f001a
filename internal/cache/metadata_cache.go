package cache

import (
	"context"
	"fmt"
	"strings"

	"auction-factory-sol/internal/pda"
	"auction-factory-sol/internal/types"
	"auction-factory-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/zeromicro/go-zero/core/syncx"
)

// AccountReader 读取 metadata 账户所需的 RPC 能力
type AccountReader interface {
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
}

// MetadataCache 拍品 mint -> 展示 URI。
// 首次访问时读链上 metadata 账户并写入 Store，之后命中直接返回，条目永不失效。
type MetadataCache struct {
	store  Store
	reader AccountReader
	flight syncx.SingleFlight // 同一 key 的并发 miss 只发起一次 RPC
}

func NewMetadataCache(store Store, reader AccountReader) *MetadataCache {
	return &MetadataCache{
		store:  store,
		reader: reader,
		flight: syncx.NewSingleFlight(),
	}
}

// Get 返回拍品的展示 URI；任何失败都降级为空字符串，元数据不影响核心流程
func (c *MetadataCache) Get(ctx context.Context, mint common.PublicKey) string {
	uri, err := c.Lookup(ctx, mint)
	if err != nil {
		logger.Warnf("[MetadataCache] 获取 URI 失败, mint=%s: %v", mint.ToBase58(), err)
		return ""
	}
	return uri
}

// Lookup 与 Get 相同但返回错误，供需要区分原因的调用方使用
func (c *MetadataCache) Lookup(ctx context.Context, mint common.PublicKey) (string, error) {
	metadataAddr, _, err := pda.MetadataAddress(mint)
	if err != nil {
		return "", err
	}
	key := metadataAddr.ToBase58()

	// 1. 命中本地存储
	if uri, ok, err := c.store.Get(ctx, key); err != nil {
		logger.Warnf("[MetadataCache] 读取本地存储失败, key=%s: %v", key, err)
	} else if ok {
		return uri, nil
	}

	// 2. 读链上 metadata 账户
	v, err := c.flight.Do(key, func() (any, error) {
		return c.fetchUri(ctx, metadataAddr)
	})
	if err != nil {
		return "", err
	}
	uri := v.(string)

	// 3. 回写，失败不影响本次结果
	if err := c.store.Set(ctx, key, uri); err != nil {
		logger.Warnf("[MetadataCache] 写入本地存储失败, key=%s: %v", key, err)
	}
	return uri, nil
}

func (c *MetadataCache) fetchUri(ctx context.Context, metadataAddr common.PublicKey) (string, error) {
	info, err := c.reader.GetAccountInfo(ctx, metadataAddr.ToBase58())
	if err != nil {
		return "", &types.NetworkError{Op: "fetch_metadata", Err: err}
	}
	if len(info.Data) == 0 {
		return "", fmt.Errorf("%w: metadata %s", types.ErrNotFound, metadataAddr.ToBase58())
	}

	md, err := decodeMetadata(info.Data)
	if err != nil {
		return "", err
	}
	// 链上字段按固定长度补 \x00
	uri := strings.TrimSpace(strings.TrimRight(md.Data.Uri, "\x00"))
	if uri == "" {
		return "", fmt.Errorf("%w: metadata %s has empty uri", types.ErrDecode, metadataAddr.ToBase58())
	}
	return uri, nil
}

func decodeMetadata(data []byte) (md token_metadata.Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: metadata: %v", types.ErrDecode, r)
		}
	}()
	md, err = token_metadata.MetadataDeserialize(data)
	if err != nil {
		return md, fmt.Errorf("%w: metadata: %v", types.ErrDecode, err)
	}
	return md, nil
}
