package auction

import (
	"context"
	"errors"
	"time"

	"auction-factory-sol/internal/types"
	"auction-factory-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/rpc"
	solTypes "github.com/blocto/solana-go-sdk/types"
)

// submit 用最新 blockhash 组装、签名并发送一笔原子交易，返回交易签名。
// 不做任何自动重试，失败原样分类后交给调用方。
func (c *Client) submit(ctx context.Context, op string, payer solTypes.Account, extraSigners []solTypes.Account, ixs ...solTypes.Instruction) (string, error) {
	// 1. 获取 blockhash
	latest, err := c.conn.GetLatestBlockhash(ctx)
	if err != nil {
		return "", classifyRPCError(op, err)
	}

	// 2. 构造并签名
	signers := make([]solTypes.Account, 0, 1+len(extraSigners))
	signers = append(signers, payer)
	signers = append(signers, extraSigners...)

	tx, err := solTypes.NewTransaction(solTypes.NewTransactionParam{
		Message: solTypes.NewMessage(solTypes.NewMessageParam{
			FeePayer:        payer.PublicKey,
			RecentBlockhash: latest.Blockhash,
			Instructions:    ixs,
		}),
		Signers: signers,
	})
	if err != nil {
		return "", types.Preconditionf("%s: sign transaction: %v", op, err)
	}

	// 3. 发送
	start := time.Now()
	sig, err := c.conn.SendTransaction(ctx, tx)
	if err != nil {
		logger.Warnf("[AuctionClient] %s 提交失败: %v", op, err)
		return "", classifyRPCError(op, err)
	}
	logger.Infof("[AuctionClient] %s 已提交, 指令数: %d, 签名: %s, 耗时: %v", op, len(ixs), sig, time.Since(start))
	return sig, nil
}

// classifyRPCError 节点返回的 JSON-RPC 错误对象视为远程拒绝，其余（连接、超时、ctx）视为网络错误
func classifyRPCError(op string, err error) error {
	var rpcErr *rpc.JsonRpcError
	if errors.As(err, &rpcErr) {
		return &types.RemoteCallError{Op: op, Message: rpcErr.Message, Err: err}
	}
	return &types.NetworkError{Op: op, Err: err}
}
