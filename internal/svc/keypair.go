package svc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	solTypes "github.com/blocto/solana-go-sdk/types"
	"github.com/zeromicro/go-zero/core/jsonx"
)

// LoadKeypair 读取 solana-keygen 生成的 JSON 字节数组钱包文件，支持 ~ 开头的路径
func LoadKeypair(path string) (solTypes.Account, error) {
	if path == "" {
		return solTypes.Account{}, fmt.Errorf("program.keypair is not configured")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return solTypes.Account{}, err
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return solTypes.Account{}, fmt.Errorf("read keypair %s: %w", path, err)
	}
	var raw []byte
	var ints []int
	if err := jsonx.Unmarshal(data, &ints); err != nil {
		return solTypes.Account{}, fmt.Errorf("parse keypair %s: %w", path, err)
	}
	for _, v := range ints {
		if v < 0 || v > 255 {
			return solTypes.Account{}, fmt.Errorf("parse keypair %s: byte out of range: %d", path, v)
		}
		raw = append(raw, byte(v))
	}

	account, err := solTypes.AccountFromBytes(raw)
	if err != nil {
		return solTypes.Account{}, fmt.Errorf("keypair %s: %w", path, err)
	}
	return account, nil
}

// Payer 读取配置中的签名钱包
func (sc *ServiceContext) Payer() (solTypes.Account, error) {
	return LoadKeypair(sc.Config.Program.Keypair)
}
