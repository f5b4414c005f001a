package pda

import (
	"fmt"
	"strconv"

	"auction-factory-sol/internal/consts"

	"github.com/blocto/solana-go-sdk/common"
)

// Deriver 根据程序地址与种子确定性地计算 PDA，无 I/O
type Deriver struct {
	programID common.PublicKey
}

func NewDeriver(programID common.PublicKey) *Deriver {
	return &Deriver{programID: programID}
}

func (d *Deriver) ProgramID() common.PublicKey {
	return d.programID
}

// AuctionAddress 种子: "aux" + 工厂地址 + 十进制序号
func (d *Deriver) AuctionAddress(sequence uint64, factory common.PublicKey) (common.PublicKey, uint8, error) {
	return find(d.programID,
		[]byte(consts.AuctionSeed),
		factory.Bytes(),
		[]byte(strconv.FormatUint(sequence, 10)),
	)
}

// FactoryAddress 种子: "aux_fax" + 工厂种子字符串
func (d *Deriver) FactoryAddress(seed string) (common.PublicKey, uint8, error) {
	return find(d.programID, []byte(consts.AuctionFactorySeed), []byte(seed))
}

// ConfigAddress 种子: "config" + 配置种子字符串
func (d *Deriver) ConfigAddress(seed string) (common.PublicKey, uint8, error) {
	return find(d.programID, []byte(consts.ConfigSeed), []byte(seed))
}

// AssociatedTokenAddress 种子: owner + token program + mint，归属 ATA 程序
func AssociatedTokenAddress(owner, mint common.PublicKey) (common.PublicKey, uint8, error) {
	return find(consts.AssociatedTokenProgram,
		owner.Bytes(),
		consts.TokenProgram.Bytes(),
		mint.Bytes(),
	)
}

// MetadataAddress 种子: "metadata" + metadata program + mint
func MetadataAddress(mint common.PublicKey) (common.PublicKey, uint8, error) {
	return find(consts.TokenMetaProgram,
		[]byte(consts.MetadataSeed),
		consts.TokenMetaProgram.Bytes(),
		mint.Bytes(),
	)
}

// MasterEditionAddress 种子: "metadata" + metadata program + mint + "edition"
func MasterEditionAddress(mint common.PublicKey) (common.PublicKey, uint8, error) {
	return find(consts.TokenMetaProgram,
		[]byte(consts.MetadataSeed),
		consts.TokenMetaProgram.Bytes(),
		mint.Bytes(),
		[]byte(consts.EditionSeed),
	)
}

// find 从 bump=255 向下搜索第一个不在曲线上的地址；
// 搜索失败说明种子配置错误，属于致命错误。
func find(programID common.PublicKey, seeds ...[]byte) (common.PublicKey, uint8, error) {
	addr, bump, err := common.FindProgramAddress(seeds, programID)
	if err != nil {
		return common.PublicKey{}, 0, fmt.Errorf("find program address (program=%s): %w", programID.ToBase58(), err)
	}
	return addr, bump, nil
}
