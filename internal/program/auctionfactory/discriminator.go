package auctionfactory

import (
	"crypto/sha256"
)

const DiscriminatorLength = 8

// Anchor 账户名
const (
	AccountAuctionFactory = "AuctionFactory"
	AccountAuction        = "Auction"
	AccountConfig         = "Config"
)

// Anchor 指令名（snake_case，与链上程序方法名一致）
const (
	IxInitializeAuctionFactory   = "initialize_auction_factory"
	IxInitializeConfig           = "initialize_config"
	IxAddUrisToConfig            = "add_uris_to_config"
	IxToggleAuctionFactoryStatus = "toggle_auction_factory_status"
	IxModifyAuctionFactoryData   = "modify_auction_factory_data"
	IxUpdateTreasury             = "update_treasury"
	IxUpdateAuthority            = "update_authority"
	IxCreateFirstAuction         = "create_first_auction"
	IxCreateNextAuction          = "create_next_auction"
	IxMintToAuction              = "mint_to_auction"
	IxSupplyResourceToAuction    = "supply_resource_to_auction"
	IxPlaceBid                   = "place_bid"
	IxSettleAuction              = "settle_auction"
	IxCloseAuctionTokenAccount   = "close_auction_token_account"
)

// AccountDiscriminator = sha256("account:<Name>")[:8]
func AccountDiscriminator(name string) [DiscriminatorLength]byte {
	return sighash("account", name)
}

// InstructionDiscriminator = sha256("global:<name>")[:8]
func InstructionDiscriminator(name string) [DiscriminatorLength]byte {
	return sighash("global", name)
}

func sighash(namespace, name string) [DiscriminatorLength]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var out [DiscriminatorLength]byte
	copy(out[:], sum[:DiscriminatorLength])
	return out
}
