package decode

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MarketplaceEventKind tags which of §4.7's events a MarketplaceEvent carries.
type MarketplaceEventKind int

const (
	MarketplaceUnknown MarketplaceEventKind = iota
	MarketplacePhunkOffered
	MarketplacePhunkBought
	MarketplacePhunkNoLongerForSale
	MarketplacePhunkBidEntered
	MarketplacePhunkBidWithdrawn
)

// MarketplaceEvent is the tagged-variant decode of one marketplace log; only
// the fields relevant to Kind are populated.
type MarketplaceEvent struct {
	Kind MarketplaceEventKind

	HashID common.Hash
	Value  *big.Int

	// ToAddress is the prospective buyer for PhunkOffered, or the zero
	// address for an open listing.
	ToAddress common.Address

	// FromAddress is the seller for PhunkBought.
	FromAddress common.Address
}

// Marketplace decodes a marketplace-contract log into a MarketplaceEvent.
func Marketplace(log *types.Log) (*MarketplaceEvent, error) {
	name, args, err := decodeLogArgs(marketplaceABI, log)
	if err != nil {
		return nil, err
	}

	switch name {
	case "PhunkOffered":
		return &MarketplaceEvent{
			Kind:      MarketplacePhunkOffered,
			HashID:    common.Hash(args["hashId"].([32]byte)),
			Value:     args["minValue"].(*big.Int),
			ToAddress: args["toAddress"].(common.Address),
		}, nil
	case "PhunkBought":
		return &MarketplaceEvent{
			Kind:        MarketplacePhunkBought,
			HashID:      common.Hash(args["hashId"].([32]byte)),
			Value:       args["value"].(*big.Int),
			FromAddress: args["fromAddress"].(common.Address),
			ToAddress:   args["toAddress"].(common.Address),
		}, nil
	case "PhunkNoLongerForSale":
		return &MarketplaceEvent{
			Kind:   MarketplacePhunkNoLongerForSale,
			HashID: common.Hash(args["hashId"].([32]byte)),
		}, nil
	case "PhunkBidEntered":
		return &MarketplaceEvent{
			Kind:        MarketplacePhunkBidEntered,
			HashID:      common.Hash(args["hashId"].([32]byte)),
			Value:       args["value"].(*big.Int),
			FromAddress: args["fromAddress"].(common.Address),
		}, nil
	case "PhunkBidWithdrawn":
		return &MarketplaceEvent{
			Kind:   MarketplacePhunkBidWithdrawn,
			HashID: common.Hash(args["hashId"].([32]byte)),
		}, nil
	default:
		return nil, nil
	}
}
