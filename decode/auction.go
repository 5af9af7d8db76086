package decode

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// AuctionEventKind tags which of §4.8's events an AuctionEvent carries.
type AuctionEventKind int

const (
	AuctionUnknown AuctionEventKind = iota
	AuctionEventCreated
	AuctionEventBid
	AuctionEventExtended
	AuctionEventSettled
)

// AuctionEvent is the tagged-variant decode of one auction-contract log.
type AuctionEvent struct {
	Kind AuctionEventKind

	HashID    common.Hash
	Owner     common.Address
	AuctionID uint64

	StartTime uint64
	EndTime   uint64

	Sender   common.Address
	Value    *big.Int
	Extended bool

	Winner common.Address
	Amount *big.Int
}

// Auction decodes an auction-contract log into an AuctionEvent.
func Auction(log *types.Log) (*AuctionEvent, error) {
	name, args, err := decodeLogArgs(auctionABI, log)
	if err != nil {
		return nil, err
	}

	switch name {
	case "AuctionCreated":
		return &AuctionEvent{
			Kind:      AuctionEventCreated,
			HashID:    common.Hash(args["hashId"].([32]byte)),
			Owner:     args["owner"].(common.Address),
			AuctionID: args["auctionId"].(*big.Int).Uint64(),
			StartTime: args["startTime"].(*big.Int).Uint64(),
			EndTime:   args["endTime"].(*big.Int).Uint64(),
		}, nil
	case "AuctionBid":
		return &AuctionEvent{
			Kind:      AuctionEventBid,
			HashID:    common.Hash(args["hashId"].([32]byte)),
			AuctionID: args["auctionId"].(*big.Int).Uint64(),
			Sender:    args["sender"].(common.Address),
			Value:     args["value"].(*big.Int),
			Extended:  args["extended"].(bool),
		}, nil
	case "AuctionExtended":
		return &AuctionEvent{
			Kind:      AuctionEventExtended,
			HashID:    common.Hash(args["hashId"].([32]byte)),
			AuctionID: args["auctionId"].(*big.Int).Uint64(),
			EndTime:   args["endTime"].(*big.Int).Uint64(),
		}, nil
	case "AuctionSettled":
		return &AuctionEvent{
			Kind:      AuctionEventSettled,
			HashID:    common.Hash(args["hashId"].([32]byte)),
			AuctionID: args["auctionId"].(*big.Int).Uint64(),
			Winner:    args["winner"].(common.Address),
			Amount:    args["amount"].(*big.Int),
		}, nil
	default:
		return nil, nil
	}
}
