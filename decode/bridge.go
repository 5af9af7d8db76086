package decode

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// BridgeEventKind tags which of §4.9's events a BridgeEvent carries.
type BridgeEventKind int

const (
	BridgeUnknown BridgeEventKind = iota
	BridgeHashLocked
	BridgeHashUnlocked
)

// BridgeEvent is the tagged-variant decode of one bridge-contract log.
type BridgeEvent struct {
	Kind BridgeEventKind

	HashID    common.Hash
	PrevOwner common.Address
	Nonce     *big.Int
	Value     *big.Int
}

// Bridge decodes a bridge-contract log into a BridgeEvent.
func Bridge(log *types.Log) (*BridgeEvent, error) {
	name, args, err := decodeLogArgs(bridgeABI, log)
	if err != nil {
		return nil, err
	}

	switch name {
	case "HashLocked":
		return &BridgeEvent{
			Kind:      BridgeHashLocked,
			HashID:    common.Hash(args["hashId"].([32]byte)),
			PrevOwner: args["prevOwner"].(common.Address),
			Nonce:     args["nonce"].(*big.Int),
			Value:     args["value"].(*big.Int),
		}, nil
	case "HashUnlocked":
		return &BridgeEvent{
			Kind:      BridgeHashUnlocked,
			HashID:    common.Hash(args["hashId"].([32]byte)),
			PrevOwner: args["prevOwner"].(common.Address),
		}, nil
	default:
		return nil, nil
	}
}
