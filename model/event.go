package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind is the closed set of domain event types the pipeline can emit.
type EventKind string

const (
	EventCreated              EventKind = "created"
	EventTransfer             EventKind = "transfer"
	EventPhunkBought          EventKind = "PhunkBought"
	EventPhunkOffered         EventKind = "PhunkOffered"
	EventPhunkNoLongerForSale EventKind = "PhunkNoLongerForSale"
	EventPhunkBidEntered      EventKind = "PhunkBidEntered"
	EventPhunkBidWithdrawn    EventKind = "PhunkBidWithdrawn"
	EventAuctionCreated       EventKind = "AuctionCreated"
	EventAuctionBid           EventKind = "AuctionBid"
	EventAuctionExtended      EventKind = "AuctionExtended"
	EventAuctionSettled       EventKind = "AuctionSettled"
)

// Event is the append-only record of something that happened to an
// ethscription. Its identity (TxID) is unique and idempotent across
// re-processing of the same transaction/log.
type Event struct {
	TxID           string // txHash || stableIndex
	Kind           EventKind
	HashID         common.Hash
	From           common.Address
	To             common.Address // zero address when not applicable
	Value          *big.Int       // wei; nil treated as zero
	BlockNumber    uint64
	BlockHash      common.Hash
	TxIndex        uint
	TxHash         common.Hash
	BlockTimestamp uint64
	LogIndex       uint32 // stableIndex: log.logIndex, txIndex, or batch position
}

// MakeTxID builds the idempotent identity of an event: the transaction hash
// concatenated with the stable index within that transaction (log index for
// log-sourced events, batch position for calldata batch entries, the
// transaction index for single-word calldata events).
func MakeTxID(txHash common.Hash, stableIndex uint32) string {
	return fmt.Sprintf("%s:%d", txHash.Hex(), stableIndex)
}

// Less orders two events of the same hashId by (blockNumber, txIndex,
// logIndex|batchPos), the total order the ownership machine must replay
// against.
func (e *Event) Less(other *Event) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber < other.BlockNumber
	}
	if e.TxIndex != other.TxIndex {
		return e.TxIndex < other.TxIndex
	}
	return e.LogIndex < other.LogIndex
}

// ProcessedBlockEntry is one slot of the bounded reorg window.
type ProcessedBlockEntry struct {
	Number     uint64
	Hash       common.Hash
	ParentHash common.Hash
	Confirmed  bool
}
