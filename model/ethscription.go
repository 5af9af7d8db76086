// Package model holds the value types shared across the indexing pipeline:
// ethscriptions, events, listings, bids, auctions, the reorg window, and
// user point balances.
package model

import (
	"github.com/ethereum/go-ethereum/common"
)

// Ethscription is the minted inscription record. hashId and sha are both
// unique across the whole collection; owner transitions only happen through
// the ownership state machine.
type Ethscription struct {
	HashID    common.Hash // creating transaction hash, lowercase hex
	Sha       [32]byte    // sha256 of the normalized payload bytes, unique
	Owner     common.Address
	PrevOwner *common.Address // nil only immediately after creation
	Creator   common.Address
	CreatedAt uint64 // block timestamp
	TokenID   uint64 // assigned by the pre-seeded sha->tokenId dictionary
	Locked    bool   // true while escrowed by the bridge
}

// HasPrevOwner reports whether the record carries a prevOwner, i.e. it has
// changed hands at least once since creation.
func (e *Ethscription) HasPrevOwner() bool {
	return e.PrevOwner != nil
}

// Clone returns a deep copy, used by callers that mutate a record in place
// after reading it from storage.
func (e *Ethscription) Clone() *Ethscription {
	clone := *e
	if e.PrevOwner != nil {
		prev := *e.PrevOwner
		clone.PrevOwner = &prev
	}
	return &clone
}

// Listing, Bid, Auction, and User live in marketplace.go, auction.go, and
// user.go respectively.
