package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Auction is a single auction row (§4.8).
type Auction struct {
	AuctionID                 uint64
	HashID                    common.Hash
	Owner                     common.Address
	StartTime                 uint64
	EndTime                   uint64
	ReservePrice              *big.Int
	MinBidIncrementPercentage uint64
	TimeBuffer                uint64
	HighestBid                *big.Int
	HighestBidder             common.Address
	Settled                   bool
}
