package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Listing is an ethscription's active marketplace offer (§4.7).
type Listing struct {
	HashID    common.Hash
	Seller    common.Address
	MinValue  *big.Int
	ToAddress common.Address
	CreatedAt uint64
}

// Bid is an ethscription's active marketplace bid (§4.7).
type Bid struct {
	HashID    common.Hash
	Bidder    common.Address
	Value     *big.Int
	CreatedAt uint64
}
