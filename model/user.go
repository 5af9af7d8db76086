package model

import "github.com/ethereum/go-ethereum/common"

// User is an address's points balance (§4.6). Points are externally
// computed by the points contract; the stored total is a cache, not an
// accumulator.
type User struct {
	Address   common.Address
	Points    uint64
	CreatedAt uint64
}
