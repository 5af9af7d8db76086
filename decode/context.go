// Package decode turns classified transactions and logs into typed domain
// values: creation candidates, transfer requests, and marketplace/auction/
// points/bridge event payloads. Only the creation decoder touches storage:
// it resolves the creation dictionary and inserts the new ethscription. The
// batch-transfer decoder calls the external hash validator. Applying
// transfers and marketplace/auction/points/bridge events to persistent
// state is the job of the ownership and writers packages.
package decode

import (
	"github.com/ethereum/go-ethereum/common"
)

// LogContext carries the per-transaction/per-log positional data every
// decoder and writer needs to build an idempotent txId and preserve the
// (blockNumber, txIndex, logIndex) total order.
type LogContext struct {
	TxHash         common.Hash
	TxFrom         common.Address
	BlockNumber    uint64
	BlockHash      common.Hash
	TxIndex        uint
	BlockTimestamp uint64
	LogIndex       uint32
}
