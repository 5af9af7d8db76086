package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Key prefixes. Every key schema below follows the teacher's
// "/meta/ /data/ /index/" convention so prefix-scans stay byte-sortable.
const (
	prefixMeta  = "/meta/"
	prefixData  = "/data/"
	prefixIndex = "/index/"
)

// Metadata keys.
const keyLastBlock = prefixMeta + "lastBlock"

// LastBlockKey returns the key holding the checkpointed last-processed
// block number.
func LastBlockKey() []byte {
	return []byte(keyLastBlock)
}

// EthscriptionKey returns the primary key for an ethscription, keyed by
// hashId.
func EthscriptionKey(hashID common.Hash) []byte {
	return []byte(fmt.Sprintf("%sethscription/%s", prefixData, hashID.Hex()))
}

// EthscriptionShaIndexKey maps a sha256 payload hash to its hashId.
func EthscriptionShaIndexKey(sha [32]byte) []byte {
	return []byte(fmt.Sprintf("%ssha/%x", prefixIndex, sha))
}

// DictionaryKey maps a sha256 payload hash to its pre-seeded tokenId. The
// dictionary is loaded once at startup and never mutated by the pipeline.
func DictionaryKey(sha [32]byte) []byte {
	return []byte(fmt.Sprintf("%sdictionary/%x", prefixData, sha))
}

// EventKey returns the key for an event, keyed by its idempotent txId.
// Keys sort by txId, which begins with the transaction hash, so they follow
// no chain or insertion order; per-hashId ordering is served by
// EventByHashIndexKey.
func EventKey(txID string) []byte {
	return []byte(fmt.Sprintf("%sevent/%s", prefixData, txID))
}

// EventByHashIndexKey orders a hashId's events by (blockNumber, txIndex,
// logIndex) via zero-padded fixed-width segments, satisfying the
// total-order invariant directly from key sort order.
func EventByHashIndexKey(hashID common.Hash, blockNumber uint64, txIndex uint, logIndex uint32) []byte {
	return []byte(fmt.Sprintf("%sevents-by-hash/%s/%020d/%010d/%010d",
		prefixIndex, hashID.Hex(), blockNumber, txIndex, logIndex))
}

// EventByHashIndexPrefix returns the scan prefix for all of a hashId's
// events, in order.
func EventByHashIndexPrefix(hashID common.Hash) []byte {
	return []byte(fmt.Sprintf("%sevents-by-hash/%s/", prefixIndex, hashID.Hex()))
}

// EventByBlockIndexKey orders events by blockNumber regardless of hashId,
// so reorg rollback can delete every event above a height without a full
// table scan.
func EventByBlockIndexKey(blockNumber uint64, txID string) []byte {
	return []byte(fmt.Sprintf("%sevents-by-block/%020d/%s", prefixIndex, blockNumber, txID))
}

// EventByBlockIndexLowerBound returns the inclusive lower bound for
// scanning every event at or above height.
func EventByBlockIndexLowerBound(height uint64) []byte {
	return []byte(fmt.Sprintf("%sevents-by-block/%020d/", prefixIndex, height))
}

// EventByBlockIndexPrefix returns the scan prefix for the whole
// events-by-block index.
func EventByBlockIndexPrefix() []byte {
	return []byte(prefixIndex + "events-by-block/")
}

// ListingKey returns the key for the (at most one) active listing of a
// hashId.
func ListingKey(hashID common.Hash) []byte {
	return []byte(fmt.Sprintf("%slisting/%s", prefixData, hashID.Hex()))
}

// BidKey returns the key for the (at most one) active bid of a hashId.
func BidKey(hashID common.Hash) []byte {
	return []byte(fmt.Sprintf("%sbid/%s", prefixData, hashID.Hex()))
}

// AuctionKey returns the key for an auction, keyed by auctionId.
func AuctionKey(auctionID uint64) []byte {
	return []byte(fmt.Sprintf("%sauction/%020d", prefixData, auctionID))
}

// UserKey returns the key for a user's point balance, keyed by address.
func UserKey(addr common.Address) []byte {
	return []byte(fmt.Sprintf("%suser/%s", prefixData, addr.Hex()))
}

// ProcessedBlockKey returns the key for one slot of the reorg window,
// keyed by block number.
func ProcessedBlockKey(number uint64) []byte {
	return []byte(fmt.Sprintf("%sprocessed-block/%020d", prefixData, number))
}

// ProcessedBlockPrefix returns the scan prefix for the whole reorg window.
func ProcessedBlockPrefix() []byte {
	return []byte(prefixData + "processed-block/")
}

// EncodeUint64 encodes n as 8 big-endian bytes.
func EncodeUint64(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

// DecodeUint64 decodes 8 big-endian bytes to a uint64.
func DecodeUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid uint64 data length: %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
