package storage

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xmhha/indexer-go/model"
)

// Common errors, grounded on the teacher's sentinel-error convention so
// callers can branch with errors.Is instead of parsing messages.
var (
	// ErrNotFound is returned when a key is not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidData is returned when stored data cannot be decoded.
	ErrInvalidData = errors.New("invalid data")

	// ErrClosed is returned when operating on a closed storage.
	ErrClosed = errors.New("storage closed")

	// ErrReadOnly is returned when attempting to write to a read-only
	// storage.
	ErrReadOnly = errors.New("storage is read-only")

	// ErrAlreadyExists is returned by addEthscription when hashId or sha is
	// already present — the caller should treat this as an ignore, not an
	// error surfaced to the pipeline.
	ErrAlreadyExists = errors.New("already exists")

	// ErrOwnerMismatch is returned by UpdateOwner when the compare-and-set
	// expected owner does not match the current record.
	ErrOwnerMismatch = errors.New("owner mismatch")
)

// Datastore is the persistence boundary the indexing pipeline depends on.
// It is implementation-free in the sense that every operation is named by
// what it does to domain state, not by how it is stored; PebbleStorage is
// the only implementation, Memory is a test double.
type Datastore interface {
	// AddEthscription inserts a newly created ethscription. Returns
	// ErrAlreadyExists if hashId or sha is already present.
	AddEthscription(ctx context.Context, e *model.Ethscription) error

	// GetEthscriptionByHashID returns ErrNotFound if absent.
	GetEthscriptionByHashID(ctx context.Context, hashID common.Hash) (*model.Ethscription, error)

	// GetEthscriptionBySha returns ErrNotFound if absent.
	GetEthscriptionBySha(ctx context.Context, sha [32]byte) (*model.Ethscription, error)

	// UpdateOwner performs a compare-and-set ownership transition: it
	// succeeds only if the stored owner equals expectedOwner, and sets
	// prevOwner to expectedOwner. Returns ErrOwnerMismatch if the guard
	// fails, ErrNotFound if hashId is unknown.
	UpdateOwner(ctx context.Context, hashID common.Hash, expectedOwner, newOwner common.Address) error

	// AddEvents appends events, skipping any whose TxID already exists.
	// Idempotent: re-adding an already-stored event is a no-op, not an
	// error.
	AddEvents(ctx context.Context, events []*model.Event) error

	// GetEventsByHashID returns a hashId's events in the total order of
	// (blockNumber, txIndex, logIndex).
	GetEventsByHashID(ctx context.Context, hashID common.Hash) ([]*model.Event, error)

	// DeleteEventsAboveBlock deletes every event with blockNumber > height,
	// used by reorg rollback.
	DeleteEventsAboveBlock(ctx context.Context, height uint64) error

	// UpsertListing inserts or replaces the active listing for a hashId.
	UpsertListing(ctx context.Context, l *model.Listing) error

	// RemoveListing deletes the active listing for a hashId. Reports
	// whether a listing actually existed, so callers can conditionally
	// emit an event.
	RemoveListing(ctx context.Context, hashID common.Hash) (bool, error)

	// GetListing returns ErrNotFound if absent.
	GetListing(ctx context.Context, hashID common.Hash) (*model.Listing, error)

	// UpsertBid inserts or replaces the active bid for a hashId.
	UpsertBid(ctx context.Context, b *model.Bid) error

	// RemoveBid deletes the active bid for a hashId.
	RemoveBid(ctx context.Context, hashID common.Hash) error

	// GetBid returns ErrNotFound if absent.
	GetBid(ctx context.Context, hashID common.Hash) (*model.Bid, error)

	// CreateAuction inserts a new auction row.
	CreateAuction(ctx context.Context, a *model.Auction) error

	// ExtendAuction updates an auction's endTime.
	ExtendAuction(ctx context.Context, auctionID uint64, endTime uint64) error

	// CreateAuctionBid updates an auction's highestBid/highestBidder.
	CreateAuctionBid(ctx context.Context, auctionID uint64, bidder common.Address, value *big.Int) error

	// SettleAuction marks an auction settled and returns it so the caller
	// can drive the ownership transfer with the same guards as §4.5.
	SettleAuction(ctx context.Context, auctionID uint64) (*model.Auction, error)

	// GetAuction returns ErrNotFound if absent.
	GetAuction(ctx context.Context, auctionID uint64) (*model.Auction, error)

	// UpdateUserPoints overwrites a user's point total (points are
	// externally computed, not accumulated locally).
	UpdateUserPoints(ctx context.Context, addr common.Address, points uint64) error

	// GetOrCreateUser returns the existing user record or creates one with
	// zero points.
	GetOrCreateUser(ctx context.Context, addr common.Address, createdAt uint64) (*model.User, error)

	// LockEthscription sets locked=true. Returns false if hashId is
	// unknown — the caller must treat that as fatal per §4.9.
	LockEthscription(ctx context.Context, hashID common.Hash) (bool, error)

	// UnlockEthscription sets locked=false.
	UnlockEthscription(ctx context.Context, hashID common.Hash) error

	// GetLastBlock returns the checkpointed last-processed block number,
	// or ErrNotFound if the pipeline has never run.
	GetLastBlock(ctx context.Context) (uint64, error)

	// UpdateLastBlock advances the checkpoint. Callers must only call this
	// after every event of block n is durable.
	UpdateLastBlock(ctx context.Context, n uint64, timestamp uint64) error

	// CheckIsEthscriptionSha looks up the pre-seeded dictionary, returning
	// the tokenId and true if sha is recognized.
	CheckIsEthscriptionSha(ctx context.Context, sha [32]byte) (uint64, bool, error)

	// SeedDictionary bulk-loads the sha->tokenId dictionary at startup.
	// Fatal if it cannot complete, per §7.
	SeedDictionary(ctx context.Context, entries map[[32]byte]uint64) error

	// AppendProcessedBlock appends an entry to the reorg window and trims
	// it to the configured window length, marking the entry at
	// confirmations depth as confirmed. Returns the trimmed window in
	// chronological order.
	AppendProcessedBlock(ctx context.Context, entry model.ProcessedBlockEntry, windowLength, confirmations uint64) ([]model.ProcessedBlockEntry, error)

	// GetProcessedBlockWindow returns the current reorg window in
	// chronological order.
	GetProcessedBlockWindow(ctx context.Context) ([]model.ProcessedBlockEntry, error)

	// TrimProcessedBlockWindowAbove removes window entries above height,
	// used during reorg rollback alongside DeleteEventsAboveBlock.
	TrimProcessedBlockWindowAbove(ctx context.Context, height uint64) error

	// Close releases underlying resources.
	Close() error
}

// Config holds PebbleStorage configuration, grounded on the teacher's
// pebble.Options wiring.
type Config struct {
	// Path to the database directory.
	Path string

	// Cache size in MB (default: 128).
	Cache int

	// MaxOpenFiles is the maximum number of open files (default: 1000).
	MaxOpenFiles int

	// WriteBuffer size in MB (default: 64).
	WriteBuffer int

	// DisableWAL disables write-ahead log (not recommended).
	DisableWAL bool

	// ReadOnly opens the database in read-only mode.
	ReadOnly bool

	// CompactionConcurrency for background compaction (default: 1).
	CompactionConcurrency int
}

// DefaultConfig returns a default configuration rooted at path.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:                  path,
		Cache:                 128,
		MaxOpenFiles:          1000,
		WriteBuffer:           64,
		DisableWAL:            false,
		ReadOnly:              false,
		CompactionConcurrency: 1,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("path cannot be empty")
	}
	if c.Cache < 0 {
		return errors.New("cache size cannot be negative")
	}
	if c.MaxOpenFiles < 0 {
		return errors.New("max open files cannot be negative")
	}
	if c.WriteBuffer < 0 {
		return errors.New("write buffer size cannot be negative")
	}
	if c.CompactionConcurrency < 1 {
		return errors.New("compaction concurrency must be at least 1")
	}
	return nil
}
