package storage

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/model"
)

// PebbleStorage implements Datastore on top of an embedded PebbleDB
// instance, grounded on the teacher's pebble.Options wiring and Get/Set
// error-translation idiom.
type PebbleStorage struct {
	db     *pebble.DB
	config *Config
	logger *zap.Logger
	closed atomic.Bool
}

// NewPebbleStorage opens (or creates) a PebbleDB-backed Datastore at
// cfg.Path.
func NewPebbleStorage(cfg *Config, logger *zap.Logger) (*PebbleStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := &pebble.Options{
		Cache:                    pebble.NewCache(int64(cfg.Cache) << 20),
		MaxOpenFiles:             cfg.MaxOpenFiles,
		MemTableSize:             uint64(cfg.WriteBuffer) << 20,
		DisableWAL:               cfg.DisableWAL,
		MaxConcurrentCompactions: func() int { return cfg.CompactionConcurrency },
	}
	if cfg.ReadOnly {
		opts.ReadOnly = true
	}

	db, err := pebble.Open(cfg.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &PebbleStorage{db: db, config: cfg, logger: logger}, nil
}

func (s *PebbleStorage) ensureNotClosed() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (s *PebbleStorage) ensureNotReadOnly() error {
	if s.config.ReadOnly {
		return ErrReadOnly
	}
	return nil
}

// Close closes the underlying database.
func (s *PebbleStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *PebbleStorage) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *PebbleStorage) has(key []byte) (bool, error) {
	_, closer, err := s.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	closer.Close()
	return true, nil
}

// AddEthscription implements Datastore.
func (s *PebbleStorage) AddEthscription(ctx context.Context, e *model.Ethscription) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}

	if exists, err := s.has(EthscriptionKey(e.HashID)); err != nil {
		return err
	} else if exists {
		return ErrAlreadyExists
	}
	if exists, err := s.has(EthscriptionShaIndexKey(e.Sha)); err != nil {
		return err
	} else if exists {
		return ErrAlreadyExists
	}

	data, err := EncodeEthscription(e)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(EthscriptionKey(e.HashID), data, nil); err != nil {
		return err
	}
	if err := batch.Set(EthscriptionShaIndexKey(e.Sha), e.HashID.Bytes(), nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// GetEthscriptionByHashID implements Datastore.
func (s *PebbleStorage) GetEthscriptionByHashID(ctx context.Context, hashID common.Hash) (*model.Ethscription, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}
	data, err := s.get(EthscriptionKey(hashID))
	if err != nil {
		return nil, err
	}
	return DecodeEthscription(data)
}

// GetEthscriptionBySha implements Datastore.
func (s *PebbleStorage) GetEthscriptionBySha(ctx context.Context, sha [32]byte) (*model.Ethscription, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}
	hashBytes, err := s.get(EthscriptionShaIndexKey(sha))
	if err != nil {
		return nil, err
	}
	return s.GetEthscriptionByHashID(ctx, common.BytesToHash(hashBytes))
}

// UpdateOwner implements Datastore's compare-and-set ownership transition.
func (s *PebbleStorage) UpdateOwner(ctx context.Context, hashID common.Hash, expectedOwner, newOwner common.Address) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}

	e, err := s.GetEthscriptionByHashID(ctx, hashID)
	if err != nil {
		return err
	}
	if e.Owner != expectedOwner {
		return ErrOwnerMismatch
	}

	prev := e.Owner
	e.PrevOwner = &prev
	e.Owner = newOwner

	data, err := EncodeEthscription(e)
	if err != nil {
		return err
	}
	return s.db.Set(EthscriptionKey(hashID), data, pebble.Sync)
}

// AddEvents implements Datastore, idempotent on TxID.
func (s *PebbleStorage) AddEvents(ctx context.Context, events []*model.Event) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, e := range events {
		key := EventKey(e.TxID)
		if exists, err := s.has(key); err != nil {
			return err
		} else if exists {
			continue
		}

		data, err := EncodeEvent(e)
		if err != nil {
			return err
		}
		if err := batch.Set(key, data, nil); err != nil {
			return err
		}
		if err := batch.Set(EventByHashIndexKey(e.HashID, e.BlockNumber, e.TxIndex, e.LogIndex), []byte(e.TxID), nil); err != nil {
			return err
		}
		if err := batch.Set(EventByBlockIndexKey(e.BlockNumber, e.TxID), []byte(e.TxID), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

// GetEventsByHashID implements Datastore.
func (s *PebbleStorage) GetEventsByHashID(ctx context.Context, hashID common.Hash) ([]*model.Event, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}

	prefix := EventByHashIndexPrefix(hashID)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var events []*model.Event
	for iter.First(); iter.Valid(); iter.Next() {
		txID := string(iter.Value())
		data, err := s.get(EventKey(txID))
		if err != nil {
			return nil, err
		}
		event, err := DecodeEvent(data)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, iter.Error()
}

// DeleteEventsAboveBlock implements Datastore for reorg rollback.
func (s *PebbleStorage) DeleteEventsAboveBlock(ctx context.Context, height uint64) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}

	lower := EventByBlockIndexLowerBound(height + 1)
	upper := prefixUpperBound(EventByBlockIndexPrefix())
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	defer iter.Close()

	batch := s.db.NewBatch()
	defer batch.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		txID := string(iter.Value())
		data, err := s.get(EventKey(txID))
		if err != nil && err != ErrNotFound {
			return err
		}
		if err == nil {
			event, decErr := DecodeEvent(data)
			if decErr == nil {
				if err := batch.Delete(EventByHashIndexKey(event.HashID, event.BlockNumber, event.TxIndex, event.LogIndex), nil); err != nil {
					return err
				}
			}
			if err := batch.Delete(EventKey(txID), nil); err != nil {
				return err
			}
		}
		key := append([]byte(nil), iter.Key()...)
		if err := batch.Delete(key, nil); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// UpsertListing implements Datastore.
func (s *PebbleStorage) UpsertListing(ctx context.Context, l *model.Listing) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	data, err := EncodeListing(l)
	if err != nil {
		return err
	}
	return s.db.Set(ListingKey(l.HashID), data, pebble.Sync)
}

// RemoveListing implements Datastore, reporting whether a row existed.
func (s *PebbleStorage) RemoveListing(ctx context.Context, hashID common.Hash) (bool, error) {
	if err := s.ensureNotClosed(); err != nil {
		return false, err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return false, err
	}
	existed, err := s.has(ListingKey(hashID))
	if err != nil {
		return false, err
	}
	if !existed {
		return false, nil
	}
	return true, s.db.Delete(ListingKey(hashID), pebble.Sync)
}

// GetListing implements Datastore.
func (s *PebbleStorage) GetListing(ctx context.Context, hashID common.Hash) (*model.Listing, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}
	data, err := s.get(ListingKey(hashID))
	if err != nil {
		return nil, err
	}
	return DecodeListing(data)
}

// UpsertBid implements Datastore.
func (s *PebbleStorage) UpsertBid(ctx context.Context, b *model.Bid) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	data, err := EncodeBid(b)
	if err != nil {
		return err
	}
	return s.db.Set(BidKey(b.HashID), data, pebble.Sync)
}

// RemoveBid implements Datastore.
func (s *PebbleStorage) RemoveBid(ctx context.Context, hashID common.Hash) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	return s.db.Delete(BidKey(hashID), pebble.Sync)
}

// GetBid implements Datastore.
func (s *PebbleStorage) GetBid(ctx context.Context, hashID common.Hash) (*model.Bid, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}
	data, err := s.get(BidKey(hashID))
	if err != nil {
		return nil, err
	}
	return DecodeBid(data)
}

// CreateAuction implements Datastore.
func (s *PebbleStorage) CreateAuction(ctx context.Context, a *model.Auction) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	data, err := EncodeAuction(a)
	if err != nil {
		return err
	}
	return s.db.Set(AuctionKey(a.AuctionID), data, pebble.Sync)
}

// ExtendAuction implements Datastore.
func (s *PebbleStorage) ExtendAuction(ctx context.Context, auctionID uint64, endTime uint64) error {
	a, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	a.EndTime = endTime
	return s.CreateAuction(ctx, a)
}

// CreateAuctionBid implements Datastore.
func (s *PebbleStorage) CreateAuctionBid(ctx context.Context, auctionID uint64, bidder common.Address, value *big.Int) error {
	a, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	a.HighestBid = value
	a.HighestBidder = bidder
	return s.CreateAuction(ctx, a)
}

// SettleAuction implements Datastore.
func (s *PebbleStorage) SettleAuction(ctx context.Context, auctionID uint64) (*model.Auction, error) {
	a, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	a.Settled = true
	if err := s.CreateAuction(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAuction implements Datastore.
func (s *PebbleStorage) GetAuction(ctx context.Context, auctionID uint64) (*model.Auction, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}
	data, err := s.get(AuctionKey(auctionID))
	if err != nil {
		return nil, err
	}
	return DecodeAuction(data)
}

// UpdateUserPoints implements Datastore.
func (s *PebbleStorage) UpdateUserPoints(ctx context.Context, addr common.Address, points uint64) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	u, err := s.GetOrCreateUser(ctx, addr, 0)
	if err != nil {
		return err
	}
	u.Points = points
	data, err := EncodeUser(u)
	if err != nil {
		return err
	}
	return s.db.Set(UserKey(addr), data, pebble.Sync)
}

// GetOrCreateUser implements Datastore.
func (s *PebbleStorage) GetOrCreateUser(ctx context.Context, addr common.Address, createdAt uint64) (*model.User, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}

	data, err := s.get(UserKey(addr))
	if err == nil {
		return DecodeUser(data)
	}
	if err != ErrNotFound {
		return nil, err
	}

	if err := s.ensureNotReadOnly(); err != nil {
		return nil, err
	}
	u := &model.User{Address: addr, Points: 0, CreatedAt: createdAt}
	encoded, err := EncodeUser(u)
	if err != nil {
		return nil, err
	}
	if err := s.db.Set(UserKey(addr), encoded, pebble.Sync); err != nil {
		return nil, err
	}
	return u, nil
}

// LockEthscription implements Datastore.
func (s *PebbleStorage) LockEthscription(ctx context.Context, hashID common.Hash) (bool, error) {
	if err := s.ensureNotClosed(); err != nil {
		return false, err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return false, err
	}
	e, err := s.GetEthscriptionByHashID(ctx, hashID)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	e.Locked = true
	data, err := EncodeEthscription(e)
	if err != nil {
		return false, err
	}
	return true, s.db.Set(EthscriptionKey(hashID), data, pebble.Sync)
}

// UnlockEthscription implements Datastore.
func (s *PebbleStorage) UnlockEthscription(ctx context.Context, hashID common.Hash) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	e, err := s.GetEthscriptionByHashID(ctx, hashID)
	if err != nil {
		return err
	}
	e.Locked = false
	data, err := EncodeEthscription(e)
	if err != nil {
		return err
	}
	return s.db.Set(EthscriptionKey(hashID), data, pebble.Sync)
}

// GetLastBlock implements Datastore.
func (s *PebbleStorage) GetLastBlock(ctx context.Context) (uint64, error) {
	if err := s.ensureNotClosed(); err != nil {
		return 0, err
	}
	data, err := s.get(LastBlockKey())
	if err != nil {
		return 0, err
	}
	if len(data) < 8 {
		return 0, fmt.Errorf("%w: last block record too short", ErrInvalidData)
	}
	return DecodeUint64(data[:8])
}

// UpdateLastBlock implements Datastore.
func (s *PebbleStorage) UpdateLastBlock(ctx context.Context, n uint64, timestamp uint64) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	buf := make([]byte, 16)
	copy(buf[:8], EncodeUint64(n))
	copy(buf[8:], EncodeUint64(timestamp))
	return s.db.Set(LastBlockKey(), buf, pebble.Sync)
}

// CheckIsEthscriptionSha implements Datastore.
func (s *PebbleStorage) CheckIsEthscriptionSha(ctx context.Context, sha [32]byte) (uint64, bool, error) {
	if err := s.ensureNotClosed(); err != nil {
		return 0, false, err
	}
	data, err := s.get(DictionaryKey(sha))
	if err != nil {
		if err == ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	tokenID, err := DecodeUint64(data)
	if err != nil {
		return 0, false, err
	}
	return tokenID, true, nil
}

// SeedDictionary implements Datastore.
func (s *PebbleStorage) SeedDictionary(ctx context.Context, entries map[[32]byte]uint64) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	for sha, tokenID := range entries {
		if err := batch.Set(DictionaryKey(sha), EncodeUint64(tokenID), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

// AppendProcessedBlock implements Datastore's reorg window maintenance.
func (s *PebbleStorage) AppendProcessedBlock(ctx context.Context, entry model.ProcessedBlockEntry, windowLength, confirmations uint64) ([]model.ProcessedBlockEntry, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return nil, err
	}

	data, err := EncodeProcessedBlock(entry)
	if err != nil {
		return nil, err
	}
	if err := s.db.Set(ProcessedBlockKey(entry.Number), data, pebble.Sync); err != nil {
		return nil, err
	}

	window, err := s.GetProcessedBlockWindow(ctx)
	if err != nil {
		return nil, err
	}

	if uint64(len(window)) > windowLength {
		trim := window[:uint64(len(window))-windowLength]
		batch := s.db.NewBatch()
		defer batch.Close()
		for _, old := range trim {
			if err := batch.Delete(ProcessedBlockKey(old.Number), nil); err != nil {
				return nil, err
			}
		}
		if err := batch.Commit(pebble.Sync); err != nil {
			return nil, err
		}
		window = window[uint64(len(window))-windowLength:]
	}

	if uint64(len(window)) > confirmations {
		idx := uint64(len(window)) - confirmations - 1
		if !window[idx].Confirmed {
			window[idx].Confirmed = true
			data, err := EncodeProcessedBlock(window[idx])
			if err != nil {
				return nil, err
			}
			if err := s.db.Set(ProcessedBlockKey(window[idx].Number), data, pebble.Sync); err != nil {
				return nil, err
			}
		}
	}

	return window, nil
}

// GetProcessedBlockWindow implements Datastore.
func (s *PebbleStorage) GetProcessedBlockWindow(ctx context.Context) ([]model.ProcessedBlockEntry, error) {
	if err := s.ensureNotClosed(); err != nil {
		return nil, err
	}
	prefix := ProcessedBlockPrefix()
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var window []model.ProcessedBlockEntry
	for iter.First(); iter.Valid(); iter.Next() {
		entry, err := DecodeProcessedBlock(iter.Value())
		if err != nil {
			return nil, err
		}
		window = append(window, entry)
	}
	return window, iter.Error()
}

// TrimProcessedBlockWindowAbove implements Datastore.
func (s *PebbleStorage) TrimProcessedBlockWindowAbove(ctx context.Context, height uint64) error {
	if err := s.ensureNotClosed(); err != nil {
		return err
	}
	if err := s.ensureNotReadOnly(); err != nil {
		return err
	}
	window, err := s.GetProcessedBlockWindow(ctx)
	if err != nil {
		return err
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, entry := range window {
		if entry.Number > height {
			if err := batch.Delete(ProcessedBlockKey(entry.Number), nil); err != nil {
				return err
			}
		}
	}
	return batch.Commit(pebble.Sync)
}

// prefixUpperBound returns the lexicographic upper bound for an iterator
// scanning everything under prefix.
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil // prefix is all 0xff, unbounded
}

var _ Datastore = (*PebbleStorage)(nil)
