package storage

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xmhha/indexer-go/model"
)

// Memory is an in-process Datastore implementation used by package tests
// across the pipeline; it is not wired into cmd/indexer.
type Memory struct {
	mu sync.Mutex

	ethscriptions map[common.Hash]*model.Ethscription
	shaIndex      map[[32]byte]common.Hash
	dictionary    map[[32]byte]uint64
	events        map[string]*model.Event
	listings      map[common.Hash]*model.Listing
	bids          map[common.Hash]*model.Bid
	auctions      map[uint64]*model.Auction
	users         map[common.Address]*model.User
	window        []model.ProcessedBlockEntry
	lastBlock     uint64
	lastTimestamp uint64
	haveLastBlock bool
}

// NewMemory returns an empty Memory datastore.
func NewMemory() *Memory {
	return &Memory{
		ethscriptions: make(map[common.Hash]*model.Ethscription),
		shaIndex:      make(map[[32]byte]common.Hash),
		dictionary:    make(map[[32]byte]uint64),
		events:        make(map[string]*model.Event),
		listings:      make(map[common.Hash]*model.Listing),
		bids:          make(map[common.Hash]*model.Bid),
		auctions:      make(map[uint64]*model.Auction),
		users:         make(map[common.Address]*model.User),
	}
}

func (m *Memory) AddEthscription(ctx context.Context, e *model.Ethscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ethscriptions[e.HashID]; ok {
		return ErrAlreadyExists
	}
	if _, ok := m.shaIndex[e.Sha]; ok {
		return ErrAlreadyExists
	}
	m.ethscriptions[e.HashID] = e.Clone()
	m.shaIndex[e.Sha] = e.HashID
	return nil
}

func (m *Memory) GetEthscriptionByHashID(ctx context.Context, hashID common.Hash) (*model.Ethscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ethscriptions[hashID]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

func (m *Memory) GetEthscriptionBySha(ctx context.Context, sha [32]byte) (*model.Ethscription, error) {
	m.mu.Lock()
	hashID, ok := m.shaIndex[sha]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetEthscriptionByHashID(ctx, hashID)
}

func (m *Memory) UpdateOwner(ctx context.Context, hashID common.Hash, expectedOwner, newOwner common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ethscriptions[hashID]
	if !ok {
		return ErrNotFound
	}
	if e.Owner != expectedOwner {
		return ErrOwnerMismatch
	}
	prev := e.Owner
	e.PrevOwner = &prev
	e.Owner = newOwner
	return nil
}

func (m *Memory) AddEvents(ctx context.Context, events []*model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		if _, ok := m.events[e.TxID]; ok {
			continue
		}
		cp := *e
		m.events[e.TxID] = &cp
	}
	return nil
}

func (m *Memory) GetEventsByHashID(ctx context.Context, hashID common.Hash) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Event
	for _, e := range m.events {
		if e.HashID == hashID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

func (m *Memory) DeleteEventsAboveBlock(ctx context.Context, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for txID, e := range m.events {
		if e.BlockNumber > height {
			delete(m.events, txID)
		}
	}
	return nil
}

func (m *Memory) UpsertListing(ctx context.Context, l *model.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.listings[l.HashID] = &cp
	return nil
}

func (m *Memory) RemoveListing(ctx context.Context, hashID common.Hash) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.listings[hashID]
	delete(m.listings, hashID)
	return existed, nil
}

func (m *Memory) GetListing(ctx context.Context, hashID common.Hash) (*model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[hashID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *Memory) UpsertBid(ctx context.Context, b *model.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bids[b.HashID] = &cp
	return nil
}

func (m *Memory) RemoveBid(ctx context.Context, hashID common.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bids, hashID)
	return nil
}

func (m *Memory) GetBid(ctx context.Context, hashID common.Hash) (*model.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bids[hashID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) CreateAuction(ctx context.Context, a *model.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.auctions[a.AuctionID] = &cp
	return nil
}

func (m *Memory) ExtendAuction(ctx context.Context, auctionID uint64, endTime uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok {
		return ErrNotFound
	}
	a.EndTime = endTime
	return nil
}

func (m *Memory) CreateAuctionBid(ctx context.Context, auctionID uint64, bidder common.Address, value *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok {
		return ErrNotFound
	}
	a.HighestBid = value
	a.HighestBidder = bidder
	return nil
}

func (m *Memory) SettleAuction(ctx context.Context, auctionID uint64) (*model.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok {
		return nil, ErrNotFound
	}
	a.Settled = true
	cp := *a
	return &cp, nil
}

func (m *Memory) GetAuction(ctx context.Context, auctionID uint64) (*model.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[auctionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) UpdateUserPoints(ctx context.Context, addr common.Address, points uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[addr]
	if !ok {
		u = &model.User{Address: addr}
		m.users[addr] = u
	}
	u.Points = points
	return nil
}

func (m *Memory) GetOrCreateUser(ctx context.Context, addr common.Address, createdAt uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[addr]
	if !ok {
		u = &model.User{Address: addr, CreatedAt: createdAt}
		m.users[addr] = u
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) LockEthscription(ctx context.Context, hashID common.Hash) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ethscriptions[hashID]
	if !ok {
		return false, nil
	}
	e.Locked = true
	return true, nil
}

func (m *Memory) UnlockEthscription(ctx context.Context, hashID common.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ethscriptions[hashID]
	if !ok {
		return ErrNotFound
	}
	e.Locked = false
	return nil
}

func (m *Memory) GetLastBlock(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveLastBlock {
		return 0, ErrNotFound
	}
	return m.lastBlock, nil
}

func (m *Memory) UpdateLastBlock(ctx context.Context, n uint64, timestamp uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastBlock = n
	m.lastTimestamp = timestamp
	m.haveLastBlock = true
	return nil
}

func (m *Memory) CheckIsEthscriptionSha(ctx context.Context, sha [32]byte) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tokenID, ok := m.dictionary[sha]
	return tokenID, ok, nil
}

func (m *Memory) SeedDictionary(ctx context.Context, entries map[[32]byte]uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sha, tokenID := range entries {
		m.dictionary[sha] = tokenID
	}
	return nil
}

func (m *Memory) AppendProcessedBlock(ctx context.Context, entry model.ProcessedBlockEntry, windowLength, confirmations uint64) ([]model.ProcessedBlockEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = append(m.window, entry)
	if uint64(len(m.window)) > windowLength {
		m.window = m.window[uint64(len(m.window))-windowLength:]
	}
	if uint64(len(m.window)) > confirmations {
		idx := uint64(len(m.window)) - confirmations - 1
		m.window[idx].Confirmed = true
	}
	out := make([]model.ProcessedBlockEntry, len(m.window))
	copy(out, m.window)
	return out, nil
}

func (m *Memory) GetProcessedBlockWindow(ctx context.Context) ([]model.ProcessedBlockEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ProcessedBlockEntry, len(m.window))
	copy(out, m.window)
	return out, nil
}

func (m *Memory) TrimProcessedBlockWindowAbove(ctx context.Context, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trimmed := m.window[:0]
	for _, entry := range m.window {
		if entry.Number <= height {
			trimmed = append(trimmed, entry)
		}
	}
	m.window = trimmed
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Datastore = (*Memory)(nil)
