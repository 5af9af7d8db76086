// Package reorg implements the Reorg Guard (component G, §4.10): the
// bounded ProcessedBlock window that detects a parent-hash discontinuity and
// drives rollback to the last agreeing ancestor.
package reorg

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/pipelineerr"
	"github.com/0xmhha/indexer-go/storage"
)

// WindowLength is the number of trailing blocks the Reorg Guard retains.
const WindowLength = 30

// Confirmations is the depth behind the window's tip at which an entry is
// marked confirmed and becomes ineligible for rollback.
const Confirmations = 6

// Guard maintains the ProcessedBlock window and detects reorgs.
type Guard struct {
	store  storage.Datastore
	logger *zap.Logger
}

// New returns a Guard backed by store.
func New(store storage.Datastore, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{store: store, logger: logger}
}

// Observe implements §4.10 step 1-3 for a newly processed block: if the
// window's tip disagrees with newBlock's parent hash, it returns an error
// wrapping pipelineerr.ErrReorgDetected, without mutating the window, so the
// Coordinator can roll back via FindLastAgreeingAncestor/Rollback before
// retrying. On agreement, it appends the entry, trims to WindowLength, and
// marks the entry at Confirmations depth as confirmed.
func (g *Guard) Observe(ctx context.Context, entry model.ProcessedBlockEntry) ([]model.ProcessedBlockEntry, error) {
	window, err := g.store.GetProcessedBlockWindow(ctx)
	if err != nil {
		return nil, err
	}

	if len(window) > 0 {
		tip := window[len(window)-1]
		if tip.Hash != entry.ParentHash {
			return nil, fmt.Errorf("block %d parent %s does not match window tip %d hash %s: %w",
				entry.Number, entry.ParentHash.Hex(), tip.Number, tip.Hash.Hex(), pipelineerr.ErrReorgDetected)
		}
	}

	return g.store.AppendProcessedBlock(ctx, entry, WindowLength, Confirmations)
}

// IsReorgDetected reports whether err (however wrapped) is a reorg signal.
func IsReorgDetected(err error) bool {
	return errors.Is(err, pipelineerr.ErrReorgDetected)
}

// FindLastAgreeingAncestor walks the window from its tip backward and
// returns the highest block number whose hash the caller confirms (via
// chainHash) still matches the chain's current view. The Coordinator calls
// this once a reorg is detected, then rolls back storage above that height
// and re-enqueues from height+1.
func FindLastAgreeingAncestor(window []model.ProcessedBlockEntry, chainHash func(number uint64) (common.Hash, error)) (uint64, error) {
	for i := len(window) - 1; i >= 0; i-- {
		entry := window[i]
		if entry.Confirmed {
			// Confirmed entries are assumed final; stop walking back
			// further than necessary.
			return entry.Number, nil
		}
		h, err := chainHash(entry.Number)
		if err != nil {
			return 0, err
		}
		if h == entry.Hash {
			return entry.Number, nil
		}
	}
	if len(window) == 0 {
		return 0, nil
	}
	return window[0].Number - 1, nil
}

// Rollback deletes every event and ProcessedBlock window entry above height,
// per §7's rollback-and-replay contract. The caller is responsible for
// re-enqueuing height+1 onward afterward.
func (g *Guard) Rollback(ctx context.Context, height uint64) error {
	if err := g.store.DeleteEventsAboveBlock(ctx, height); err != nil {
		return err
	}
	return g.store.TrimProcessedBlockWindowAbove(ctx, height)
}
