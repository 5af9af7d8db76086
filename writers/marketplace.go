// Package writers applies decoded contract events to the Datastore and
// produces the domain Event rows the pipeline emits downstream. Each file
// covers one contract vocabulary (marketplace, auction, points, bridge) per
// §4.6-4.9; ownership transitions funnel through the ownership package so
// every writer that moves an owner shares the same guards.
package writers

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/decode"
	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/storage"
)

// Marketplace applies decoded marketplace events per §4.7.
type Marketplace struct {
	store  storage.Datastore
	logger *zap.Logger
}

// NewMarketplace returns a Marketplace writer backed by store.
func NewMarketplace(store storage.Datastore, logger *zap.Logger) *Marketplace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Marketplace{store: store, logger: logger}
}

// Apply applies one decoded marketplace event and returns the domain Event
// to emit, or nil if the event produced no externally visible effect (e.g. a
// stale listing that was silently discarded per the stale-listing rule, or a
// buy racing a cancellation).
func (w *Marketplace) Apply(ctx context.Context, e *decode.MarketplaceEvent, txFrom common.Address, logCtx decode.LogContext) (*model.Event, error) {
	switch e.Kind {
	case decode.MarketplacePhunkOffered:
		return w.applyOffered(ctx, e, txFrom, logCtx)
	case decode.MarketplacePhunkBought:
		return w.applyBought(ctx, e, logCtx)
	case decode.MarketplacePhunkNoLongerForSale:
		return w.applyNoLongerForSale(ctx, e, txFrom, logCtx)
	case decode.MarketplacePhunkBidEntered:
		return w.applyBidEntered(ctx, e, logCtx)
	case decode.MarketplacePhunkBidWithdrawn:
		return w.applyBidWithdrawn(ctx, e, logCtx)
	default:
		return nil, nil
	}
}

// applyOffered implements the stale-listing rule: if the ethscription's
// prevOwner is known and differs from tx.from, the contract accepted a
// listing from someone other than the legitimate previous owner; any
// existing listing is deleted and nothing is emitted.
func (w *Marketplace) applyOffered(ctx context.Context, e *decode.MarketplaceEvent, txFrom common.Address, logCtx decode.LogContext) (*model.Event, error) {
	record, err := w.store.GetEthscriptionByHashID(ctx, e.HashID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if record != nil && record.PrevOwner != nil && *record.PrevOwner != txFrom {
		if _, err := w.store.RemoveListing(ctx, e.HashID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := w.store.UpsertListing(ctx, &model.Listing{
		HashID:    e.HashID,
		Seller:    txFrom,
		MinValue:  e.Value,
		ToAddress: e.ToAddress,
		CreatedAt: logCtx.BlockTimestamp,
	}); err != nil {
		return nil, err
	}

	return marketplaceEvent(model.EventPhunkOffered, e.HashID, txFrom, e.ToAddress, e.Value, logCtx), nil
}

func (w *Marketplace) applyBought(ctx context.Context, e *decode.MarketplaceEvent, logCtx decode.LogContext) (*model.Event, error) {
	removed, err := w.store.RemoveListing(ctx, e.HashID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, nil
	}
	return marketplaceEvent(model.EventPhunkBought, e.HashID, e.FromAddress, e.ToAddress, e.Value, logCtx), nil
}

func (w *Marketplace) applyNoLongerForSale(ctx context.Context, e *decode.MarketplaceEvent, txFrom common.Address, logCtx decode.LogContext) (*model.Event, error) {
	record, err := w.store.GetEthscriptionByHashID(ctx, e.HashID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	removed, err := w.store.RemoveListing(ctx, e.HashID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, nil
	}
	if record == nil || record.PrevOwner == nil || *record.PrevOwner != txFrom {
		return nil, nil
	}

	return marketplaceEvent(model.EventPhunkNoLongerForSale, e.HashID, txFrom, common.Address{}, nil, logCtx), nil
}

func (w *Marketplace) applyBidEntered(ctx context.Context, e *decode.MarketplaceEvent, logCtx decode.LogContext) (*model.Event, error) {
	if err := w.store.UpsertBid(ctx, &model.Bid{
		HashID:    e.HashID,
		Bidder:    e.FromAddress,
		Value:     e.Value,
		CreatedAt: logCtx.BlockTimestamp,
	}); err != nil {
		return nil, err
	}
	return marketplaceEvent(model.EventPhunkBidEntered, e.HashID, e.FromAddress, common.Address{}, e.Value, logCtx), nil
}

func (w *Marketplace) applyBidWithdrawn(ctx context.Context, e *decode.MarketplaceEvent, logCtx decode.LogContext) (*model.Event, error) {
	if err := w.store.RemoveBid(ctx, e.HashID); err != nil {
		return nil, err
	}
	return marketplaceEvent(model.EventPhunkBidWithdrawn, e.HashID, common.Address{}, common.Address{}, nil, logCtx), nil
}

func marketplaceEvent(kind model.EventKind, hashID common.Hash, from, to common.Address, value *big.Int, logCtx decode.LogContext) *model.Event {
	return &model.Event{
		TxID:           model.MakeTxID(logCtx.TxHash, logCtx.LogIndex),
		Kind:           kind,
		HashID:         hashID,
		From:           from,
		To:             to,
		Value:          value,
		BlockNumber:    logCtx.BlockNumber,
		BlockHash:      logCtx.BlockHash,
		TxIndex:        logCtx.TxIndex,
		TxHash:         logCtx.TxHash,
		BlockTimestamp: logCtx.BlockTimestamp,
		LogIndex:       logCtx.LogIndex,
	}
}
