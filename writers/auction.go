package writers

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/decode"
	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/ownership"
	"github.com/0xmhha/indexer-go/storage"
)

// Auction applies decoded auction events per §4.8.
type Auction struct {
	store     storage.Datastore
	ownership *ownership.Machine
	logger    *zap.Logger
}

// NewAuction returns an Auction writer backed by store, settling ownership
// transfers through machine so §4.5's guards apply identically to auction
// settlement as to every other transfer variant.
func NewAuction(store storage.Datastore, machine *ownership.Machine, logger *zap.Logger) *Auction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auction{store: store, ownership: machine, logger: logger}
}

// Apply applies one decoded auction event and returns the domain Event to
// emit, or nil if it produced no externally visible effect.
func (w *Auction) Apply(ctx context.Context, e *decode.AuctionEvent, logCtx decode.LogContext) (*model.Event, error) {
	switch e.Kind {
	case decode.AuctionEventCreated:
		return w.applyCreated(ctx, e, logCtx)
	case decode.AuctionEventBid:
		return w.applyBid(ctx, e, logCtx)
	case decode.AuctionEventExtended:
		return w.applyExtended(ctx, e, logCtx)
	case decode.AuctionEventSettled:
		return w.applySettled(ctx, e, logCtx)
	default:
		return nil, nil
	}
}

func (w *Auction) applyCreated(ctx context.Context, e *decode.AuctionEvent, logCtx decode.LogContext) (*model.Event, error) {
	if err := w.store.CreateAuction(ctx, &model.Auction{
		AuctionID: e.AuctionID,
		HashID:    e.HashID,
		Owner:     e.Owner,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}); err != nil {
		return nil, err
	}
	return auctionEvent(model.EventAuctionCreated, e.HashID, logCtx), nil
}

func (w *Auction) applyBid(ctx context.Context, e *decode.AuctionEvent, logCtx decode.LogContext) (*model.Event, error) {
	if err := w.store.CreateAuctionBid(ctx, e.AuctionID, e.Sender, e.Value); err != nil {
		return nil, err
	}
	return auctionEvent(model.EventAuctionBid, e.HashID, logCtx), nil
}

func (w *Auction) applyExtended(ctx context.Context, e *decode.AuctionEvent, logCtx decode.LogContext) (*model.Event, error) {
	if err := w.store.ExtendAuction(ctx, e.AuctionID, e.EndTime); err != nil {
		return nil, err
	}
	return auctionEvent(model.EventAuctionExtended, e.HashID, logCtx), nil
}

// applySettled marks the auction settled and drives the ownership transfer
// to the winner under the same guards as §4.5 — no prevOwner hint, matching
// the auction contract's own custody of the ethscription.
func (w *Auction) applySettled(ctx context.Context, e *decode.AuctionEvent, logCtx decode.LogContext) (*model.Event, error) {
	auction, err := w.store.SettleAuction(ctx, e.AuctionID)
	if err != nil {
		return nil, err
	}

	if _, err := w.ownership.ApplyTransfer(ctx, ownership.TransferParams{
		HashID:         e.HashID,
		From:           auction.Owner,
		To:             e.Winner,
		Value:          e.Amount,
		TxHash:         logCtx.TxHash,
		BlockNumber:    logCtx.BlockNumber,
		BlockHash:      logCtx.BlockHash,
		TxIndex:        logCtx.TxIndex,
		BlockTimestamp: logCtx.BlockTimestamp,
		StableIndex:    logCtx.LogIndex,
	}); err != nil {
		return nil, err
	}

	return auctionEvent(model.EventAuctionSettled, e.HashID, logCtx), nil
}

func auctionEvent(kind model.EventKind, hashID common.Hash, logCtx decode.LogContext) *model.Event {
	return &model.Event{
		TxID:           model.MakeTxID(logCtx.TxHash, logCtx.LogIndex),
		Kind:           kind,
		HashID:         hashID,
		BlockNumber:    logCtx.BlockNumber,
		BlockHash:      logCtx.BlockHash,
		TxIndex:        logCtx.TxIndex,
		TxHash:         logCtx.TxHash,
		BlockTimestamp: logCtx.BlockTimestamp,
		LogIndex:       logCtx.LogIndex,
	}
}
