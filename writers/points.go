package writers

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/decode"
	"github.com/0xmhha/indexer-go/storage"
)

// PointsReader is the narrow Chain Client surface Points needs; satisfied by
// client.Client.CallPoints.
type PointsReader interface {
	CallPoints(ctx context.Context, pointsAddress, user common.Address) (*big.Int, error)
}

// Points applies decoded PointsAdded logs per §4.6: best-effort,
// eventually-consistent refresh of a cached total read back from the points
// contract, not an accumulation of the log's own amount.
type Points struct {
	store         storage.Datastore
	reader        PointsReader
	pointsAddress common.Address
	logger        *zap.Logger
}

// NewPoints returns a Points writer that reads totals from pointsAddress via
// reader.
func NewPoints(store storage.Datastore, reader PointsReader, pointsAddress common.Address, logger *zap.Logger) *Points {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Points{store: store, reader: reader, pointsAddress: pointsAddress, logger: logger}
}

// Refresh collects the distinct users touched by a block's PointsAdded logs
// and, for each, overwrites its stored total with the contract's current
// value. Per-user failures are logged and swallowed rather than propagated —
// points may be re-synced by any later trigger.
func (w *Points) Refresh(ctx context.Context, events []*decode.PointsEvent, blockTimestamp uint64) {
	users := make(map[common.Address]struct{}, len(events))
	for _, e := range events {
		users[e.User] = struct{}{}
	}

	for user := range users {
		total, err := w.reader.CallPoints(ctx, w.pointsAddress, user)
		if err != nil {
			w.logger.Warn("refresh points failed", zap.String("user", user.Hex()), zap.Error(err))
			continue
		}
		if _, err := w.store.GetOrCreateUser(ctx, user, blockTimestamp); err != nil {
			w.logger.Warn("get or create user failed", zap.String("user", user.Hex()), zap.Error(err))
			continue
		}
		if err := w.store.UpdateUserPoints(ctx, user, total.Uint64()); err != nil {
			w.logger.Warn("update user points failed", zap.String("user", user.Hex()), zap.Error(err))
		}
	}
}
