package writers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/decode"
	"github.com/0xmhha/indexer-go/pipelineerr"
	"github.com/0xmhha/indexer-go/storage"
)

// BridgeOutQueue is where a confirmed HashLocked hands off (hashId,
// prevOwner) to the external bridge-out worker. The indexer's own scope ends
// at enqueuing; what happens on the other chain is out of scope.
type BridgeOutQueue interface {
	Enqueue(hashID, prevOwner string)
}

// Bridge applies decoded bridge events per §4.9.
type Bridge struct {
	store  storage.Datastore
	outbox BridgeOutQueue
	logger *zap.Logger
}

// NewBridge returns a Bridge writer. outbox may be nil, in which case
// HashLocked only marks the ethscription locked without enqueuing anything.
func NewBridge(store storage.Datastore, outbox BridgeOutQueue, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{store: store, outbox: outbox, logger: logger}
}

// Apply applies one decoded bridge event. A HashLocked whose hashId is
// unknown to the store returns a pipelineerr.Fatal error — bridge
// inconsistency must stop the coordinator, not be silently accepted.
func (w *Bridge) Apply(ctx context.Context, e *decode.BridgeEvent) error {
	switch e.Kind {
	case decode.BridgeHashLocked:
		return w.applyLocked(ctx, e)
	case decode.BridgeHashUnlocked:
		return w.store.UnlockEthscription(ctx, e.HashID)
	default:
		return nil
	}
}

func (w *Bridge) applyLocked(ctx context.Context, e *decode.BridgeEvent) error {
	found, err := w.store.LockEthscription(ctx, e.HashID)
	if err != nil {
		return err
	}
	if !found {
		return pipelineerr.NewFatal("bridge.lockEthscription", fmt.Errorf("hashId %s not found", e.HashID.Hex()))
	}
	if w.outbox != nil {
		w.outbox.Enqueue(e.HashID.Hex(), e.PrevOwner.Hex())
	}
	return nil
}
