// Package ownership implements the Ownership State Machine (§4.5): the
// single operation, applyTransfer, that every transfer variant (direct
// calldata, batch item, ESIP-1 log, ESIP-2 log, auction settlement) funnels
// through, so the existence/transferrer-is-owner/prevOwner-agreement guards
// are enforced exactly once regardless of which decoder produced the
// request.
package ownership

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/storage"
)

// TransferParams is the variant-agnostic input to ApplyTransfer. Every
// entry point in §4.5 (direct, batch, ESIP-1, ESIP-2, auction settlement)
// builds one of these and hands it to the same guard logic.
type TransferParams struct {
	HashID common.Hash
	From   common.Address
	To     common.Address
	Value  *big.Int

	// PrevOwnerHint is non-nil only for ESIP-2 and other variants that
	// assert the previous owner; the guard only fires when both this and
	// the stored record's PrevOwner are non-nil.
	PrevOwnerHint *common.Address

	TxHash         common.Hash
	BlockNumber    uint64
	BlockHash      common.Hash
	TxIndex        uint
	BlockTimestamp uint64
	StableIndex    uint32
}

// Machine applies transfers to the Datastore under the guards of §4.5.
type Machine struct {
	store  storage.Datastore
	logger *zap.Logger
}

// New returns a Machine backed by store.
func New(store storage.Datastore, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{store: store, logger: logger}
}

// ApplyTransfer implements §4.5's applyTransfer. A nil event with a nil
// error means a guard silently rejected the transfer — the normal way
// invalid transfers are discarded, not a failure the caller should log or
// retry.
func (m *Machine) ApplyTransfer(ctx context.Context, p TransferParams) (*model.Event, error) {
	record, err := m.store.GetEthscriptionByHashID(ctx, p.HashID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if record.Owner != p.From {
		return nil, nil
	}

	if p.PrevOwnerHint != nil && record.PrevOwner != nil && *record.PrevOwner != *p.PrevOwnerHint {
		return nil, nil
	}

	if err := m.store.UpdateOwner(ctx, p.HashID, p.From, p.To); err != nil {
		if errors.Is(err, storage.ErrOwnerMismatch) || errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	value := p.Value
	if value == nil {
		value = big.NewInt(0)
	}

	return &model.Event{
		TxID:           model.MakeTxID(p.TxHash, p.StableIndex),
		Kind:           model.EventTransfer,
		HashID:         p.HashID,
		From:           p.From,
		To:             p.To,
		Value:          value,
		BlockNumber:    p.BlockNumber,
		BlockHash:      p.BlockHash,
		TxIndex:        p.TxIndex,
		TxHash:         p.TxHash,
		BlockTimestamp: p.BlockTimestamp,
		LogIndex:       p.StableIndex,
	}, nil
}
