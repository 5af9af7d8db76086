package decode

import (
	"context"
	"crypto/sha256"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/storage"
)

// CreationParams is what the classifier hands the creation decoder for a
// CalldataCreation candidate.
type CreationParams struct {
	CleanedString string
	Creator       common.Address
	Owner         common.Address

	TxHash         common.Hash
	BlockNumber    uint64
	BlockHash      common.Hash
	TxIndex        uint
	BlockTimestamp uint64
	StableIndex    uint32
}

// Creation decodes a creation candidate into an inserted ethscription and a
// created event. A nil result with a nil error means the sha256 of the
// cleaned string was not found in the dictionary, or an ethscription with
// that sha/hashId already exists — both are silent skips per §4.4, not
// errors.
func Creation(ctx context.Context, store storage.Datastore, p CreationParams) (*model.Event, error) {
	sha := sha256.Sum256([]byte(p.CleanedString))

	tokenID, ok, err := store.CheckIsEthscriptionSha(ctx, sha)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	hashID := p.TxHash

	record := &model.Ethscription{
		HashID:    hashID,
		Sha:       sha,
		Owner:     p.Owner,
		Creator:   p.Creator,
		CreatedAt: p.BlockTimestamp,
		TokenID:   tokenID,
	}

	if err := store.AddEthscription(ctx, record); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, nil
		}
		return nil, err
	}

	return &model.Event{
		TxID:           model.MakeTxID(p.TxHash, p.StableIndex),
		Kind:           model.EventCreated,
		HashID:         hashID,
		From:           common.Address{},
		To:             p.Owner,
		BlockNumber:    p.BlockNumber,
		BlockHash:      p.BlockHash,
		TxIndex:        p.TxIndex,
		TxHash:         p.TxHash,
		BlockTimestamp: p.BlockTimestamp,
		LogIndex:       p.StableIndex,
	}, nil
}
