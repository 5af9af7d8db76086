package decode

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/0xmhha/indexer-go/ownership"
)

// HashValidator checks which of a set of candidate hashIds correspond to
// real, uniquely inscribed ethscriptions. It is satisfied by
// client.Validator.ValidateHashIDs; decode depends only on this narrow
// interface so it can be unit tested without an HTTP round trip.
type HashValidator interface {
	ValidateHashIDs(hashIDs []common.Hash) ([]common.Hash, error)
}

// DirectTransfer builds the ownership.TransferParams for a CalldataDirectTransfer
// candidate: a bare 32-byte calldata word naming the hashId being transferred
// from tx.From() to tx.To().
func DirectTransfer(ctx LogContext, from, to common.Address, hashID common.Hash, value *big.Int) ownership.TransferParams {
	return ownership.TransferParams{
		HashID:         hashID,
		From:           from,
		To:             to,
		Value:          value,
		TxHash:         ctx.TxHash,
		BlockNumber:    ctx.BlockNumber,
		BlockHash:      ctx.BlockHash,
		TxIndex:        ctx.TxIndex,
		BlockTimestamp: ctx.BlockTimestamp,
		StableIndex:    ctx.LogIndex,
	}
}

// BatchTransfer validates every word of an ESIP-5 batch calldata against the
// external provider and returns one TransferParams per word confirmed to be
// a real hashId, preserving each word's original position in the batch as
// its StableIndex so txId stays unique and ordering stays stable.
func BatchTransfer(ctx LogContext, validator HashValidator, from, to common.Address, words []common.Hash) ([]ownership.TransferParams, error) {
	valid, err := validator.ValidateHashIDs(words)
	if err != nil {
		return nil, err
	}
	validSet := make(map[common.Hash]struct{}, len(valid))
	for _, h := range valid {
		validSet[h] = struct{}{}
	}

	params := make([]ownership.TransferParams, 0, len(words))
	for i, word := range words {
		if _, ok := validSet[word]; !ok {
			continue
		}
		params = append(params, ownership.TransferParams{
			HashID:         word,
			From:           from,
			To:             to,
			TxHash:         ctx.TxHash,
			BlockNumber:    ctx.BlockNumber,
			BlockHash:      ctx.BlockHash,
			TxIndex:        ctx.TxIndex,
			BlockTimestamp: ctx.BlockTimestamp,
			StableIndex:    uint32(i),
		})
	}
	return params, nil
}

// ESIP1Transfer decodes an ethscriptions_protocol_TransferEthscription log
// into TransferParams. from is the log's emitting address (the contract
// performing the transfer); there is no previous-owner assertion to check.
func ESIP1Transfer(ctx LogContext, log *types.Log, value *big.Int) (ownership.TransferParams, error) {
	_, args, err := decodeLogArgs(esip1ABI, log)
	if err != nil {
		return ownership.TransferParams{}, err
	}
	recipient := args["recipient"].(common.Address)
	idBytes := args["id"].([32]byte)

	return ownership.TransferParams{
		HashID:         common.Hash(idBytes),
		From:           log.Address,
		To:             recipient,
		Value:          value,
		TxHash:         ctx.TxHash,
		BlockNumber:    ctx.BlockNumber,
		BlockHash:      ctx.BlockHash,
		TxIndex:        ctx.TxIndex,
		BlockTimestamp: ctx.BlockTimestamp,
		StableIndex:    ctx.LogIndex,
	}, nil
}

// ESIP2Transfer decodes an
// ethscriptions_protocol_TransferEthscriptionForPreviousOwner log, which
// additionally asserts the previous owner so the Ownership State Machine's
// prevOwner-agreement guard can run.
func ESIP2Transfer(ctx LogContext, log *types.Log, value *big.Int) (ownership.TransferParams, error) {
	_, args, err := decodeLogArgs(esip2ABI, log)
	if err != nil {
		return ownership.TransferParams{}, err
	}
	previousOwner := args["previousOwner"].(common.Address)
	recipient := args["recipient"].(common.Address)
	idBytes := args["id"].([32]byte)

	return ownership.TransferParams{
		HashID:         common.Hash(idBytes),
		From:           log.Address,
		To:             recipient,
		Value:          value,
		PrevOwnerHint:  &previousOwner,
		TxHash:         ctx.TxHash,
		BlockNumber:    ctx.BlockNumber,
		BlockHash:      ctx.BlockHash,
		TxIndex:        ctx.TxIndex,
		BlockTimestamp: ctx.BlockTimestamp,
		StableIndex:    ctx.LogIndex,
	}, nil
}
