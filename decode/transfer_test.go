package decode

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ourabi "github.com/0xmhha/indexer-go/abi"
)

type fakeValidator struct {
	valid []common.Hash
	err   error
}

func (f *fakeValidator) ValidateHashIDs(hashIDs []common.Hash) ([]common.Hash, error) {
	return f.valid, f.err
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func TestBatchTransfer_OnlyValidWordsPreserveBatchPosition(t *testing.T) {
	w1 := common.HexToHash("0x01")
	w2 := common.HexToHash("0x02")
	w3 := common.HexToHash("0x03")
	validator := &fakeValidator{valid: []common.Hash{w1, w3}}

	bbb := common.HexToAddress("0xBBB")
	ccc := common.HexToAddress("0xCCC")

	params, err := BatchTransfer(LogContext{TxHash: common.HexToHash("0xtx")}, validator, bbb, ccc, []common.Hash{w1, w2, w3})
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, w1, params[0].HashID)
	assert.Equal(t, uint32(0), params[0].StableIndex)
	assert.Equal(t, w3, params[1].HashID)
	assert.Equal(t, uint32(2), params[1].StableIndex)
}

func TestESIP1Transfer_Decodes(t *testing.T) {
	emitter := common.HexToAddress("0xEEE")
	recipient := common.HexToAddress("0xBBB")
	hashID := common.HexToHash("0xabc")

	log := &types.Log{
		Address: emitter,
		Topics:  []common.Hash{ourabi.TopicESIP1Transfer, addressTopic(recipient), hashID},
	}

	params, err := ESIP1Transfer(LogContext{TxHash: common.HexToHash("0xtx")}, log, nil)
	require.NoError(t, err)
	assert.Equal(t, emitter, params.From)
	assert.Equal(t, recipient, params.To)
	assert.Equal(t, hashID, params.HashID)
	assert.Nil(t, params.PrevOwnerHint)
}

func TestESIP2Transfer_SetsPrevOwnerHint(t *testing.T) {
	emitter := common.HexToAddress("0xEEE")
	previousOwner := common.HexToAddress("0xAAA")
	recipient := common.HexToAddress("0xBBB")
	hashID := common.HexToHash("0xabc")

	log := &types.Log{
		Address: emitter,
		Topics:  []common.Hash{ourabi.TopicESIP2Transfer, addressTopic(previousOwner), addressTopic(recipient), hashID},
	}

	params, err := ESIP2Transfer(LogContext{TxHash: common.HexToHash("0xtx")}, log, nil)
	require.NoError(t, err)
	require.NotNil(t, params.PrevOwnerHint)
	assert.Equal(t, previousOwner, *params.PrevOwnerHint)
	assert.Equal(t, recipient, params.To)
}
