package ownership

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/storage"
)

func seedEthscription(t *testing.T, store storage.Datastore, hashID common.Hash, owner common.Address) {
	t.Helper()
	err := store.AddEthscription(context.Background(), &model.Ethscription{
		HashID: hashID,
		Sha:    [32]byte{1},
		Owner:  owner,
		Creator: owner,
	})
	require.NoError(t, err)
}

func TestApplyTransfer_Accepted(t *testing.T) {
	store := storage.NewMemory()
	hashID := common.HexToHash("0x01")
	bbb := common.HexToAddress("0xBBB")
	ccc := common.HexToAddress("0xCCC")
	seedEthscription(t, store, hashID, bbb)

	m := New(store, nil)
	event, err := m.ApplyTransfer(context.Background(), TransferParams{
		HashID: hashID,
		From:   bbb,
		To:     ccc,
		TxHash: common.HexToHash("0xtx1"),
	})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, model.EventTransfer, event.Kind)

	record, err := store.GetEthscriptionByHashID(context.Background(), hashID)
	require.NoError(t, err)
	assert.Equal(t, ccc, record.Owner)
	require.NotNil(t, record.PrevOwner)
	assert.Equal(t, bbb, *record.PrevOwner)
}

func TestApplyTransfer_RejectedWrongOwner(t *testing.T) {
	store := storage.NewMemory()
	hashID := common.HexToHash("0x01")
	bbb := common.HexToAddress("0xBBB")
	zzz := common.HexToAddress("0xZZZ")
	ccc := common.HexToAddress("0xCCC")
	seedEthscription(t, store, hashID, bbb)

	m := New(store, nil)
	event, err := m.ApplyTransfer(context.Background(), TransferParams{
		HashID: hashID,
		From:   zzz,
		To:     ccc,
		TxHash: common.HexToHash("0xtx1"),
	})
	require.NoError(t, err)
	assert.Nil(t, event)

	record, err := store.GetEthscriptionByHashID(context.Background(), hashID)
	require.NoError(t, err)
	assert.Equal(t, bbb, record.Owner)
}

func TestApplyTransfer_RejectedUnknownHashID(t *testing.T) {
	store := storage.NewMemory()
	m := New(store, nil)
	event, err := m.ApplyTransfer(context.Background(), TransferParams{
		HashID: common.HexToHash("0xdoesnotexist"),
		From:   common.HexToAddress("0xAAA"),
		To:     common.HexToAddress("0xBBB"),
	})
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestApplyTransfer_PrevOwnerHintMismatchRejected(t *testing.T) {
	store := storage.NewMemory()
	hashID := common.HexToHash("0x01")
	aaa := common.HexToAddress("0xAAA")
	bbb := common.HexToAddress("0xBBB")
	ccc := common.HexToAddress("0xCCC")
	ddd := common.HexToAddress("0xDDD")

	require.NoError(t, store.AddEthscription(context.Background(), &model.Ethscription{
		HashID: hashID, Sha: [32]byte{1}, Owner: bbb, PrevOwner: &aaa, Creator: aaa,
	}))

	m := New(store, nil)
	event, err := m.ApplyTransfer(context.Background(), TransferParams{
		HashID:        hashID,
		From:          bbb,
		To:            ccc,
		PrevOwnerHint: &ddd,
	})
	require.NoError(t, err)
	assert.Nil(t, event)
}
