package reorg

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/storage"
)

func TestGuard_ObserveAppendsOnAgreement(t *testing.T) {
	store := storage.NewMemory()
	g := New(store, nil)

	genesisHash := common.HexToHash("0x1")
	window, err := g.Observe(context.Background(), model.ProcessedBlockEntry{
		Number: 100, Hash: genesisHash, ParentHash: common.HexToHash("0x0"),
	})
	require.NoError(t, err)
	require.Len(t, window, 1)

	nextHash := common.HexToHash("0x2")
	window, err = g.Observe(context.Background(), model.ProcessedBlockEntry{
		Number: 101, Hash: nextHash, ParentHash: genesisHash,
	})
	require.NoError(t, err)
	require.Len(t, window, 2)
}

func TestGuard_ObserveDetectsReorg(t *testing.T) {
	store := storage.NewMemory()
	g := New(store, nil)

	_, err := g.Observe(context.Background(), model.ProcessedBlockEntry{
		Number: 100, Hash: common.HexToHash("0x1"), ParentHash: common.HexToHash("0x0"),
	})
	require.NoError(t, err)

	_, err = g.Observe(context.Background(), model.ProcessedBlockEntry{
		Number: 101, Hash: common.HexToHash("0x2"), ParentHash: common.HexToHash("0xWRONG"),
	})
	require.Error(t, err)
	assert.True(t, IsReorgDetected(err))
}

func TestGuard_MarksConfirmedAtDepth(t *testing.T) {
	store := storage.NewMemory()
	g := New(store, nil)

	prev := common.HexToHash("0x0")
	var window []model.ProcessedBlockEntry
	var err error
	for i := uint64(0); i <= Confirmations; i++ {
		hash := common.BytesToHash([]byte{byte(i + 1)})
		window, err = g.Observe(context.Background(), model.ProcessedBlockEntry{
			Number: 100 + i, Hash: hash, ParentHash: prev,
		})
		require.NoError(t, err)
		prev = hash
	}

	assert.True(t, window[0].Confirmed)
	assert.False(t, window[len(window)-1].Confirmed)
}

func TestGuard_Rollback(t *testing.T) {
	store := storage.NewMemory()
	g := New(store, nil)

	require.NoError(t, store.AddEvents(context.Background(), []*model.Event{
		{TxID: "a", Kind: model.EventTransfer, BlockNumber: 100},
		{TxID: "b", Kind: model.EventTransfer, BlockNumber: 101},
	}))
	_, err := g.Observe(context.Background(), model.ProcessedBlockEntry{Number: 100, Hash: common.HexToHash("0x1")})
	require.NoError(t, err)
	_, err = g.Observe(context.Background(), model.ProcessedBlockEntry{Number: 101, Hash: common.HexToHash("0x2"), ParentHash: common.HexToHash("0x1")})
	require.NoError(t, err)

	require.NoError(t, g.Rollback(context.Background(), 100))

	window, err := store.GetProcessedBlockWindow(context.Background())
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, uint64(100), window[0].Number)
}
