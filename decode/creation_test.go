package decode

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/storage"
)

func TestCreation_InsertsEthscriptionAndEmitsEvent(t *testing.T) {
	store := storage.NewMemory()
	cleaned := "data:image/svg+xml,<svg></svg>"
	sha := sha256.Sum256([]byte(cleaned))
	require.NoError(t, store.SeedDictionary(context.Background(), map[[32]byte]uint64{sha: 42}))

	aaa := common.HexToAddress("0xAAA")
	bbb := common.HexToAddress("0xBBB")
	txHash := common.HexToHash("0xtx1")

	event, err := Creation(context.Background(), store, CreationParams{
		CleanedString:  cleaned,
		Creator:        aaa,
		Owner:          bbb,
		TxHash:         txHash,
		BlockNumber:    100,
		BlockTimestamp: 12345,
	})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, model.EventCreated, event.Kind)
	assert.Equal(t, bbb, event.To)

	record, err := store.GetEthscriptionByHashID(context.Background(), txHash)
	require.NoError(t, err)
	assert.Equal(t, bbb, record.Owner)
	assert.Equal(t, aaa, record.Creator)
	assert.Equal(t, uint64(42), record.TokenID)
}

func TestCreation_UnknownShaIsSilentlySkipped(t *testing.T) {
	store := storage.NewMemory()
	event, err := Creation(context.Background(), store, CreationParams{
		CleanedString: "data:image/svg+xml,<svg>unknown</svg>",
		TxHash:        common.HexToHash("0xtx2"),
	})
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestCreation_DuplicateIsSilentlySkipped(t *testing.T) {
	store := storage.NewMemory()
	cleaned := "data:image/svg+xml,<svg></svg>"
	sha := sha256.Sum256([]byte(cleaned))
	require.NoError(t, store.SeedDictionary(context.Background(), map[[32]byte]uint64{sha: 1}))
	txHash := common.HexToHash("0xtx3")

	_, err := Creation(context.Background(), store, CreationParams{
		CleanedString: cleaned,
		TxHash:        txHash,
	})
	require.NoError(t, err)

	event, err := Creation(context.Background(), store, CreationParams{
		CleanedString: cleaned,
		TxHash:        txHash,
	})
	require.NoError(t, err)
	assert.Nil(t, event)
}
