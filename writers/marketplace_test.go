package writers

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/indexer-go/decode"
	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/storage"
)

func TestMarketplace_PhunkOffered_StaleListingRuleDeletesAndEmitsNothing(t *testing.T) {
	store := storage.NewMemory()
	aaa := common.HexToAddress("0xAAA")
	marketplace := common.HexToAddress("0xMarket")
	bbb := common.HexToAddress("0xBBB")
	hashID := common.HexToHash("0xabc")

	require.NoError(t, store.AddEthscription(context.Background(), &model.Ethscription{
		HashID: hashID, Sha: [32]byte{1}, Owner: marketplace, PrevOwner: &aaa, Creator: aaa,
	}))
	require.NoError(t, store.UpsertListing(context.Background(), &model.Listing{
		HashID: hashID, Seller: aaa, MinValue: big.NewInt(1),
	}))

	w := NewMarketplace(store, nil)
	event, err := w.Apply(context.Background(), &decode.MarketplaceEvent{
		Kind:   decode.MarketplacePhunkOffered,
		HashID: hashID,
		Value:  big.NewInt(1e18),
	}, bbb, decode.LogContext{TxHash: common.HexToHash("0xtx")})
	require.NoError(t, err)
	assert.Nil(t, event)

	_, err = store.GetListing(context.Background(), hashID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMarketplace_PhunkOffered_LegitimateListingUpserts(t *testing.T) {
	store := storage.NewMemory()
	aaa := common.HexToAddress("0xAAA")
	hashID := common.HexToHash("0xabc")

	require.NoError(t, store.AddEthscription(context.Background(), &model.Ethscription{
		HashID: hashID, Sha: [32]byte{1}, Owner: aaa, Creator: aaa,
	}))

	w := NewMarketplace(store, nil)
	event, err := w.Apply(context.Background(), &decode.MarketplaceEvent{
		Kind:   decode.MarketplacePhunkOffered,
		HashID: hashID,
		Value:  big.NewInt(1e18),
	}, aaa, decode.LogContext{TxHash: common.HexToHash("0xtx")})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, model.EventPhunkOffered, event.Kind)

	listing, err := store.GetListing(context.Background(), hashID)
	require.NoError(t, err)
	assert.Equal(t, aaa, listing.Seller)
}

func TestMarketplace_PhunkBought_NoListingEmitsNothing(t *testing.T) {
	store := storage.NewMemory()
	w := NewMarketplace(store, nil)
	event, err := w.Apply(context.Background(), &decode.MarketplaceEvent{
		Kind:   decode.MarketplacePhunkBought,
		HashID: common.HexToHash("0xabc"),
	}, common.Address{}, decode.LogContext{TxHash: common.HexToHash("0xtx")})
	require.NoError(t, err)
	assert.Nil(t, event)
}
