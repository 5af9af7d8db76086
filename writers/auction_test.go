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
	"github.com/0xmhha/indexer-go/ownership"
	"github.com/0xmhha/indexer-go/storage"
)

func TestAuction_SettledTransfersOwnership(t *testing.T) {
	store := storage.NewMemory()
	owner := common.HexToAddress("0xAAA")
	winner := common.HexToAddress("0xBBB")
	hashID := common.HexToHash("0xabc")

	require.NoError(t, store.AddEthscription(context.Background(), &model.Ethscription{
		HashID: hashID, Sha: [32]byte{1}, Owner: owner, Creator: owner,
	}))
	require.NoError(t, store.CreateAuction(context.Background(), &model.Auction{
		AuctionID: 7, HashID: hashID, Owner: owner,
	}))

	machine := ownership.New(store, nil)
	w := NewAuction(store, machine, nil)

	event, err := w.Apply(context.Background(), &decode.AuctionEvent{
		Kind:      decode.AuctionEventSettled,
		HashID:    hashID,
		AuctionID: 7,
		Winner:    winner,
		Amount:    big.NewInt(5e18),
	}, decode.LogContext{TxHash: common.HexToHash("0xtx")})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, model.EventAuctionSettled, event.Kind)

	record, err := store.GetEthscriptionByHashID(context.Background(), hashID)
	require.NoError(t, err)
	assert.Equal(t, winner, record.Owner)

	auction, err := store.GetAuction(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, auction.Settled)
}
