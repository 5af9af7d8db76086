package decode

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ourabi "github.com/0xmhha/indexer-go/abi"
)

func packNonIndexed(t *testing.T, contractABI abi.ABI, eventName string, values ...interface{}) []byte {
	t.Helper()
	event, ok := contractABI.Events[eventName]
	require.True(t, ok)
	var nonIndexed abi.Arguments
	for _, input := range event.Inputs {
		if !input.Indexed {
			nonIndexed = append(nonIndexed, input)
		}
	}
	data, err := nonIndexed.Pack(values...)
	require.NoError(t, err)
	return data
}

func TestMarketplace_PhunkOffered(t *testing.T) {
	hashID := common.HexToHash("0xabc")
	toAddr := common.HexToAddress("0xBBB")
	data := packNonIndexed(t, marketplaceABI, "PhunkOffered", big.NewInt(1e9))

	log := &types.Log{
		Topics: []common.Hash{ourabi.TopicPhunkOffered, hashID, addressTopic(toAddr)},
		Data:   data,
	}

	event, err := Marketplace(log)
	require.NoError(t, err)
	assert.Equal(t, MarketplacePhunkOffered, event.Kind)
	assert.Equal(t, hashID, event.HashID)
	assert.Equal(t, toAddr, event.ToAddress)
}

func TestMarketplace_PhunkNoLongerForSale(t *testing.T) {
	hashID := common.HexToHash("0xabc")
	log := &types.Log{
		Topics: []common.Hash{ourabi.TopicPhunkNoLongerForSale, hashID},
	}
	event, err := Marketplace(log)
	require.NoError(t, err)
	assert.Equal(t, MarketplacePhunkNoLongerForSale, event.Kind)
}

func TestAuction_AuctionCreated(t *testing.T) {
	hashID := common.HexToHash("0xabc")
	owner := common.HexToAddress("0xAAA")
	data := packNonIndexed(t, auctionABI, "AuctionCreated", big.NewInt(7), big.NewInt(100), big.NewInt(200))
	log := &types.Log{
		Topics: []common.Hash{ourabi.TopicAuctionCreated, hashID, addressTopic(owner)},
		Data:   data,
	}
	event, err := Auction(log)
	require.NoError(t, err)
	assert.Equal(t, AuctionEventCreated, event.Kind)
	assert.Equal(t, owner, event.Owner)
	assert.Equal(t, uint64(7), event.AuctionID)
	assert.Equal(t, uint64(100), event.StartTime)
	assert.Equal(t, uint64(200), event.EndTime)
}

func TestAuction_AuctionSettled(t *testing.T) {
	hashID := common.HexToHash("0xabc")
	winner := common.HexToAddress("0xCCC")
	data := packNonIndexed(t, auctionABI, "AuctionSettled", big.NewInt(7), big.NewInt(5e18))
	log := &types.Log{
		Topics: []common.Hash{ourabi.TopicAuctionSettled, hashID, addressTopic(winner)},
		Data:   data,
	}
	event, err := Auction(log)
	require.NoError(t, err)
	assert.Equal(t, AuctionEventSettled, event.Kind)
	assert.Equal(t, winner, event.Winner)
}

func TestPoints_PointsAdded(t *testing.T) {
	user := common.HexToAddress("0xAAA")
	data := packNonIndexed(t, pointsABI, "PointsAdded", big.NewInt(42))
	log := &types.Log{
		Topics: []common.Hash{ourabi.TopicPointsAdded, addressTopic(user)},
		Data:   data,
	}
	event, err := Points(log)
	require.NoError(t, err)
	assert.Equal(t, user, event.User)
}

func TestBridge_HashLocked(t *testing.T) {
	prevOwner := common.HexToAddress("0xAAA")
	hashID := common.HexToHash("0xabc")
	data := packNonIndexed(t, bridgeABI, "HashLocked", big.NewInt(1), big.NewInt(5e18))
	log := &types.Log{
		Topics: []common.Hash{ourabi.TopicHashLocked, addressTopic(prevOwner), hashID},
		Data:   data,
	}
	event, err := Bridge(log)
	require.NoError(t, err)
	assert.Equal(t, BridgeHashLocked, event.Kind)
	assert.Equal(t, prevOwner, event.PrevOwner)
}

func TestBridge_HashUnlocked(t *testing.T) {
	prevOwner := common.HexToAddress("0xAAA")
	hashID := common.HexToHash("0xabc")
	log := &types.Log{
		Topics: []common.Hash{ourabi.TopicHashUnlocked, addressTopic(prevOwner), hashID},
	}
	event, err := Bridge(log)
	require.NoError(t, err)
	assert.Equal(t, BridgeHashUnlocked, event.Kind)
}
