package abi

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestTopicHashesMatchCanonicalSignatures(t *testing.T) {
	cases := []struct {
		name string
		sig  string
		got  common.Hash
	}{
		{"ESIP1Transfer", esip1TransferSig, TopicESIP1Transfer},
		{"ESIP2Transfer", esip2TransferSig, TopicESIP2Transfer},
		{"PhunkOffered", phunkOfferedSig, TopicPhunkOffered},
		{"PhunkBought", phunkBoughtSig, TopicPhunkBought},
		{"PhunkNoLongerForSale", phunkNoLongerForSaleSig, TopicPhunkNoLongerForSale},
		{"PhunkBidEntered", phunkBidEnteredSig, TopicPhunkBidEntered},
		{"PhunkBidWithdrawn", phunkBidWithdrawnSig, TopicPhunkBidWithdrawn},
		{"AuctionCreated", auctionCreatedSig, TopicAuctionCreated},
		{"AuctionBid", auctionBidSig, TopicAuctionBid},
		{"AuctionExtended", auctionExtendedSig, TopicAuctionExtended},
		{"AuctionSettled", auctionSettledSig, TopicAuctionSettled},
		{"PointsAdded", pointsAddedSig, TopicPointsAdded},
		{"HashLocked", hashLockedSig, TopicHashLocked},
		{"HashUnlocked", hashUnlockedSig, TopicHashUnlocked},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, crypto.Keccak256Hash([]byte(tc.sig)), tc.got)
		})
	}
}

func TestIsMarketplaceTopic(t *testing.T) {
	assert.True(t, IsMarketplaceTopic(TopicPhunkOffered))
	assert.True(t, IsMarketplaceTopic(TopicPhunkBought))
	assert.True(t, IsMarketplaceTopic(TopicPhunkNoLongerForSale))
	assert.True(t, IsMarketplaceTopic(TopicPhunkBidEntered))
	assert.True(t, IsMarketplaceTopic(TopicPhunkBidWithdrawn))
	assert.False(t, IsMarketplaceTopic(TopicAuctionCreated))
	assert.False(t, IsMarketplaceTopic(TopicESIP1Transfer))
}

func TestIsAuctionTopic(t *testing.T) {
	assert.True(t, IsAuctionTopic(TopicAuctionCreated))
	assert.True(t, IsAuctionTopic(TopicAuctionBid))
	assert.True(t, IsAuctionTopic(TopicAuctionExtended))
	assert.True(t, IsAuctionTopic(TopicAuctionSettled))
	assert.False(t, IsAuctionTopic(TopicPhunkOffered))
}

func TestIsBridgeTopic(t *testing.T) {
	assert.True(t, IsBridgeTopic(TopicHashLocked))
	assert.True(t, IsBridgeTopic(TopicHashUnlocked))
	assert.False(t, IsBridgeTopic(TopicPointsAdded))
}

func TestKnownEventABIsParse(t *testing.T) {
	d := NewDecoder()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	assert.NoError(t, d.LoadABI(addr, "marketplace", MarketplaceEventsABI))
	assert.NoError(t, d.LoadABI(addr, "auction", AuctionEventsABI))
	assert.NoError(t, d.LoadABI(addr, "points", PointsEventsABI))
	assert.NoError(t, d.LoadABI(addr, "bridge", BridgeEventsABI))
	assert.NoError(t, d.LoadABI(addr, "pointsView", PointsViewABI))
}
