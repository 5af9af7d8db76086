package abi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Canonical event signatures for the contract vocabularies the indexer
// recognizes. Topic0 hashes are derived at package init with
// crypto.Keccak256Hash rather than hand-copied, so a typo in a signature
// string shows up as a decode miss instead of silently matching the wrong
// topic.
const (
	esip1TransferSig = "ethscriptions_protocol_TransferEthscription(address,bytes32)"
	esip2TransferSig = "ethscriptions_protocol_TransferEthscriptionForPreviousOwner(address,address,bytes32)"

	phunkOfferedSig         = "PhunkOffered(bytes32,uint256,address)"
	phunkBoughtSig          = "PhunkBought(bytes32,uint256,address,address)"
	phunkNoLongerForSaleSig = "PhunkNoLongerForSale(bytes32)"
	phunkBidEnteredSig      = "PhunkBidEntered(bytes32,uint256,address)"
	phunkBidWithdrawnSig    = "PhunkBidWithdrawn(bytes32)"

	auctionCreatedSig  = "AuctionCreated(bytes32,address,uint256,uint256,uint256)"
	auctionBidSig      = "AuctionBid(bytes32,uint256,address,uint256,bool)"
	auctionExtendedSig = "AuctionExtended(bytes32,uint256,uint256)"
	auctionSettledSig  = "AuctionSettled(bytes32,uint256,address,uint256)"

	pointsAddedSig = "PointsAdded(address,uint256)"

	hashLockedSig   = "HashLocked(address,bytes32,uint256,uint256)"
	hashUnlockedSig = "HashUnlocked(address,bytes32)"
)

// Topic0 hashes for every recognized event, keyed by the canonical name used
// in model.EventKind / the classifier's dispatch table.
var (
	TopicESIP1Transfer = crypto.Keccak256Hash([]byte(esip1TransferSig))
	TopicESIP2Transfer = crypto.Keccak256Hash([]byte(esip2TransferSig))

	TopicPhunkOffered         = crypto.Keccak256Hash([]byte(phunkOfferedSig))
	TopicPhunkBought          = crypto.Keccak256Hash([]byte(phunkBoughtSig))
	TopicPhunkNoLongerForSale = crypto.Keccak256Hash([]byte(phunkNoLongerForSaleSig))
	TopicPhunkBidEntered      = crypto.Keccak256Hash([]byte(phunkBidEnteredSig))
	TopicPhunkBidWithdrawn    = crypto.Keccak256Hash([]byte(phunkBidWithdrawnSig))

	TopicAuctionCreated  = crypto.Keccak256Hash([]byte(auctionCreatedSig))
	TopicAuctionBid      = crypto.Keccak256Hash([]byte(auctionBidSig))
	TopicAuctionExtended = crypto.Keccak256Hash([]byte(auctionExtendedSig))
	TopicAuctionSettled  = crypto.Keccak256Hash([]byte(auctionSettledSig))

	TopicPointsAdded = crypto.Keccak256Hash([]byte(pointsAddedSig))

	TopicHashLocked   = crypto.Keccak256Hash([]byte(hashLockedSig))
	TopicHashUnlocked = crypto.Keccak256Hash([]byte(hashUnlockedSig))
)

// ESIP1TransferABI covers the ethscriptions protocol's own direct-transfer
// event, emitted by the ethscription's current holder contract.
const ESIP1TransferABI = `[
	{"type":"event","name":"ethscriptions_protocol_TransferEthscription","inputs":[
		{"name":"recipient","type":"address","indexed":true},
		{"name":"id","type":"bytes32","indexed":true}
	]}
]`

// ESIP2TransferABI covers the ethscriptions protocol's previous-owner-aware
// transfer event (ESIP-2), which additionally asserts the previous owner so
// the Ownership State Machine's prevOwner-agreement guard can run.
const ESIP2TransferABI = `[
	{"type":"event","name":"ethscriptions_protocol_TransferEthscriptionForPreviousOwner","inputs":[
		{"name":"previousOwner","type":"address","indexed":true},
		{"name":"recipient","type":"address","indexed":true},
		{"name":"id","type":"bytes32","indexed":true}
	]}
]`

// MarketplaceEventsABI is the minimal ABI fragment covering every event the
// marketplace contract emits that §4.7 cares about.
const MarketplaceEventsABI = `[
	{"type":"event","name":"PhunkOffered","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true},
		{"name":"minValue","type":"uint256","indexed":false},
		{"name":"toAddress","type":"address","indexed":true}
	]},
	{"type":"event","name":"PhunkBought","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true},
		{"name":"value","type":"uint256","indexed":false},
		{"name":"fromAddress","type":"address","indexed":true},
		{"name":"toAddress","type":"address","indexed":true}
	]},
	{"type":"event","name":"PhunkNoLongerForSale","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true}
	]},
	{"type":"event","name":"PhunkBidEntered","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true},
		{"name":"value","type":"uint256","indexed":false},
		{"name":"fromAddress","type":"address","indexed":true}
	]},
	{"type":"event","name":"PhunkBidWithdrawn","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true}
	]}
]`

// AuctionEventsABI covers §4.8.
const AuctionEventsABI = `[
	{"type":"event","name":"AuctionCreated","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true},
		{"name":"owner","type":"address","indexed":true},
		{"name":"auctionId","type":"uint256","indexed":false},
		{"name":"startTime","type":"uint256","indexed":false},
		{"name":"endTime","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"AuctionBid","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true},
		{"name":"auctionId","type":"uint256","indexed":false},
		{"name":"sender","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false},
		{"name":"extended","type":"bool","indexed":false}
	]},
	{"type":"event","name":"AuctionExtended","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true},
		{"name":"auctionId","type":"uint256","indexed":false},
		{"name":"endTime","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"AuctionSettled","inputs":[
		{"name":"hashId","type":"bytes32","indexed":true},
		{"name":"auctionId","type":"uint256","indexed":false},
		{"name":"winner","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}
	]}
]`

// PointsEventsABI covers §4.6.
const PointsEventsABI = `[
	{"type":"event","name":"PointsAdded","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}
	]}
]`

// BridgeEventsABI covers §4.9.
const BridgeEventsABI = `[
	{"type":"event","name":"HashLocked","inputs":[
		{"name":"prevOwner","type":"address","indexed":true},
		{"name":"hashId","type":"bytes32","indexed":true},
		{"name":"nonce","type":"uint256","indexed":false},
		{"name":"value","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"HashUnlocked","inputs":[
		{"name":"prevOwner","type":"address","indexed":true},
		{"name":"hashId","type":"bytes32","indexed":true}
	]}
]`

// PointsViewABI is the read-only surface the Chain Client calls against the
// L2 points contract (§4.1 callPoints / callActiveMultiplier).
const PointsViewABI = `[
	{"type":"function","name":"pointsOf","stateMutability":"view","inputs":[
		{"name":"user","type":"address"}
	],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"activeMultiplier","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint256"}]}
]`

// IsMarketplaceTopic reports whether topic0 belongs to the marketplace
// vocabulary; used by the classifier (§4.3) to decide log dispatch without
// needing a loaded ABI.
func IsMarketplaceTopic(topic common.Hash) bool {
	switch topic {
	case TopicPhunkOffered, TopicPhunkBought, TopicPhunkNoLongerForSale,
		TopicPhunkBidEntered, TopicPhunkBidWithdrawn:
		return true
	default:
		return false
	}
}

// IsAuctionTopic reports whether topic0 belongs to the auction vocabulary.
func IsAuctionTopic(topic common.Hash) bool {
	switch topic {
	case TopicAuctionCreated, TopicAuctionBid, TopicAuctionExtended, TopicAuctionSettled:
		return true
	default:
		return false
	}
}

// IsBridgeTopic reports whether topic0 belongs to the bridge vocabulary.
func IsBridgeTopic(topic common.Hash) bool {
	return topic == TopicHashLocked || topic == TopicHashUnlocked
}
