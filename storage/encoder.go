package storage

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xmhha/indexer-go/model"
)

// Wire structs mirror the model types but render *big.Int as decimal
// strings, per the teacher's serializeValue convention in
// abi/decoder.go — JSON numbers lose precision above 2^53 and wei amounts
// routinely exceed it.

type ethscriptionWire struct {
	HashID    string  `json:"hashId"`
	Sha       string  `json:"sha"`
	Owner     string  `json:"owner"`
	PrevOwner *string `json:"prevOwner"`
	Creator   string  `json:"creator"`
	CreatedAt uint64  `json:"createdAt"`
	TokenID   uint64  `json:"tokenId"`
	Locked    bool    `json:"locked"`
}

// EncodeEthscription serializes an Ethscription for storage.
func EncodeEthscription(e *model.Ethscription) ([]byte, error) {
	w := ethscriptionWire{
		HashID:    e.HashID.Hex(),
		Sha:       fmt.Sprintf("%x", e.Sha),
		Owner:     e.Owner.Hex(),
		Creator:   e.Creator.Hex(),
		CreatedAt: e.CreatedAt,
		TokenID:   e.TokenID,
		Locked:    e.Locked,
	}
	if e.PrevOwner != nil {
		prev := e.PrevOwner.Hex()
		w.PrevOwner = &prev
	}
	return json.Marshal(w)
}

// DecodeEthscription deserializes an Ethscription from storage.
func DecodeEthscription(data []byte) (*model.Ethscription, error) {
	var w ethscriptionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	sha, err := decodeSha(w.Sha)
	if err != nil {
		return nil, err
	}
	e := &model.Ethscription{
		HashID:    common.HexToHash(w.HashID),
		Sha:       sha,
		Owner:     common.HexToAddress(w.Owner),
		Creator:   common.HexToAddress(w.Creator),
		CreatedAt: w.CreatedAt,
		TokenID:   w.TokenID,
		Locked:    w.Locked,
	}
	if w.PrevOwner != nil {
		prev := common.HexToAddress(*w.PrevOwner)
		e.PrevOwner = &prev
	}
	return e, nil
}

func decodeSha(hexStr string) ([32]byte, error) {
	var sha [32]byte
	n, err := fmt.Sscanf(hexStr, "%x", &sha)
	if err != nil || n != 1 {
		return sha, fmt.Errorf("%w: invalid sha hex %q", ErrInvalidData, hexStr)
	}
	return sha, nil
}

type eventWire struct {
	TxID           string `json:"txId"`
	Kind           string `json:"kind"`
	HashID         string `json:"hashId"`
	From           string `json:"from"`
	To             string `json:"to"`
	Value          string `json:"value"`
	BlockNumber    uint64 `json:"blockNumber"`
	BlockHash      string `json:"blockHash"`
	TxIndex        uint   `json:"txIndex"`
	TxHash         string `json:"txHash"`
	BlockTimestamp uint64 `json:"blockTimestamp"`
	LogIndex       uint32 `json:"logIndex"`
}

// EncodeEvent serializes an Event for storage.
func EncodeEvent(e *model.Event) ([]byte, error) {
	value := e.Value
	if value == nil {
		value = big.NewInt(0)
	}
	w := eventWire{
		TxID:           e.TxID,
		Kind:           string(e.Kind),
		HashID:         e.HashID.Hex(),
		From:           e.From.Hex(),
		To:             e.To.Hex(),
		Value:          value.String(),
		BlockNumber:    e.BlockNumber,
		BlockHash:      e.BlockHash.Hex(),
		TxIndex:        e.TxIndex,
		TxHash:         e.TxHash.Hex(),
		BlockTimestamp: e.BlockTimestamp,
		LogIndex:       e.LogIndex,
	}
	return json.Marshal(w)
}

// DecodeEvent deserializes an Event from storage.
func DecodeEvent(data []byte) (*model.Event, error) {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	value, ok := new(big.Int).SetString(w.Value, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid event value %q", ErrInvalidData, w.Value)
	}
	return &model.Event{
		TxID:           w.TxID,
		Kind:           model.EventKind(w.Kind),
		HashID:         common.HexToHash(w.HashID),
		From:           common.HexToAddress(w.From),
		To:             common.HexToAddress(w.To),
		Value:          value,
		BlockNumber:    w.BlockNumber,
		BlockHash:      common.HexToHash(w.BlockHash),
		TxIndex:        w.TxIndex,
		TxHash:         common.HexToHash(w.TxHash),
		BlockTimestamp: w.BlockTimestamp,
		LogIndex:       w.LogIndex,
	}, nil
}

type listingWire struct {
	HashID    string `json:"hashId"`
	Seller    string `json:"seller"`
	MinValue  string `json:"minValue"`
	ToAddress string `json:"toAddress"`
	CreatedAt uint64 `json:"createdAt"`
}

// EncodeListing serializes a Listing for storage.
func EncodeListing(l *model.Listing) ([]byte, error) {
	minValue := l.MinValue
	if minValue == nil {
		minValue = big.NewInt(0)
	}
	w := listingWire{
		HashID:    l.HashID.Hex(),
		Seller:    l.Seller.Hex(),
		MinValue:  minValue.String(),
		ToAddress: l.ToAddress.Hex(),
		CreatedAt: l.CreatedAt,
	}
	return json.Marshal(w)
}

// DecodeListing deserializes a Listing from storage.
func DecodeListing(data []byte) (*model.Listing, error) {
	var w listingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	minValue, ok := new(big.Int).SetString(w.MinValue, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid listing minValue %q", ErrInvalidData, w.MinValue)
	}
	return &model.Listing{
		HashID:    common.HexToHash(w.HashID),
		Seller:    common.HexToAddress(w.Seller),
		MinValue:  minValue,
		ToAddress: common.HexToAddress(w.ToAddress),
		CreatedAt: w.CreatedAt,
	}, nil
}

type bidWire struct {
	HashID    string `json:"hashId"`
	Bidder    string `json:"bidder"`
	Value     string `json:"value"`
	CreatedAt uint64 `json:"createdAt"`
}

// EncodeBid serializes a Bid for storage.
func EncodeBid(b *model.Bid) ([]byte, error) {
	value := b.Value
	if value == nil {
		value = big.NewInt(0)
	}
	w := bidWire{
		HashID:    b.HashID.Hex(),
		Bidder:    b.Bidder.Hex(),
		Value:     value.String(),
		CreatedAt: b.CreatedAt,
	}
	return json.Marshal(w)
}

// DecodeBid deserializes a Bid from storage.
func DecodeBid(data []byte) (*model.Bid, error) {
	var w bidWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	value, ok := new(big.Int).SetString(w.Value, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid bid value %q", ErrInvalidData, w.Value)
	}
	return &model.Bid{
		HashID:    common.HexToHash(w.HashID),
		Bidder:    common.HexToAddress(w.Bidder),
		Value:     value,
		CreatedAt: w.CreatedAt,
	}, nil
}

type auctionWire struct {
	AuctionID                 uint64 `json:"auctionId"`
	HashID                    string `json:"hashId"`
	Owner                     string `json:"owner"`
	StartTime                 uint64 `json:"startTime"`
	EndTime                   uint64 `json:"endTime"`
	ReservePrice              string `json:"reservePrice"`
	MinBidIncrementPercentage uint64 `json:"minBidIncrementPercentage"`
	TimeBuffer                uint64 `json:"timeBuffer"`
	HighestBid                string `json:"highestBid"`
	HighestBidder             string `json:"highestBidder"`
	Settled                   bool   `json:"settled"`
}

// EncodeAuction serializes an Auction for storage.
func EncodeAuction(a *model.Auction) ([]byte, error) {
	reserve := a.ReservePrice
	if reserve == nil {
		reserve = big.NewInt(0)
	}
	highest := a.HighestBid
	if highest == nil {
		highest = big.NewInt(0)
	}
	w := auctionWire{
		AuctionID:                 a.AuctionID,
		HashID:                    a.HashID.Hex(),
		Owner:                     a.Owner.Hex(),
		StartTime:                 a.StartTime,
		EndTime:                   a.EndTime,
		ReservePrice:              reserve.String(),
		MinBidIncrementPercentage: a.MinBidIncrementPercentage,
		TimeBuffer:                a.TimeBuffer,
		HighestBid:                highest.String(),
		HighestBidder:             a.HighestBidder.Hex(),
		Settled:                   a.Settled,
	}
	return json.Marshal(w)
}

// DecodeAuction deserializes an Auction from storage.
func DecodeAuction(data []byte) (*model.Auction, error) {
	var w auctionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	reserve, ok := new(big.Int).SetString(w.ReservePrice, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid auction reservePrice %q", ErrInvalidData, w.ReservePrice)
	}
	highest, ok := new(big.Int).SetString(w.HighestBid, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid auction highestBid %q", ErrInvalidData, w.HighestBid)
	}
	return &model.Auction{
		AuctionID:                 w.AuctionID,
		HashID:                    common.HexToHash(w.HashID),
		Owner:                     common.HexToAddress(w.Owner),
		StartTime:                 w.StartTime,
		EndTime:                   w.EndTime,
		ReservePrice:              reserve,
		MinBidIncrementPercentage: w.MinBidIncrementPercentage,
		TimeBuffer:                w.TimeBuffer,
		HighestBid:                highest,
		HighestBidder:             common.HexToAddress(w.HighestBidder),
		Settled:                   w.Settled,
	}, nil
}

type userWire struct {
	Address   string `json:"address"`
	Points    uint64 `json:"points"`
	CreatedAt uint64 `json:"createdAt"`
}

// EncodeUser serializes a User for storage.
func EncodeUser(u *model.User) ([]byte, error) {
	w := userWire{Address: u.Address.Hex(), Points: u.Points, CreatedAt: u.CreatedAt}
	return json.Marshal(w)
}

// DecodeUser deserializes a User from storage.
func DecodeUser(data []byte) (*model.User, error) {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &model.User{
		Address:   common.HexToAddress(w.Address),
		Points:    w.Points,
		CreatedAt: w.CreatedAt,
	}, nil
}

type processedBlockWire struct {
	Number     uint64 `json:"number"`
	Hash       string `json:"hash"`
	ParentHash string `json:"parentHash"`
	Confirmed  bool   `json:"confirmed"`
}

// EncodeProcessedBlock serializes a ProcessedBlockEntry for storage.
func EncodeProcessedBlock(e model.ProcessedBlockEntry) ([]byte, error) {
	w := processedBlockWire{
		Number:     e.Number,
		Hash:       e.Hash.Hex(),
		ParentHash: e.ParentHash.Hex(),
		Confirmed:  e.Confirmed,
	}
	return json.Marshal(w)
}

// DecodeProcessedBlock deserializes a ProcessedBlockEntry from storage.
func DecodeProcessedBlock(data []byte) (model.ProcessedBlockEntry, error) {
	var w processedBlockWire
	if err := json.Unmarshal(data, &w); err != nil {
		return model.ProcessedBlockEntry{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return model.ProcessedBlockEntry{
		Number:     w.Number,
		Hash:       common.HexToHash(w.Hash),
		ParentHash: common.HexToHash(w.ParentHash),
		Confirmed:  w.Confirmed,
	}, nil
}
