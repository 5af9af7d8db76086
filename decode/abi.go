package decode

import (
	"fmt"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"

	ourabi "github.com/0xmhha/indexer-go/abi"
)

var (
	esip1ABI       = mustParseABI(ourabi.ESIP1TransferABI)
	esip2ABI       = mustParseABI(ourabi.ESIP2TransferABI)
	marketplaceABI = mustParseABI(ourabi.MarketplaceEventsABI)
	auctionABI     = mustParseABI(ourabi.AuctionEventsABI)
	pointsABI      = mustParseABI(ourabi.PointsEventsABI)
	bridgeABI      = mustParseABI(ourabi.BridgeEventsABI)
)

func mustParseABI(fragment string) gethabi.ABI {
	parsed, err := gethabi.JSON(strings.NewReader(fragment))
	if err != nil {
		panic(fmt.Sprintf("decode: invalid ABI fragment: %v", err))
	}
	return parsed
}

// decodeLogArgs decodes a log's indexed topics and non-indexed data into a
// single args map keyed by parameter name, using gethabi's typed values
// directly rather than the string-serialized form abi.Decoder produces —
// the ownership machine and writers need *big.Int/common.Address/[32]byte,
// not their hex/decimal renderings.
func decodeLogArgs(contractABI gethabi.ABI, log *types.Log) (string, map[string]interface{}, error) {
	if len(log.Topics) == 0 {
		return "", nil, fmt.Errorf("log has no topics")
	}

	event, err := contractABI.EventByID(log.Topics[0])
	if err != nil {
		return "", nil, fmt.Errorf("event not found for topic %s: %w", log.Topics[0].Hex(), err)
	}

	args := make(map[string]interface{})

	var indexed gethabi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(indexed) > 0 {
		if err := gethabi.ParseTopicsIntoMap(args, indexed, log.Topics[1:]); err != nil {
			return "", nil, fmt.Errorf("parse indexed params: %w", err)
		}
	}

	var nonIndexed gethabi.Arguments
	for _, input := range event.Inputs {
		if !input.Indexed {
			nonIndexed = append(nonIndexed, input)
		}
	}
	if len(nonIndexed) > 0 {
		if err := nonIndexed.UnpackIntoMap(args, log.Data); err != nil {
			return "", nil, fmt.Errorf("parse non-indexed params: %w", err)
		}
	}

	return event.Name, args, nil
}
