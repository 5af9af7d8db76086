package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/0xmhha/indexer-go/pipelineerr"
)

// BlockData is a block with its transactions and their receipts, indexed by
// the transaction's position within the block.
type BlockData struct {
	Block    *types.Block
	Receipts []*types.Receipt
}

// GetBlock fetches block n with transactions and receipts. It returns
// pipelineerr.ErrBlockNotFound wrapped as transient when the node's head
// has not advanced to n yet, and a transient error for any other RPC
// failure, matching §4.1's getBlock contract.
func (c *Client) GetBlock(ctx context.Context, number uint64) (*BlockData, error) {
	block, err := c.GetBlockByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, pipelineerr.NewTransient("getBlock", pipelineerr.ErrBlockNotFound)
		}
		return nil, pipelineerr.NewTransient("getBlock", err)
	}
	if block == nil {
		return nil, pipelineerr.NewTransient("getBlock", pipelineerr.ErrBlockNotFound)
	}
	if block.NumberU64() != number {
		return nil, pipelineerr.NewTransient("getBlock", fmt.Errorf("node returned block %d for request %d", block.NumberU64(), number))
	}

	receipts, err := c.GetBlockReceipts(ctx, number)
	if err != nil {
		return nil, pipelineerr.NewTransient("getBlock", err)
	}

	return &BlockData{Block: block, Receipts: receipts}, nil
}
