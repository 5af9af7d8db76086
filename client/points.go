package client

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/0xmhha/indexer-go/abi"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func callMsg(to common.Address, data []byte) ethereum.CallMsg {
	return ethereum.CallMsg{To: &to, Data: data}
}

// pointsABI is parsed once; CallPoints/CallActiveMultiplier reuse it across
// calls instead of re-parsing the JSON fragment every time.
var pointsABI = mustParsePointsABI()

func mustParsePointsABI() gethabi.ABI {
	parsed, err := gethabi.JSON(stringsReader(abi.PointsViewABI))
	if err != nil {
		panic(fmt.Sprintf("points abi: invalid fragment: %v", err))
	}
	return parsed
}

// CallPoints reads the points contract's pointsOf(address) view (§4.6). The
// indexer treats points as externally computed state it refreshes, not
// state it accumulates itself.
func (c *Client) CallPoints(ctx context.Context, pointsAddress, user common.Address) (*big.Int, error) {
	data, err := pointsABI.Pack("pointsOf", user)
	if err != nil {
		return nil, fmt.Errorf("pack pointsOf call: %w", err)
	}

	out, err := c.ethClient.CallContract(ctx, callMsg(pointsAddress, data), nil)
	if err != nil {
		return nil, fmt.Errorf("call pointsOf: %w", err)
	}

	results, err := pointsABI.Unpack("pointsOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpack pointsOf result: %w", err)
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("unexpected pointsOf result arity: %d", len(results))
	}
	value, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected pointsOf result type %T", results[0])
	}
	return value, nil
}

// CallActiveMultiplier reads the points contract's activeMultiplier() view.
func (c *Client) CallActiveMultiplier(ctx context.Context, pointsAddress common.Address) (*big.Int, error) {
	data, err := pointsABI.Pack("activeMultiplier")
	if err != nil {
		return nil, fmt.Errorf("pack activeMultiplier call: %w", err)
	}

	out, err := c.ethClient.CallContract(ctx, callMsg(pointsAddress, data), nil)
	if err != nil {
		return nil, fmt.Errorf("call activeMultiplier: %w", err)
	}

	results, err := pointsABI.Unpack("activeMultiplier", out)
	if err != nil {
		return nil, fmt.Errorf("unpack activeMultiplier result: %w", err)
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("unexpected activeMultiplier result arity: %d", len(results))
	}
	value, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected activeMultiplier result type %T", results[0])
	}
	return value, nil
}
