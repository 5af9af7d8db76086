package decode

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PointsEvent is the decode of a PointsAdded log (§4.6). It names the user
// whose externally computed point total should be refreshed; it carries no
// amount because points are read back from the points contract, not
// accumulated from the log.
type PointsEvent struct {
	User common.Address
}

// Points decodes a points-contract log into a PointsEvent.
func Points(log *types.Log) (*PointsEvent, error) {
	_, args, err := decodeLogArgs(pointsABI, log)
	if err != nil {
		return nil, err
	}
	return &PointsEvent{User: args["user"].(common.Address)}, nil
}
