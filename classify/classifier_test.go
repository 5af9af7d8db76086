package classify

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/indexer-go/abi"
)

func successReceipt(logs ...*types.Log) *types.Receipt {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: logs}
}

func TestClassify_CreationCandidateSVG(t *testing.T) {
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), []byte("data:image/svg+xml,<svg></svg>"))
	c := Classify(tx, successReceipt(), Addresses{})
	require.NotNil(t, c)
	assert.Equal(t, CalldataCreation, c.Kind)
	assert.Equal(t, "data:image/svg+xml,<svg></svg>", c.CleanedString)
}

func TestClassify_CreationCandidateStripsNulls(t *testing.T) {
	input := append([]byte("data:image/png;base64,"), 0x00, 0x00)
	input = append(input, []byte("Zm9v")...)
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), input)
	c := Classify(tx, successReceipt(), Addresses{})
	require.NotNil(t, c)
	assert.Equal(t, CalldataCreation, c.Kind)
	assert.NotContains(t, c.CleanedString, "\x00")
}

func TestClassify_UnknownDataURIIsIgnored(t *testing.T) {
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), []byte("data:text/plain,hello"))
	c := Classify(tx, successReceipt(), Addresses{})
	assert.Nil(t, c)
}

func TestClassify_DirectTransfer(t *testing.T) {
	word := common.HexToHash("0xabc123")
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), word.Bytes())
	c := Classify(tx, successReceipt(), Addresses{})
	require.NotNil(t, c)
	assert.Equal(t, CalldataDirectTransfer, c.Kind)
	assert.Equal(t, word, c.DirectWord)
}

func TestClassify_BatchTransfer(t *testing.T) {
	w1 := common.HexToHash("0x01")
	w2 := common.HexToHash("0x02")
	w3 := common.HexToHash("0x03")
	input := append(append(append([]byte{}, w1.Bytes()...), w2.Bytes()...), w3.Bytes()...)
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), input)
	c := Classify(tx, successReceipt(), Addresses{})
	require.NotNil(t, c)
	assert.Equal(t, CalldataBatchTransfer, c.Kind)
	assert.Equal(t, []common.Hash{w1, w2, w3}, c.BatchWords)
}

func TestClassify_FailedReceiptIsSkipped(t *testing.T) {
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), []byte("data:image/svg+xml,x"))
	receipt := &types.Receipt{Status: types.ReceiptStatusFailed}
	assert.Nil(t, Classify(tx, receipt, Addresses{}))
}

func TestClassify_EmptyInputIsSkipped(t *testing.T) {
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), nil)
	assert.Nil(t, Classify(tx, successReceipt(), Addresses{}))
}

func TestClassify_LogDispatchAlwaysRuns(t *testing.T) {
	marketplace := common.HexToAddress("0xMarket000000000000000000000000000000001")
	esip1Log := &types.Log{Address: common.HexToAddress("0xEthscriptions"), Topics: []common.Hash{abi.TopicESIP1Transfer}}
	marketLog := &types.Log{Address: marketplace, Topics: []common.Hash{abi.TopicPhunkOffered}}

	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), []byte("data:image/svg+xml,x"))
	c := Classify(tx, successReceipt(esip1Log, marketLog), Addresses{Marketplace: marketplace})
	require.NotNil(t, c)
	assert.Equal(t, CalldataCreation, c.Kind)
	require.Len(t, c.Logs, 2)
	assert.Equal(t, LogESIP1Transfer, c.Logs[0].Kind)
	assert.Equal(t, LogMarketplace, c.Logs[1].Kind)
}

func TestClassify_UnrecognizedLogIsDropped(t *testing.T) {
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), common.HexToHash("0x01").Bytes())
	otherLog := &types.Log{Address: common.HexToAddress("0xDeadbeef"), Topics: []common.Hash{common.HexToHash("0xffff")}}
	c := Classify(tx, successReceipt(otherLog), Addresses{})
	require.NotNil(t, c)
	assert.Empty(t, c.Logs)
}
