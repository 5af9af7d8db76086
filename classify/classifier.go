// Package classify implements the Transaction Classifier: given a
// confirmed transaction and its receipt, it decides which decoder(s) in
// package decode should run, preserving the exact precedence and
// log-dispatch rules the Ownership State Machine and Derived-State Writers
// depend on.
package classify

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/0xmhha/indexer-go/abi"
)

const (
	svgPrefix = "data:image/svg+xml,"
	pngPrefix = "data:image/png;base64,"
	dataPrefix = "data:"
)

// CalldataKind is the mutually exclusive classification of a transaction's
// input data, per §4.3 rules 1-3.
type CalldataKind int

const (
	// CalldataNone means the input matched none of the creation/transfer
	// shapes; only log-driven dispatch may still apply.
	CalldataNone CalldataKind = iota
	// CalldataIgnored means the input looked like a data: URI of an
	// unrecognized MIME type; the whole transaction is ignored.
	CalldataIgnored
	// CalldataCreation means the input is a creation candidate.
	CalldataCreation
	// CalldataDirectTransfer means the input is exactly one 32-byte word.
	CalldataDirectTransfer
	// CalldataBatchTransfer means the input is a multiple of 32 bytes and
	// not a single word (ESIP-5).
	CalldataBatchTransfer
)

// LogKind categorizes a single log by its topic0 or emitting address, per
// §4.3 rule 4.
type LogKind int

const (
	LogUnknown LogKind = iota
	LogESIP1Transfer
	LogESIP2Transfer
	LogMarketplace
	LogAuction
	LogPoints
	LogBridge
)

// LogDispatch pairs a raw log with the vocabulary the classifier assigned
// it to.
type LogDispatch struct {
	Kind LogKind
	Log  *types.Log
}

// Classification is the classifier's full output for one transaction.
type Classification struct {
	Kind CalldataKind

	// CleanedString is set only when Kind == CalldataCreation; it is the
	// null-stripped, decoded transaction input.
	CleanedString string

	// DirectWord is set only when Kind == CalldataDirectTransfer.
	DirectWord common.Hash

	// BatchWords is set only when Kind == CalldataBatchTransfer, in
	// calldata order; BatchWords[i]'s stableIndex is i.
	BatchWords []common.Hash

	// Logs holds every dispatched log, in receipt order, regardless of
	// CalldataKind — log-driven dispatch runs "in addition", not as an
	// alternative to the calldata classification.
	Logs []LogDispatch
}

// Addresses are the per-chain contract addresses the log dispatcher
// compares log.Address against.
type Addresses struct {
	Marketplace common.Address
	Auction     common.Address
	Points      common.Address
	Bridge      common.Address
}

// Classify implements §4.3. It returns nil if the transaction should be
// skipped entirely (failed receipt, empty input, or an unrecognized data:
// URI).
func Classify(tx *types.Transaction, receipt *types.Receipt, addrs Addresses) *Classification {
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		return nil
	}

	input := tx.Data()
	if len(input) == 0 {
		return nil
	}

	c := &Classification{Kind: CalldataNone}

	switch classifyCalldata(input, c) {
	case CalldataIgnored:
		return nil
	}

	for _, log := range receipt.Logs {
		if log == nil || len(log.Topics) == 0 {
			continue
		}
		kind := dispatchLog(log, addrs)
		if kind == LogUnknown {
			continue
		}
		c.Logs = append(c.Logs, LogDispatch{Kind: kind, Log: log})
	}

	return c
}

// classifyCalldata fills in c's calldata-derived fields and returns the
// resolved CalldataKind.
func classifyCalldata(input []byte, c *Classification) CalldataKind {
	cleaned := stripNulls(string(input))

	switch {
	case strings.HasPrefix(cleaned, svgPrefix), strings.HasPrefix(cleaned, pngPrefix):
		c.Kind = CalldataCreation
		c.CleanedString = cleaned
		return CalldataCreation
	case strings.HasPrefix(cleaned, dataPrefix):
		return CalldataIgnored
	}

	if len(input) == 32 {
		c.Kind = CalldataDirectTransfer
		c.DirectWord = common.BytesToHash(input)
		return CalldataDirectTransfer
	}

	if len(input) > 32 && len(input)%32 == 0 {
		c.Kind = CalldataBatchTransfer
		words := make([]common.Hash, len(input)/32)
		for i := range words {
			words[i] = common.BytesToHash(input[i*32 : (i+1)*32])
		}
		c.BatchWords = words
		return CalldataBatchTransfer
	}

	return CalldataNone
}

// stripNulls removes NUL bytes from a decoded calldata string, matching
// the spec's stripNulls(utf8Decode(input)) pipeline.
func stripNulls(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}

// dispatchLog classifies a single log by topic0, falling back to emitting
// address for the contract vocabularies that don't share a topic with the
// ethscriptions protocol itself.
func dispatchLog(log *types.Log, addrs Addresses) LogKind {
	topic0 := log.Topics[0]

	switch topic0 {
	case abi.TopicESIP1Transfer:
		return LogESIP1Transfer
	case abi.TopicESIP2Transfer:
		return LogESIP2Transfer
	}

	switch log.Address {
	case addrs.Marketplace:
		return LogMarketplace
	case addrs.Auction:
		return LogAuction
	case addrs.Points:
		return LogPoints
	case addrs.Bridge:
		return LogBridge
	}

	return LogUnknown
}
