// Package pipelineerr classifies the errors the indexing pipeline can raise
// so the Coordinator knows, without inspecting message strings, whether to
// retry or stop.
package pipelineerr

import (
	"errors"
	"fmt"
)

// Sentinel errors of the pipeline. The Coordinator branches on
// ErrReorgDetected only; ErrBlockNotFound reaches it wrapped in Transient.
// ErrDictionaryMiss and ErrGuardFailed are not returned by any package.
var (
	// ErrBlockNotFound means the requested block height is ahead of the
	// node's view of the chain; treated as transient with a retry delay.
	ErrBlockNotFound = errors.New("block not found")

	// ErrReorgDetected signals a parent-hash discontinuity in the Reorg
	// Guard's window.
	ErrReorgDetected = errors.New("reorg detected")

	// ErrDictionaryMiss means a creation candidate's sha is not present in
	// the pre-seeded sha-to-tokenId dictionary.
	ErrDictionaryMiss = errors.New("sha not in dictionary")

	// ErrGuardFailed means an ownership-machine guard rejected a transfer.
	ErrGuardFailed = errors.New("ownership guard failed")
)

// Transient wraps an error the caller should retry after a delay (RPC
// timeouts, connection resets, 5xx responses, ErrBlockNotFound).
type Transient struct {
	Op  string
	Err error
}

func (e *Transient) Error() string {
	return fmt.Sprintf("%s: transient: %v", e.Op, e.Err)
}

func (e *Transient) Unwrap() error { return e.Err }

// NewTransient wraps err as a Transient error.
func NewTransient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Transient{Op: op, Err: err}
}

// IsTransient reports whether err (or something it wraps) is Transient.
func IsTransient(err error) bool {
	var t *Transient
	return errors.As(err, &t)
}

// Fatal wraps an error that must stop the coordinator: a failed checkpoint
// or chain-head lookup at startup, a bridge lockEthscription failure after
// HashLocked was observed, a failed reorg rollback, or an exhausted outer
// retry budget.
type Fatal struct {
	Op  string
	Err error
}

func (e *Fatal) Error() string {
	return fmt.Sprintf("%s: fatal: %v", e.Op, e.Err)
}

func (e *Fatal) Unwrap() error { return e.Err }

// NewFatal wraps err as a Fatal error.
func NewFatal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Fatal{Op: op, Err: err}
}

// IsFatal reports whether err (or something it wraps) is Fatal.
func IsFatal(err error) bool {
	var f *Fatal
	return errors.As(err, &f)
}

// Malformed wraps a decode failure (wrong log shape, unknown event name,
// undecodable calldata). No package returns it, and the Coordinator has no
// case for it: like any non-fatal error it would be retried.
type Malformed struct {
	Op  string
	Err error
}

func (e *Malformed) Error() string {
	return fmt.Sprintf("%s: malformed: %v", e.Op, e.Err)
}

func (e *Malformed) Unwrap() error { return e.Err }

// NewMalformed wraps err as a Malformed error.
func NewMalformed(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Malformed{Op: op, Err: err}
}
