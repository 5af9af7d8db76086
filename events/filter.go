package events

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Filter defines subscription filter conditions over DomainEvent fields.
type Filter struct {
	// HashIDs restricts to specific ethscriptions. Empty means no filtering.
	HashIDs []common.Hash

	// FromAddresses filters on the event's From address.
	FromAddresses []common.Address

	// ToAddresses filters on the event's To address.
	ToAddresses []common.Address

	// MinValue filters by minimum value (inclusive). Nil means unbounded.
	MinValue *big.Int

	// MaxValue filters by maximum value (inclusive). Nil means unbounded.
	MaxValue *big.Int

	// FromBlock filters events from this block number (inclusive). 0 means
	// no minimum.
	FromBlock uint64

	// ToBlock filters events up to this block number (inclusive). 0 means
	// no maximum.
	ToBlock uint64
}

// NewFilter creates a new empty filter.
func NewFilter() *Filter {
	return &Filter{
		HashIDs:       make([]common.Hash, 0),
		FromAddresses: make([]common.Address, 0),
		ToAddresses:   make([]common.Address, 0),
	}
}

// Validate checks if the filter configuration is valid.
func (f *Filter) Validate() error {
	if f.MinValue != nil && f.MaxValue != nil {
		if f.MinValue.Cmp(f.MaxValue) > 0 {
			return fmt.Errorf("minValue (%s) cannot be greater than maxValue (%s)",
				f.MinValue.String(), f.MaxValue.String())
		}
	}
	if f.FromBlock > 0 && f.ToBlock > 0 && f.FromBlock > f.ToBlock {
		return fmt.Errorf("fromBlock (%d) cannot be greater than toBlock (%d)", f.FromBlock, f.ToBlock)
	}
	if f.MinValue != nil && f.MinValue.Sign() < 0 {
		return fmt.Errorf("minValue cannot be negative")
	}
	if f.MaxValue != nil && f.MaxValue.Sign() < 0 {
		return fmt.Errorf("maxValue cannot be negative")
	}
	return nil
}

// Match checks if an event matches this filter.
func (f *Filter) Match(event Event) bool {
	e, ok := event.(*DomainEvent)
	if !ok {
		return false
	}
	rec := e.Record

	if rec.BlockNumber > 0 {
		if f.FromBlock > 0 && rec.BlockNumber < f.FromBlock {
			return false
		}
		if f.ToBlock > 0 && rec.BlockNumber > f.ToBlock {
			return false
		}
	}

	if len(f.HashIDs) > 0 {
		matched := false
		for _, h := range f.HashIDs {
			if h == rec.HashID {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.FromAddresses) > 0 {
		matched := false
		for _, addr := range f.FromAddresses {
			if rec.From == addr {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.ToAddresses) > 0 {
		matched := false
		for _, addr := range f.ToAddresses {
			if rec.To == addr {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.MinValue != nil || f.MaxValue != nil {
		value := rec.Value
		if value == nil {
			value = big.NewInt(0)
		}
		if f.MinValue != nil && value.Cmp(f.MinValue) < 0 {
			return false
		}
		if f.MaxValue != nil && value.Cmp(f.MaxValue) > 0 {
			return false
		}
	}

	return true
}

// IsEmpty returns true if the filter has no conditions set.
func (f *Filter) IsEmpty() bool {
	return len(f.HashIDs) == 0 &&
		len(f.FromAddresses) == 0 &&
		len(f.ToAddresses) == 0 &&
		f.MinValue == nil &&
		f.MaxValue == nil &&
		f.FromBlock == 0 &&
		f.ToBlock == 0
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		HashIDs:       make([]common.Hash, len(f.HashIDs)),
		FromAddresses: make([]common.Address, len(f.FromAddresses)),
		ToAddresses:   make([]common.Address, len(f.ToAddresses)),
		FromBlock:     f.FromBlock,
		ToBlock:       f.ToBlock,
	}

	copy(clone.HashIDs, f.HashIDs)
	copy(clone.FromAddresses, f.FromAddresses)
	copy(clone.ToAddresses, f.ToAddresses)

	if f.MinValue != nil {
		clone.MinValue = new(big.Int).Set(f.MinValue)
	}
	if f.MaxValue != nil {
		clone.MaxValue = new(big.Int).Set(f.MaxValue)
	}

	return clone
}
