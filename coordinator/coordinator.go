// Package coordinator implements the Coordinator (component H, §4.11): the
// backfill-then-tail driver that pulls blocks off the Block Queue, runs them
// through the Transaction Classifier and every decoder/writer, and
// checkpoints storage one block at a time.
package coordinator

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/classify"
	"github.com/0xmhha/indexer-go/client"
	"github.com/0xmhha/indexer-go/decode"
	"github.com/0xmhha/indexer-go/events"
	"github.com/0xmhha/indexer-go/model"
	"github.com/0xmhha/indexer-go/ownership"
	"github.com/0xmhha/indexer-go/pipelineerr"
	"github.com/0xmhha/indexer-go/queue"
	"github.com/0xmhha/indexer-go/reorg"
	"github.com/0xmhha/indexer-go/storage"
	"github.com/0xmhha/indexer-go/writers"
)

// ChainClient is the narrow surface the Coordinator needs from
// client.Client.
type ChainClient interface {
	GetBlock(ctx context.Context, number uint64) (*client.BlockData, error)
	GetBlockByNumber(ctx context.Context, number uint64) (*types.Block, error)
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
	SubscribeHeads(ctx context.Context, headers chan<- *types.Header, retryDelay time.Duration)
}

// Config holds the Coordinator's tunables, all defaulted by New.
type Config struct {
	// OriginBlock is where backfill starts when the store has never
	// checkpointed a block.
	OriginBlock uint64

	Addresses classify.Addresses

	// MaxAttempts bounds the outer per-block retry loop (§4.11 line 164).
	MaxAttempts int

	// RetryDelay is the pause between attempts on the same block.
	RetryDelay time.Duration
}

func (c *Config) setDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
}

// Coordinator wires the chain client, storage, queue, reorg guard, ownership
// machine, and derived-state writers into the single block-processing
// pipeline described by §4.11.
type Coordinator struct {
	chain     ChainClient
	validator decode.HashValidator
	store     storage.Datastore
	queue     *queue.BlockQueue
	guard     *reorg.Guard
	ownership *ownership.Machine

	marketplace *writers.Marketplace
	auction     *writers.Auction
	points      *writers.Points
	bridge      *writers.Bridge

	bus     *events.EventBus
	metrics *Metrics
	logger  *zap.Logger

	cfg Config
}

// New returns a Coordinator. bus and metrics may be nil.
func New(
	chain ChainClient,
	validator decode.HashValidator,
	store storage.Datastore,
	q *queue.BlockQueue,
	guard *reorg.Guard,
	machine *ownership.Machine,
	marketplace *writers.Marketplace,
	auction *writers.Auction,
	points *writers.Points,
	bridge *writers.Bridge,
	bus *events.EventBus,
	metrics *Metrics,
	logger *zap.Logger,
	cfg Config,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.setDefaults()
	return &Coordinator{
		chain:       chain,
		validator:   validator,
		store:       store,
		queue:       q,
		guard:       guard,
		ownership:   machine,
		marketplace: marketplace,
		auction:     auction,
		points:      points,
		bridge:      bridge,
		bus:         bus,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
	}
}

// Run executes §4.11's startup sequence — clear and pause the queue, resolve
// the backfill range from the last checkpoint, enqueue it, resume the queue,
// then start the head subscription — and blocks running the worker loop
// until ctx is cancelled or a Fatal error stops the pipeline.
func (c *Coordinator) Run(ctx context.Context) error {
	c.queue.Clear()
	c.queue.Pause()

	lastBlock, err := c.store.GetLastBlock(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return pipelineerr.NewFatal("coordinator.getLastBlock", err)
		}
		lastBlock = c.cfg.OriginBlock
	} else {
		lastBlock++
	}

	head, err := c.chain.GetLatestBlockNumber(ctx)
	if err != nil {
		return pipelineerr.NewFatal("coordinator.getLatestBlockNumber", err)
	}

	for n := lastBlock; n <= head; n++ {
		c.queue.Enqueue(n)
	}
	c.queue.Resume()

	headers := make(chan *types.Header, 16)
	go c.chain.SubscribeHeads(ctx, headers, c.cfg.RetryDelay)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case h := <-headers:
				if h != nil {
					c.queue.Enqueue(h.Number.Uint64())
				}
			}
		}
	}()

	return c.workerLoop(ctx)
}

// workerLoop dequeues one block number at a time and processes it, retrying
// a failing block up to MaxAttempts before escalating to Fatal.
func (c *Coordinator) workerLoop(ctx context.Context) error {
	for {
		n, ok := c.queue.Dequeue(ctx)
		if !ok {
			return ctx.Err()
		}

		if err := c.processWithRetry(ctx, n); err != nil {
			return err
		}

		if c.metrics != nil {
			c.metrics.BlocksProcessed.Inc()
			c.metrics.QueueDepth.Set(float64(c.queue.Len()))
		}
	}
}

func (c *Coordinator) processWithRetry(ctx context.Context, n uint64) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		err := c.processBlock(ctx, n)
		if err == nil {
			return nil
		}
		lastErr = err

		if pipelineerr.IsFatal(err) {
			return err
		}

		if reorg.IsReorgDetected(err) {
			if rerr := c.handleReorg(ctx, n); rerr != nil {
				return pipelineerr.NewFatal("coordinator.handleReorg", rerr)
			}
			return nil
		}

		c.logger.Warn("block processing failed, retrying",
			zap.Uint64("block", n), zap.Int("attempt", attempt), zap.Error(err))
		if c.metrics != nil {
			c.metrics.RPCRetries.Inc()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RetryDelay):
		}
	}
	return pipelineerr.NewFatal("coordinator.processBlock", lastErr)
}

// handleReorg implements §4.10's rollback: find the last ancestor whose
// hash the chain still agrees with, trim storage above it, then re-enqueue
// from there so the worker loop naturally retries the rolled-back range.
func (c *Coordinator) handleReorg(ctx context.Context, failedAt uint64) error {
	window, err := c.store.GetProcessedBlockWindow(ctx)
	if err != nil {
		return err
	}

	ancestor, err := reorg.FindLastAgreeingAncestor(window, func(number uint64) (common.Hash, error) {
		b, err := c.chain.GetBlockByNumber(ctx, number)
		if err != nil {
			return common.Hash{}, err
		}
		return b.Hash(), nil
	})
	if err != nil {
		return err
	}

	if c.metrics != nil {
		c.metrics.ReorgDepth.Observe(float64(failedAt - ancestor))
	}

	if err := c.guard.Rollback(ctx, ancestor); err != nil {
		return err
	}
	ancestorBlock, err := c.chain.GetBlockByNumber(ctx, ancestor)
	if err != nil {
		return err
	}
	if err := c.store.UpdateLastBlock(ctx, ancestor, ancestorBlock.Time()); err != nil {
		return err
	}

	c.queue.Clear()
	head, err := c.chain.GetLatestBlockNumber(ctx)
	if err != nil {
		return err
	}
	for n := ancestor + 1; n <= head; n++ {
		c.queue.Enqueue(n)
	}
	return nil
}

// processBlock fetches block n, checks it against the reorg window, runs
// every transaction through the classifier and decoders, and checkpoints
// storage. A returned error wrapping pipelineerr.ErrReorgDetected leaves
// storage untouched for this block so the caller can roll back and retry.
func (c *Coordinator) processBlock(ctx context.Context, n uint64) error {
	data, err := c.chain.GetBlock(ctx, n)
	if err != nil {
		return err
	}
	block := data.Block

	if _, err := c.guard.Observe(ctx, model.ProcessedBlockEntry{
		Number:     block.NumberU64(),
		Hash:       block.Hash(),
		ParentHash: block.ParentHash(),
	}); err != nil {
		return err
	}

	var emitted []*model.Event
	var pointsEvents []*decode.PointsEvent

	for i, tx := range block.Transactions() {
		if i >= len(data.Receipts) {
			break
		}
		receipt := data.Receipts[i]

		classification := classify.Classify(tx, receipt, c.cfg.Addresses)
		if classification == nil {
			continue
		}

		from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
		if err != nil {
			c.logger.Warn("failed to recover sender, skipping transaction",
				zap.String("tx", tx.Hash().Hex()), zap.Error(err))
			continue
		}

		logCtx := decode.LogContext{
			TxHash:         tx.Hash(),
			TxFrom:         from,
			BlockNumber:    block.NumberU64(),
			BlockHash:      block.Hash(),
			TxIndex:        uint(i),
			BlockTimestamp: block.Time(),
		}

		to := common.Address{}
		if tx.To() != nil {
			to = *tx.To()
		}

		calldataEvents, calldataPoints, err := c.applyCalldata(ctx, classification, logCtx, from, to, tx.Value())
		if err != nil {
			return err
		}
		emitted = append(emitted, calldataEvents...)
		pointsEvents = append(pointsEvents, calldataPoints...)

		logEvents, logPoints, err := c.applyLogs(ctx, classification, logCtx, tx.Value())
		if err != nil {
			return err
		}
		emitted = append(emitted, logEvents...)
		pointsEvents = append(pointsEvents, logPoints...)
	}

	if c.points != nil && len(pointsEvents) > 0 {
		c.points.Refresh(ctx, pointsEvents, block.Time())
	}

	if err := c.store.AddEvents(ctx, emitted); err != nil {
		return err
	}
	if err := c.store.UpdateLastBlock(ctx, block.NumberU64(), block.Time()); err != nil {
		return err
	}

	c.publish(emitted)
	return nil
}

// applyCalldata dispatches a transaction's calldata classification (mutually
// exclusive per §4.3 rules 1-3) to the matching decoder and writer.
func (c *Coordinator) applyCalldata(
	ctx context.Context,
	classification *classify.Classification,
	logCtx decode.LogContext,
	from, to common.Address,
	value *big.Int,
) ([]*model.Event, []*decode.PointsEvent, error) {
	var out []*model.Event

	switch classification.Kind {
	case classify.CalldataCreation:
		ev, err := decode.Creation(ctx, c.store, decode.CreationParams{
			CleanedString:  classification.CleanedString,
			Creator:        from,
			Owner:          to,
			TxHash:         logCtx.TxHash,
			BlockNumber:    logCtx.BlockNumber,
			BlockHash:      logCtx.BlockHash,
			TxIndex:        logCtx.TxIndex,
			BlockTimestamp: logCtx.BlockTimestamp,
			StableIndex:    uint32(logCtx.TxIndex),
		})
		if err != nil {
			return nil, nil, err
		}
		if ev != nil {
			out = append(out, ev)
		}

	case classify.CalldataDirectTransfer:
		params := decode.DirectTransfer(logCtx, from, to, classification.DirectWord, value)
		params.StableIndex = uint32(logCtx.TxIndex)
		ev, err := c.ownership.ApplyTransfer(ctx, params)
		if err != nil {
			return nil, nil, err
		}
		if ev != nil {
			out = append(out, ev)
		}

	case classify.CalldataBatchTransfer:
		paramsList, err := decode.BatchTransfer(logCtx, c.validator, from, to, classification.BatchWords)
		if err != nil {
			return nil, nil, err
		}
		for _, params := range paramsList {
			ev, err := c.ownership.ApplyTransfer(ctx, params)
			if err != nil {
				return nil, nil, err
			}
			if ev != nil {
				out = append(out, ev)
			}
		}
	}

	return out, nil, nil
}

// applyLogs dispatches every log-driven classification (§4.3 rule 4) that
// the Transaction Classifier surfaced, regardless of the calldata outcome
// above.
func (c *Coordinator) applyLogs(ctx context.Context, classification *classify.Classification, logCtx decode.LogContext, value *big.Int) ([]*model.Event, []*decode.PointsEvent, error) {
	var out []*model.Event
	var pointsEvents []*decode.PointsEvent

	for _, dispatch := range classification.Logs {
		logCtx := logCtx
		logCtx.LogIndex = uint32(dispatch.Log.Index)

		switch dispatch.Kind {
		case classify.LogESIP1Transfer:
			params, err := decode.ESIP1Transfer(logCtx, dispatch.Log, value)
			if err != nil {
				c.logger.Warn("malformed ESIP-1 log", zap.Error(err))
				continue
			}
			ev, err := c.ownership.ApplyTransfer(ctx, params)
			if err != nil {
				return nil, nil, err
			}
			if ev != nil {
				out = append(out, ev)
			}

		case classify.LogESIP2Transfer:
			params, err := decode.ESIP2Transfer(logCtx, dispatch.Log, value)
			if err != nil {
				c.logger.Warn("malformed ESIP-2 log", zap.Error(err))
				continue
			}
			ev, err := c.ownership.ApplyTransfer(ctx, params)
			if err != nil {
				return nil, nil, err
			}
			if ev != nil {
				out = append(out, ev)
			}

		case classify.LogMarketplace:
			me, err := decode.Marketplace(dispatch.Log)
			if err != nil || me == nil {
				if err != nil {
					c.logger.Warn("malformed marketplace log", zap.Error(err))
				}
				continue
			}
			ev, err := c.marketplace.Apply(ctx, me, logCtx.TxFrom, logCtx)
			if err != nil {
				return nil, nil, err
			}
			if ev != nil {
				out = append(out, ev)
			}

		case classify.LogAuction:
			ae, err := decode.Auction(dispatch.Log)
			if err != nil || ae == nil {
				if err != nil {
					c.logger.Warn("malformed auction log", zap.Error(err))
				}
				continue
			}
			ev, err := c.auction.Apply(ctx, ae, logCtx)
			if err != nil {
				return nil, nil, err
			}
			if ev != nil {
				out = append(out, ev)
			}

		case classify.LogPoints:
			pe, err := decode.Points(dispatch.Log)
			if err != nil || pe == nil {
				if err != nil {
					c.logger.Warn("malformed points log", zap.Error(err))
				}
				continue
			}
			pointsEvents = append(pointsEvents, pe)

		case classify.LogBridge:
			be, err := decode.Bridge(dispatch.Log)
			if err != nil || be == nil {
				if err != nil {
					c.logger.Warn("malformed bridge log", zap.Error(err))
				}
				continue
			}
			if err := c.bridge.Apply(ctx, be); err != nil {
				return nil, nil, err
			}
		}
	}

	return out, pointsEvents, nil
}

// publish fans emitted events out over the in-process event bus and updates
// the per-kind emission counter. Both are best-effort: a full subscriber
// channel drops the event rather than blocking the pipeline.
func (c *Coordinator) publish(emitted []*model.Event) {
	for _, ev := range emitted {
		if c.bus != nil {
			c.bus.Publish(events.NewDomainEvent(ev))
		}
		if c.metrics != nil {
			c.metrics.EventsEmitted.WithLabelValues(string(ev.Kind)).Inc()
		}
	}
}
