package usecase

import (
    "context"
    stderrors "errors"
    "fmt"
    "math/big"
    "sync"
    "sync/atomic"
    "time"

    "go.uber.org/zap"

    apierr "validator_payments_api/internal/errors"
    "validator_payments_api/internal/domain"
    "validator_payments_api/internal/port"
    "validator_payments_api/internal/retry"
)

// SlotProcessor computes one slot's uncommitted payment contribution.
type SlotProcessor struct {
    consensus        port.ConsensusClient
    execution        port.ExecutionClient
    records          map[uint64]*domain.ValidatorRecord
    maxEffectiveGwei uint64
    attempts         int
    backoff          time.Duration
    sink             port.ProgressSink
}

func NewSlotProcessor(
    consensus port.ConsensusClient,
    execution port.ExecutionClient,
    records map[uint64]*domain.ValidatorRecord,
    maxEffectiveGwei uint64,
    attempts int,
    backoff time.Duration,
    sink port.ProgressSink,
) *SlotProcessor {
    return &SlotProcessor{
        consensus:        consensus,
        execution:        execution,
        records:          records,
        maxEffectiveGwei: maxEffectiveGwei,
        attempts:         attempts,
        backoff:          backoff,
        sink:             sink,
    }
}

// Process stages the slot's credits into a fresh delta. It never touches
// shared state, so re-running it after a mid-slot failure is harmless.
func (p *SlotProcessor) Process(ctx context.Context, slot uint64) (*SlotDelta, error) {
    block, err := p.consensus.GetBlock(ctx, slot)
    if err != nil {
        return nil, err
    }

    delta := NewSlotDelta()

    for _, w := range block.Withdrawals {
        if _, tracked := p.records[w.ValidatorIndex]; !tracked {
            continue
        }
        amount := new(big.Int).SetUint64(w.AmountGwei)
        if w.AmountGwei >= p.maxEffectiveGwei {
            // A withdrawal of at least the max effective balance is a full
            // exit: strip the returned principal, credit only the yield.
            amount.Sub(amount, new(big.Int).SetUint64(p.maxEffectiveGwei))
        }
        delta.CreditConsensus(w.Address, w.ValidatorIndex, amount)
    }

    if _, tracked := p.records[block.ProposerIndex]; tracked {
        if !block.HasPayload {
            p.sink.OnSlotAnomaly(slot, "tracked proposer block carries no execution payload")
        } else {
            tipWei, err := p.sumBlockTips(ctx, slot, block.BlockNumber)
            if err != nil {
                return nil, err
            }
            delta.CreditExecution(block.FeeRecipient, block.ProposerIndex, tipWei)
        }
    }

    return delta, nil
}

// sumBlockTips totals the proposer tip revenue of one execution block in wei.
func (p *SlotProcessor) sumBlockTips(ctx context.Context, slot, blockNumber uint64) (*big.Int, error) {
    block, err := p.execution.GetBlockWithTransactions(ctx, blockNumber)
    if err != nil {
        return nil, err
    }

    total := new(big.Int)
    for _, tx := range block.Transactions {
        tip := effectiveTip(tx, block.BaseFee)
        if tip.Sign() <= 0 {
            continue
        }

        var gasUsed uint64
        err := retry.Do(ctx, p.attempts, p.backoff, func() error {
            var err error
            gasUsed, err = p.execution.GetTransactionGasUsed(ctx, tx.Hash)
            return err
        })
        if err != nil {
            if stderrors.Is(err, apierr.ErrNotFound) {
                p.sink.OnSlotAnomaly(slot, fmt.Sprintf("no receipt for transaction %s", tx.Hash.Hex()))
                continue
            }
            return nil, err
        }

        total.Add(total, new(big.Int).Mul(tip, new(big.Int).SetUint64(gasUsed)))
    }
    return total, nil
}

// effectiveTip is min(maxPriorityFeePerGas, maxFeePerGas-baseFee) per gas
// unit. Transactions without fee caps fall back to their single legacy gas
// price field.
func effectiveTip(tx domain.Transaction, baseFee *big.Int) *big.Int {
    if tx.TipCap == nil || tx.FeeCap == nil {
        if tx.GasPrice == nil {
            return new(big.Int)
        }
        return new(big.Int).Set(tx.GasPrice)
    }
    if baseFee == nil {
        baseFee = new(big.Int)
    }
    tip := new(big.Int).Sub(tx.FeeCap, baseFee)
    if tip.Cmp(tx.TipCap) > 0 {
        tip.Set(tx.TipCap)
    }
    if tip.Sign() < 0 {
        tip.SetInt64(0)
    }
    return tip
}

// BoundedScanner drives the processor over a slot range with at most
// `concurrency` slots in flight.
type BoundedScanner struct {
    processor        *SlotProcessor
    aggregator       *Aggregator
    sink             port.ProgressSink
    concurrency      int
    attempts         int
    backoff          time.Duration
    progressInterval time.Duration
}

func NewBoundedScanner(
    processor *SlotProcessor,
    aggregator *Aggregator,
    sink port.ProgressSink,
    concurrency int,
    attempts int,
    backoff time.Duration,
    progressInterval time.Duration,
) *BoundedScanner {
    return &BoundedScanner{
        processor:        processor,
        aggregator:       aggregator,
        sink:             sink,
        concurrency:      concurrency,
        attempts:         attempts,
        backoff:          backoff,
        progressInterval: progressInterval,
    }
}

// Scan walks [startSlot, endSlot] inclusive in batches. Every slot in a
// batch settles (success, skip or exhausted retries) before the next batch
// is admitted; a failing slot never cancels its siblings. Returns processed
// and failed slot counts.
func (s *BoundedScanner) Scan(ctx context.Context, startSlot, endSlot uint64) (uint64, uint64) {
    total := endSlot - startSlot + 1
    var processed, failed uint64
    lastEmit := time.Now()

    for next := startSlot; next <= endSlot; {
        batch := uint64(s.concurrency)
        if remaining := endSlot - next + 1; remaining < batch {
            batch = remaining
        }

        var failedInBatch atomic.Uint64
        var wg sync.WaitGroup
        wg.Add(int(batch))
        for slot := next; slot < next+batch; slot++ {
            go func(slot uint64) {
                defer wg.Done()

                var delta *SlotDelta
                err := retry.Do(ctx, s.attempts, s.backoff, func() error {
                    var err error
                    delta, err = s.processor.Process(ctx, slot)
                    return err
                })
                if err != nil {
                    if stderrors.Is(err, apierr.ErrNotFound) {
                        s.sink.OnSlotAnomaly(slot, "no block proposed")
                        return
                    }
                    failedInBatch.Add(1)
                    s.sink.OnSlotAnomaly(slot, err.Error())
                    zap.L().Warn("slot processing failed", zap.Uint64("slot", slot), zap.Error(err))
                    return
                }
                s.aggregator.CommitDelta(delta)
            }(slot)
        }
        wg.Wait()

        next += batch
        processed += batch
        failed += failedInBatch.Load()

        if time.Since(lastEmit) >= s.progressInterval || next > endSlot {
            s.sink.OnProgress(processed, total)
            lastEmit = time.Now()
        }
    }

    return processed, failed
}
