package usecase

import (
    "context"
    "fmt"
    "time"

    "go.uber.org/zap"

    "validator_payments_api/internal/domain"
    "validator_payments_api/internal/port"
    "validator_payments_api/internal/retry"
)

// ScanParams tunes the payments scan. Concurrency doubles as backpressure
// against the upstream nodes' rate limits and is never exceeded, not even
// transiently.
type ScanParams struct {
    Concurrency      int
    RetryAttempts    int
    RetryBackoff     time.Duration
    SlotSeconds      uint64
    MaxEffectiveGwei uint64
    ProgressInterval time.Duration
}

type PaymentsUseCase struct {
    consensus port.ConsensusClient
    execution port.ExecutionClient
    cache     port.ValidatorCache
    sink      port.ProgressSink
    params    ScanParams
}

func NewPaymentsUseCase(
    consensus port.ConsensusClient,
    execution port.ExecutionClient,
    cache port.ValidatorCache,
    sink port.ProgressSink,
    params ScanParams,
) *PaymentsUseCase {
    return &PaymentsUseCase{
        consensus: consensus,
        execution: execution,
        cache:     cache,
        sink:      sink,
        params:    params,
    }
}

// ComputePayments aggregates consensus withdrawals and execution tip revenue
// paid to the given validators over [startDate, endDate). Per-slot failures
// only lower the totals (and are counted in the report); errors returned
// here are the fatal conditions: bad dates, an unreachable genesis, or an
// empty validator set.
func (uc *PaymentsUseCase) ComputePayments(ctx context.Context, ids []string, startDate, endDate string) (domain.PaymentsReport, error) {
    start, err := parseDate(startDate)
    if err != nil {
        return domain.PaymentsReport{}, err
    }
    end, err := parseDate(endDate)
    if err != nil {
        return domain.PaymentsReport{}, err
    }

    var genesis time.Time
    if err := retry.Do(ctx, uc.params.RetryAttempts, uc.params.RetryBackoff, func() error {
        var err error
        genesis, err = uc.consensus.GetGenesisTime(ctx)
        return err
    }); err != nil {
        return domain.PaymentsReport{}, fmt.Errorf("fetching genesis time: %w", err)
    }

    startSlot, endSlot, err := ResolveSlotRange(start, end, genesis, uc.params.SlotSeconds)
    if err != nil {
        return domain.PaymentsReport{}, err
    }

    registry := NewValidatorRegistry(uc.consensus, uc.cache, uc.params.RetryAttempts, uc.params.RetryBackoff)
    records, err := registry.Resolve(ctx, ids)
    if err != nil {
        return domain.PaymentsReport{}, err
    }

    zap.L().Info("starting payments scan",
        zap.Uint64("start_slot", startSlot),
        zap.Uint64("end_slot", endSlot),
        zap.Int("validators", len(records)),
        zap.Int("concurrency", uc.params.Concurrency),
    )

    aggregator := NewAggregator(records)
    processor := NewSlotProcessor(
        uc.consensus,
        uc.execution,
        records,
        uc.params.MaxEffectiveGwei,
        uc.params.RetryAttempts,
        uc.params.RetryBackoff,
        uc.sink,
    )
    scanner := NewBoundedScanner(
        processor,
        aggregator,
        uc.sink,
        uc.params.Concurrency,
        uc.params.RetryAttempts,
        uc.params.RetryBackoff,
        uc.params.ProgressInterval,
    )

    processed, failed := scanner.Scan(ctx, startSlot, endSlot)
    consensusTotals, executionTotals, validators := aggregator.Snapshot()

    return domain.PaymentsReport{
        StartSlot:          startSlot,
        EndSlot:            endSlot,
        ConsensusByAddress: consensusTotals,
        ExecutionByAddress: executionTotals,
        Validators:         validators,
        ProcessedSlots:     processed,
        FailedSlots:        failed,
    }, nil
}
