package usecase

import (
    "math/big"
    "sort"
    "strings"
    "sync"

    "github.com/ethereum/go-ethereum/common"
    "github.com/shopspring/decimal"

    "validator_payments_api/internal/domain"
)

// SlotDelta stages one slot's credits locally, away from the shared state.
// A slot task only commits its delta after the whole unit succeeds, so a
// retried slot can never double-count a partially applied contribution.
type SlotDelta struct {
    consensusGwei          map[string]*big.Int
    executionWei           map[string]*big.Int
    validatorConsensusGwei map[uint64]*big.Int
    validatorExecutionWei  map[uint64]*big.Int
}

func NewSlotDelta() *SlotDelta {
    return &SlotDelta{
        consensusGwei:          make(map[string]*big.Int),
        executionWei:           make(map[string]*big.Int),
        validatorConsensusGwei: make(map[uint64]*big.Int),
        validatorExecutionWei:  make(map[uint64]*big.Int),
    }
}

func (d *SlotDelta) CreditConsensus(addr common.Address, validatorIndex uint64, gwei *big.Int) {
    creditMap(d.consensusGwei, foldAddress(addr), gwei)
    creditIndexMap(d.validatorConsensusGwei, validatorIndex, gwei)
}

func (d *SlotDelta) CreditExecution(addr common.Address, validatorIndex uint64, wei *big.Int) {
    creditMap(d.executionWei, foldAddress(addr), wei)
    creditIndexMap(d.validatorExecutionWei, validatorIndex, wei)
}

func (d *SlotDelta) Empty() bool {
    return len(d.consensusGwei) == 0 && len(d.executionWei) == 0
}

func creditMap(m map[string]*big.Int, key string, amount *big.Int) {
    if cur, ok := m[key]; ok {
        cur.Add(cur, amount)
        return
    }
    m[key] = new(big.Int).Set(amount)
}

func creditIndexMap(m map[uint64]*big.Int, key uint64, amount *big.Int) {
    if cur, ok := m[key]; ok {
        cur.Add(cur, amount)
        return
    }
    m[key] = new(big.Int).Set(amount)
}

func foldAddress(addr common.Address) string {
    return strings.ToLower(addr.Hex())
}

// Aggregator is the accumulation surface shared by all in-flight slot tasks.
// Every mutation goes through CommitDelta under one mutex, which keeps the
// address-keyed and validator-keyed views in lockstep.
type Aggregator struct {
    mu            sync.Mutex
    consensusGwei map[string]*big.Int
    executionWei  map[string]*big.Int
    validators    map[uint64]*domain.ValidatorRecord
}

func NewAggregator(records map[uint64]*domain.ValidatorRecord) *Aggregator {
    return &Aggregator{
        consensusGwei: make(map[string]*big.Int),
        executionWei:  make(map[string]*big.Int),
        validators:    records,
    }
}

// CommitDelta folds one settled slot's staged credits into the shared
// totals. Safe for concurrent use.
func (a *Aggregator) CommitDelta(d *SlotDelta) {
    if d == nil || d.Empty() {
        return
    }
    a.mu.Lock()
    defer a.mu.Unlock()

    for addr, amount := range d.consensusGwei {
        creditMap(a.consensusGwei, addr, amount)
    }
    for addr, amount := range d.executionWei {
        creditMap(a.executionWei, addr, amount)
    }
    for index, amount := range d.validatorConsensusGwei {
        if rec, ok := a.validators[index]; ok {
            rec.ConsensusGwei.Add(rec.ConsensusGwei, amount)
        }
    }
    for index, amount := range d.validatorExecutionWei {
        if rec, ok := a.validators[index]; ok {
            rec.ExecutionWei.Add(rec.ExecutionWei, amount)
        }
    }
}

// Snapshot converts the accumulated sub-unit totals into whole-coin decimals
// for the report. Call only once no tasks are in flight.
func (a *Aggregator) Snapshot() (map[string]decimal.Decimal, map[string]decimal.Decimal, []domain.ValidatorSummary) {
    a.mu.Lock()
    defer a.mu.Unlock()

    consensus := make(map[string]decimal.Decimal, len(a.consensusGwei))
    for addr, gwei := range a.consensusGwei {
        consensus[addr] = decimal.NewFromBigInt(gwei, -9)
    }
    execution := make(map[string]decimal.Decimal, len(a.executionWei))
    for addr, wei := range a.executionWei {
        execution[addr] = decimal.NewFromBigInt(wei, -18)
    }

    validators := make([]domain.ValidatorSummary, 0, len(a.validators))
    for _, rec := range a.validators {
        s := domain.ValidatorSummary{
            Index:        rec.Index,
            Pubkey:       rec.Pubkey,
            ConsensusETH: decimal.NewFromBigInt(rec.ConsensusGwei, -9),
            ExecutionETH: decimal.NewFromBigInt(rec.ExecutionWei, -18),
        }
        if rec.WithdrawalAddress != nil {
            s.WithdrawalAddress = foldAddress(*rec.WithdrawalAddress)
        }
        validators = append(validators, s)
    }
    sort.Slice(validators, func(i, j int) bool { return validators[i].Index < validators[j].Index })

    return consensus, execution, validators
}
