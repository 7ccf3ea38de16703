package usecase

import (
    "context"
    "math/big"
    "time"

    "go.uber.org/zap"
    "github.com/ethereum/go-ethereum/common"

    apierr "validator_payments_api/internal/errors"
    "validator_payments_api/internal/domain"
    "validator_payments_api/internal/port"
    "validator_payments_api/internal/retry"
)

// ValidatorRegistry resolves raw identifiers (decimal indices or 0x-prefixed
// pubkeys) into canonical validator records keyed by index.
type ValidatorRegistry struct {
    client   port.ConsensusClient
    cache    port.ValidatorCache
    attempts int
    backoff  time.Duration
}

func NewValidatorRegistry(client port.ConsensusClient, cache port.ValidatorCache, attempts int, backoff time.Duration) *ValidatorRegistry {
    return &ValidatorRegistry{
        client:   client,
        cache:    cache,
        attempts: attempts,
        backoff:  backoff,
    }
}

// Resolve looks up every identifier, skipping the ones the node cannot
// resolve. Distinct identifiers that name the same validator collapse into a
// single record. An empty result set is fatal: there is nothing to scan.
func (r *ValidatorRegistry) Resolve(ctx context.Context, ids []string) (map[uint64]*domain.ValidatorRecord, error) {
    records := make(map[uint64]*domain.ValidatorRecord, len(ids))

    for _, id := range ids {
        info, ok := r.cache.Get(id)
        if !ok {
            err := retry.Do(ctx, r.attempts, r.backoff, func() error {
                var err error
                info, err = r.client.GetValidator(ctx, id)
                return err
            })
            if err != nil {
                zap.L().Warn("skipping unresolvable validator", zap.String("id", id), zap.Error(err))
                continue
            }
            r.cache.Add(id, info)
        }

        if _, dup := records[info.Index]; dup {
            continue
        }
        rec := &domain.ValidatorRecord{
            Index:         info.Index,
            Pubkey:        info.Pubkey,
            ConsensusGwei: new(big.Int),
            ExecutionWei:  new(big.Int),
        }
        if addr, ok := withdrawalAddress(info.WithdrawalCredentials); ok {
            rec.WithdrawalAddress = &addr
        }
        records[info.Index] = rec
    }

    if len(records) == 0 {
        return nil, apierr.ErrNoValidators
    }
    return records, nil
}

// withdrawalAddress extracts the execution address from address-type
// withdrawal credentials (leading byte 0x01 or 0x02, address in the trailing
// 20 bytes). BLS-type credentials carry no address.
func withdrawalAddress(creds []byte) (common.Address, bool) {
    if len(creds) != 32 {
        return common.Address{}, false
    }
    if creds[0] != 0x01 && creds[0] != 0x02 {
        return common.Address{}, false
    }
    return common.BytesToAddress(creds[12:]), true
}
