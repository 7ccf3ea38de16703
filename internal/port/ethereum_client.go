package port

import (
    "context"
    "time"

    "github.com/ethereum/go-ethereum/common"

    "validator_payments_api/internal/domain"
)

type ConsensusClient interface {
    GetGenesisTime(ctx context.Context) (time.Time, error)
    GetValidator(ctx context.Context, id string) (domain.ValidatorInfo, error)
    GetBlock(ctx context.Context, slot uint64) (domain.BeaconBlock, error)
}

type ExecutionClient interface {
    GetBlockWithTransactions(ctx context.Context, number uint64) (domain.ExecutionBlock, error)
    GetTransactionGasUsed(ctx context.Context, hash common.Hash) (uint64, error)
}
