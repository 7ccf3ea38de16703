package execution

import (
    "context"
    stderrors "errors"
    "fmt"
    "math/big"
    "time"

    "go.uber.org/zap"
    "github.com/ethereum/go-ethereum"
    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/ethclient"
    "github.com/ethereum/go-ethereum/core/types"

    apierr "validator_payments_api/internal/errors"
    "validator_payments_api/internal/domain"
    "validator_payments_api/internal/port"
)

// ExecutionClient reads execution-layer blocks and receipts over JSON-RPC.
// Like the consensus adapter it performs single attempts and classifies
// failures; callers own the retry policy.
type ExecutionClient struct {
    ethClient *ethclient.Client
    timeout   time.Duration
}

func NewExecutionClient(ethHTTP *ethclient.Client, requestTimeout time.Duration) (port.ExecutionClient, error) {
    return &ExecutionClient{
        ethClient: ethHTTP,
        timeout:   requestTimeout,
    }, nil
}

func (ec *ExecutionClient) GetBlockWithTransactions(ctx context.Context, number uint64) (domain.ExecutionBlock, error) {
    ctx, cancel := context.WithTimeout(ctx, ec.timeout)
    defer cancel()

    block, err := ec.ethClient.BlockByNumber(ctx, new(big.Int).SetUint64(number))
    if err != nil {
        return domain.ExecutionBlock{}, ec.classify(err, fmt.Sprintf("block %d", number))
    }

    txs := make([]domain.Transaction, 0, len(block.Transactions()))
    for _, tx := range block.Transactions() {
        dt := domain.Transaction{
            Hash:     tx.Hash(),
            GasPrice: tx.GasPrice(),
        }
        switch tx.Type() {
        case types.LegacyTxType, types.AccessListTxType:
            // single gas price field, no fee caps
        default:
            dt.TipCap = tx.GasTipCap()
            dt.FeeCap = tx.GasFeeCap()
        }
        txs = append(txs, dt)
    }

    return domain.ExecutionBlock{
        Number:       number,
        BaseFee:      block.BaseFee(),
        Transactions: txs,
    }, nil
}

func (ec *ExecutionClient) GetTransactionGasUsed(ctx context.Context, hash common.Hash) (uint64, error) {
    ctx, cancel := context.WithTimeout(ctx, ec.timeout)
    defer cancel()

    receipt, err := ec.ethClient.TransactionReceipt(ctx, hash)
    if err != nil {
        return 0, ec.classify(err, "receipt "+hash.Hex())
    }
    return receipt.GasUsed, nil
}

func (ec *ExecutionClient) classify(err error, what string) error {
    if stderrors.Is(err, ethereum.NotFound) {
        return fmt.Errorf("%s: %w", what, apierr.ErrNotFound)
    }
    if stderrors.Is(err, context.DeadlineExceeded) {
        zap.L().Warn("execution request timed out", zap.String("what", what))
        return apierr.ErrRequestTimeout
    }
    return fmt.Errorf("%s: %w", what, err)
}
