package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ValidatorInfo is the raw resolution result for one identifier, as returned
// by the consensus port before the registry turns it into a ValidatorRecord.
type ValidatorInfo struct {
	Index                 uint64
	Pubkey                string
	WithdrawalCredentials []byte
}

// ValidatorRecord is a tracked validator with its running payment totals.
// WithdrawalAddress is nil unless the withdrawal credentials encode an
// execution-address type credential.
type ValidatorRecord struct {
	Index             uint64
	Pubkey            string
	WithdrawalAddress *common.Address
	ConsensusGwei     *big.Int
	ExecutionWei      *big.Int
}

// Withdrawal is one consensus-layer withdrawal carried in a block's
// execution payload.
type Withdrawal struct {
	ValidatorIndex uint64
	Address        common.Address
	AmountGwei     uint64
}

// BeaconBlock is the slice of a signed beacon block the scanner needs.
// HasPayload is false for pre-merge blocks or blocks whose execution payload
// the node did not return.
type BeaconBlock struct {
	Slot          uint64
	ProposerIndex uint64
	HasPayload    bool
	BlockNumber   uint64
	FeeRecipient  common.Address
	Withdrawals   []Withdrawal
}

// Transaction carries the fee fields needed to compute the proposer tip.
// TipCap and FeeCap are nil for legacy (pre-1559) transactions, in which
// case GasPrice holds the single legacy fee field.
type Transaction struct {
	Hash     common.Hash
	TipCap   *big.Int
	FeeCap   *big.Int
	GasPrice *big.Int
}

// ExecutionBlock is an execution-layer block with its transactions.
type ExecutionBlock struct {
	Number       uint64
	BaseFee      *big.Int
	Transactions []Transaction
}

// ValidatorSummary is the per-validator view in the final report.
type ValidatorSummary struct {
	Index             uint64          `json:"index"`
	Pubkey            string          `json:"pubkey"`
	WithdrawalAddress string          `json:"withdrawal_address,omitempty"`
	ConsensusETH      decimal.Decimal `json:"consensus_eth"`
	ExecutionETH      decimal.Decimal `json:"execution_eth"`
}

// PaymentsReport is the result of one ComputePayments invocation. Totals are
// whole-coin (ETH) decimals keyed by case-folded address. FailedSlots counts
// slots whose retry budget was exhausted, so totals may be a lower bound
// whenever it is non-zero.
type PaymentsReport struct {
	StartSlot          uint64                     `json:"start_slot"`
	EndSlot            uint64                     `json:"end_slot"`
	ConsensusByAddress map[string]decimal.Decimal `json:"consensus_eth_by_address"`
	ExecutionByAddress map[string]decimal.Decimal `json:"execution_eth_by_address"`
	Validators         []ValidatorSummary         `json:"validators"`
	ProcessedSlots     uint64                     `json:"processed_slots"`
	FailedSlots        uint64                     `json:"failed_slots"`
}
