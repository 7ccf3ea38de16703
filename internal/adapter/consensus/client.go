package consensus

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    stderrors "errors"
    "strconv"
    "time"

    "go.uber.org/zap"
    "github.com/ethereum/go-ethereum/common"

    apierr "validator_payments_api/internal/errors"
    "validator_payments_api/internal/domain"
    "validator_payments_api/internal/port"
)

const (
    genesisPath   = "/eth/v1/beacon/genesis"
    validatorPath = "/eth/v1/beacon/states/head/validators/%s"
    blockPath     = "/eth/v2/beacon/blocks/%d"
)

// ConsensusClient speaks the beacon node REST API. It performs single
// attempts only: retry policy belongs to the callers, which know whether a
// failure is fatal, retryable or a normal missed slot.
type ConsensusClient struct {
    httpClient *http.Client
    endpoint   string
}

func NewConsensusClient(httpEndpoint string, requestTimeout time.Duration) port.ConsensusClient {
    httpCli := &http.Client{Timeout: requestTimeout}

    return &ConsensusClient{
        httpClient: httpCli,
        endpoint:   httpEndpoint,
    }
}

func (cc *ConsensusClient) GetGenesisTime(ctx context.Context) (time.Time, error) {
    body, status, err := cc.doGet(ctx, cc.endpoint+genesisPath)
    if err != nil {
        return time.Time{}, err
    }
    if status != http.StatusOK {
        zap.L().Error("unexpected status fetching genesis", zap.Int("code", status))
        return time.Time{}, fmt.Errorf("genesis returned %d", status)
    }

    var out struct {
        Data struct {
            GenesisTime string `json:"genesis_time"`
        } `json:"data"`
    }
    if err := json.Unmarshal(body, &out); err != nil {
        zap.L().Error("decoding genesis failed", zap.Error(err))
        return time.Time{}, err
    }
    secs, err := strconv.ParseInt(out.Data.GenesisTime, 10, 64)
    if err != nil {
        return time.Time{}, fmt.Errorf("parsing genesis_time %q: %w", out.Data.GenesisTime, err)
    }
    return time.Unix(secs, 0).UTC(), nil
}

func (cc *ConsensusClient) GetValidator(ctx context.Context, id string) (domain.ValidatorInfo, error) {
    url := fmt.Sprintf(cc.endpoint+validatorPath, id)
    body, status, err := cc.doGet(ctx, url)
    if err != nil {
        return domain.ValidatorInfo{}, err
    }

    switch status {
    case http.StatusOK:
        var out struct {
            Data struct {
                Index     string `json:"index"`
                Validator struct {
                    Pubkey                string `json:"pubkey"`
                    WithdrawalCredentials string `json:"withdrawal_credentials"`
                } `json:"validator"`
            } `json:"data"`
        }
        if err := json.Unmarshal(body, &out); err != nil {
            zap.L().Error("decoding validator failed", zap.String("id", id), zap.Error(err))
            return domain.ValidatorInfo{}, err
        }
        index, err := strconv.ParseUint(out.Data.Index, 10, 64)
        if err != nil {
            return domain.ValidatorInfo{}, fmt.Errorf("parsing validator index %q: %w", out.Data.Index, err)
        }
        return domain.ValidatorInfo{
            Index:                 index,
            Pubkey:                out.Data.Validator.Pubkey,
            WithdrawalCredentials: common.FromHex(out.Data.Validator.WithdrawalCredentials),
        }, nil

    case http.StatusBadRequest, http.StatusNotFound:
        // Unknown index or malformed pubkey: the node has no such validator.
        return domain.ValidatorInfo{}, fmt.Errorf("validator %s: %w", id, apierr.ErrNotFound)

    default:
        zap.L().Error("unexpected status fetching validator", zap.String("id", id), zap.Int("code", status))
        return domain.ValidatorInfo{}, fmt.Errorf("validator %s returned %d", id, status)
    }
}

func (cc *ConsensusClient) GetBlock(ctx context.Context, slot uint64) (domain.BeaconBlock, error) {
    url := fmt.Sprintf(cc.endpoint+blockPath, slot)
    body, status, err := cc.doGet(ctx, url)
    if err != nil {
        return domain.BeaconBlock{}, err
    }

    switch status {
    case http.StatusOK:
        return decodeBlock(slot, body)

    case http.StatusBadRequest, http.StatusNotFound:
        // No block was proposed for this slot. Normal on mainnet.
        return domain.BeaconBlock{}, fmt.Errorf("slot %d: %w", slot, apierr.ErrNotFound)

    default:
        zap.L().Error("unexpected status fetching block", zap.Uint64("slot", slot), zap.Int("code", status))
        return domain.BeaconBlock{}, fmt.Errorf("block at slot %d returned %d", slot, status)
    }
}

func decodeBlock(slot uint64, body []byte) (domain.BeaconBlock, error) {
    var out struct {
        Data struct {
            Message struct {
                ProposerIndex string `json:"proposer_index"`
                Body          struct {
                    ExecutionPayload *struct {
                        BlockNumber  string `json:"block_number"`
                        FeeRecipient string `json:"fee_recipient"`
                        Withdrawals  []struct {
                            ValidatorIndex string `json:"validator_index"`
                            Address        string `json:"address"`
                            Amount         string `json:"amount"`
                        } `json:"withdrawals"`
                    } `json:"execution_payload"`
                } `json:"body"`
            } `json:"message"`
        } `json:"data"`
    }
    if err := json.Unmarshal(body, &out); err != nil {
        zap.L().Error("decoding block failed", zap.Uint64("slot", slot), zap.Error(err))
        return domain.BeaconBlock{}, err
    }

    proposer, err := strconv.ParseUint(out.Data.Message.ProposerIndex, 10, 64)
    if err != nil {
        return domain.BeaconBlock{}, fmt.Errorf("parsing proposer_index at slot %d: %w", slot, err)
    }

    block := domain.BeaconBlock{Slot: slot, ProposerIndex: proposer}

    payload := out.Data.Message.Body.ExecutionPayload
    if payload == nil {
        return block, nil
    }

    number, err := strconv.ParseUint(payload.BlockNumber, 10, 64)
    if err != nil {
        return domain.BeaconBlock{}, fmt.Errorf("parsing block_number at slot %d: %w", slot, err)
    }
    block.HasPayload = true
    block.BlockNumber = number
    block.FeeRecipient = common.HexToAddress(payload.FeeRecipient)

    for _, w := range payload.Withdrawals {
        index, err := strconv.ParseUint(w.ValidatorIndex, 10, 64)
        if err != nil {
            return domain.BeaconBlock{}, fmt.Errorf("parsing withdrawal validator_index at slot %d: %w", slot, err)
        }
        amount, err := strconv.ParseUint(w.Amount, 10, 64)
        if err != nil {
            return domain.BeaconBlock{}, fmt.Errorf("parsing withdrawal amount at slot %d: %w", slot, err)
        }
        block.Withdrawals = append(block.Withdrawals, domain.Withdrawal{
            ValidatorIndex: index,
            Address:        common.HexToAddress(w.Address),
            AmountGwei:     amount,
        })
    }
    return block, nil
}

func (cc *ConsensusClient) doGet(ctx context.Context, url string) ([]byte, int, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return nil, 0, err
    }

    resp, err := cc.httpClient.Do(req)
    if err != nil {
        if stderrors.Is(err, context.DeadlineExceeded) {
            zap.L().Warn("beacon request timed out", zap.String("url", url))
            return nil, 0, apierr.ErrRequestTimeout
        }
        return nil, 0, err
    }
    defer resp.Body.Close()

    body, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, 0, err
    }
    if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
        return nil, 0, fmt.Errorf("transient status %d", resp.StatusCode)
    }
    return body, resp.StatusCode, nil
}
