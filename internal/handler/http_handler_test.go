package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apierr "validator_payments_api/internal/errors"
	"validator_payments_api/internal/domain"
	"validator_payments_api/internal/handler"
	"validator_payments_api/internal/usecase"
)

type consensusStub struct{}

func (m *consensusStub) GetGenesisTime(ctx context.Context) (time.Time, error) {
	return time.Unix(0, 0).UTC(), nil
}

func (m *consensusStub) GetValidator(ctx context.Context, id string) (domain.ValidatorInfo, error) {
	if id != "5" {
		return domain.ValidatorInfo{}, fmt.Errorf("validator %s: %w", id, apierr.ErrNotFound)
	}
	creds := make([]byte, 32)
	creds[0] = 0x01
	return domain.ValidatorInfo{Index: 5, Pubkey: "0xfeed", WithdrawalCredentials: creds}, nil
}

func (m *consensusStub) GetBlock(ctx context.Context, slot uint64) (domain.BeaconBlock, error) {
	if slot != 0 {
		return domain.BeaconBlock{}, fmt.Errorf("slot %d: %w", slot, apierr.ErrNotFound)
	}
	return domain.BeaconBlock{
		Slot:          0,
		ProposerIndex: 99,
		HasPayload:    true,
		BlockNumber:   100,
		Withdrawals: []domain.Withdrawal{{
			ValidatorIndex: 5,
			Address:        common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
			AmountGwei:     33_000_000_000,
		}},
	}, nil
}

type executionStub struct{}

func (m *executionStub) GetBlockWithTransactions(ctx context.Context, number uint64) (domain.ExecutionBlock, error) {
	return domain.ExecutionBlock{}, fmt.Errorf("block %d: %w", number, apierr.ErrNotFound)
}

func (m *executionStub) GetTransactionGasUsed(ctx context.Context, hash common.Hash) (uint64, error) {
	return 0, fmt.Errorf("receipt %s: %w", hash.Hex(), apierr.ErrNotFound)
}

type cacheStub struct{}

func (c *cacheStub) Get(id string) (domain.ValidatorInfo, bool) { return domain.ValidatorInfo{}, false }
func (c *cacheStub) Add(id string, info domain.ValidatorInfo)   {}

type sinkStub struct{}

func (s *sinkStub) OnProgress(processed, total uint64)      {}
func (s *sinkStub) OnSlotAnomaly(slot uint64, reason string) {}

func newTestRouter() *chi.Mux {
	uc := usecase.NewPaymentsUseCase(&consensusStub{}, &executionStub{}, &cacheStub{}, &sinkStub{}, usecase.ScanParams{
		Concurrency:      2,
		RetryAttempts:    2,
		RetryBackoff:     time.Millisecond,
		SlotSeconds:      43200, // one day = slots [0,1]
		MaxEffectiveGwei: 32_000_000_000,
		ProgressInterval: time.Second,
	})
	h := handler.NewHandler(uc)

	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestHTTPHandler_Payments(t *testing.T) {
	zap.ReplaceGlobals(zap.NewNop())
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/payments?ids=5&start=1970-01-01&end=1970-01-02", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report domain.PaymentsReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.ProcessedSlots != 2 || report.FailedSlots != 0 {
		t.Errorf("unexpected slot counts: %+v", report)
	}
	got := report.ConsensusByAddress["0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"]
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1 ETH consensus credit, got %s", got)
	}
}

func TestHTTPHandler_MissingParams(t *testing.T) {
	zap.ReplaceGlobals(zap.NewNop())
	r := newTestRouter()

	for _, url := range []string{
		"/payments",
		"/payments?ids=5",
		"/payments?start=1970-01-01&end=1970-01-02",
	} {
		req := httptest.NewRequest("GET", url, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, rec.Code)
		}
	}
}

func TestHTTPHandler_InvalidDate(t *testing.T) {
	zap.ReplaceGlobals(zap.NewNop())
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/payments?ids=5&start=not-a-date&end=1970-01-02", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid date, got %d", rec.Code)
	}
}

func TestHTTPHandler_NoValidatorsResolved(t *testing.T) {
	zap.ReplaceGlobals(zap.NewNop())
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/payments?ids=404&start=1970-01-01&end=1970-01-02", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when nothing resolves, got %d", rec.Code)
	}
}
