package handler

import (
    "encoding/json"
    "net/http"
    "strings"

    "github.com/go-chi/chi"
    "go.uber.org/zap"
    stdErr "errors"

    apierr "validator_payments_api/internal/errors"
    "validator_payments_api/internal/usecase"
)

type Handler struct {
    paymentsUseCase *usecase.PaymentsUseCase
}

func NewHandler(payments *usecase.PaymentsUseCase) *Handler {
    return &Handler{paymentsUseCase: payments}
}

func (h *Handler) Register(r chi.Router) {
    r.Get("/payments", h.getPayments)
}

func (h *Handler) getPayments(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()

    ids := splitIDs(q.Get("ids"))
    if len(ids) == 0 {
        writeErrorJSON(w, http.StatusBadRequest, "ids is required (comma-separated validator indices or pubkeys)")
        return
    }
    startDate := q.Get("start")
    endDate := q.Get("end")
    if startDate == "" || endDate == "" {
        writeErrorJSON(w, http.StatusBadRequest, "start and end dates are required (YYYY-MM-DD)")
        return
    }

    report, err := h.paymentsUseCase.ComputePayments(r.Context(), ids, startDate, endDate)
    if err != nil {
        var he apierr.HTTPError
        if stdErr.As(err, &he) {
            writeErrorJSON(w, he.StatusCode(), err.Error())
            return
        }
        zap.L().Error("unexpected payments error", zap.Error(err))
        writeErrorJSON(w, http.StatusInternalServerError, "internal error")
        return
    }
    writeJSON(w, report)
}

func splitIDs(raw string) []string {
    var ids []string
    for _, part := range strings.Split(raw, ",") {
        if part = strings.TrimSpace(part); part != "" {
            ids = append(ids, part)
        }
    }
    return ids
}

func writeJSON(w http.ResponseWriter, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    if err := json.NewEncoder(w).Encode(v); err != nil {
        zap.L().Error("failed to write JSON response", zap.Error(err))
    }
}

func writeErrorJSON(w http.ResponseWriter, status int, msg string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    if err := json.NewEncoder(w).Encode(struct {
        Error string `json:"error"`
    }{Error: msg}); err != nil {
        zap.L().Error("failed to write JSON error response", zap.Error(err))
    }
}
