package http

import (
    "encoding/json"
    "net/http"

    "github.com/go-chi/chi"
    "github.com/go-chi/chi/middleware"
    "go.uber.org/zap"

    "validator_payments_api/internal/handler"
    "validator_payments_api/internal/usecase"
    "validator_payments_api/pkg/config"
)

func NewRouter(
    cfg *config.Config,
    paymentsUC *usecase.PaymentsUseCase,
) *chi.Mux {
    r := chi.NewRouter()

    r.Use(middleware.RequestID)
    r.Use(middleware.RealIP)
    r.Use(middleware.Logger)
    r.Use(middleware.Recoverer)

    r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(http.StatusOK)
        if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
            zap.L().Error("failed to encode health check response", zap.Error(err))
        }
    })

    h := handler.NewHandler(paymentsUC)
    h.Register(r)

    return r
}
