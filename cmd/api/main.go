package main

import (
    stdhttp "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"
    "context"
    "fmt"

    "go.uber.org/zap"
    "github.com/ethereum/go-ethereum/ethclient"
    "github.com/ethereum/go-ethereum/rpc"

    "validator_payments_api/internal/adapter/consensus"
    "validator_payments_api/internal/adapter/execution"
    "validator_payments_api/internal/adapter/observer"
    "validator_payments_api/internal/usecase"
    httpPkg "validator_payments_api/pkg/http"
    "validator_payments_api/pkg/config"
    "validator_payments_api/pkg/logger"
)

func main() {

    log, err := logger.Init()
    if err != nil {
        panic(err)
    }
    defer func() {
        if err := log.Sync(); err != nil {
            fmt.Fprintf(os.Stderr, "error syncing logger: %v\n", err)
        }
    }()
    zap.ReplaceGlobals(log)

    cfg, err := config.Load()
    if err != nil {
        zap.L().Fatal("failed to load config", zap.Error(err))
    }

    consClient := consensus.NewConsensusClient(
        cfg.Ethereum.BeaconAPI,
        cfg.Scan.RequestTimeout,
    )

    cache, err := consensus.NewValidatorCache(
        cfg.Cache.Validators.MaxEntries,
        cfg.Cache.Validators.TTL,
    )
    if err != nil {
        zap.L().Fatal("init validator cache", zap.Error(err))
    }

    rpcHTTP, err := rpc.DialHTTP(cfg.Ethereum.RPCHTTP)
    if err != nil {
        zap.L().Fatal("dial rpc", zap.Error(err))
    }
    ethHTTP := ethclient.NewClient(rpcHTTP)

    execClient, err := execution.NewExecutionClient(ethHTTP, cfg.Scan.RequestTimeout)
    if err != nil {
        zap.L().Fatal("init execution client", zap.Error(err))
    }

    paymentsUC := usecase.NewPaymentsUseCase(
        consClient,
        execClient,
        cache,
        observer.NewZapSink(),
        usecase.ScanParams{
            Concurrency:      cfg.Scan.Concurrency,
            RetryAttempts:    cfg.Retry.MaxAttempts,
            RetryBackoff:     cfg.Retry.Backoff,
            SlotSeconds:      cfg.Chain.SlotSeconds,
            MaxEffectiveGwei: cfg.Chain.MaxEffectiveGwei,
            ProgressInterval: cfg.Scan.ProgressInterval,
        },
    )

    r := httpPkg.NewRouter(cfg, paymentsUC)

    srv := &stdhttp.Server{
        Addr:    cfg.Server.Address,
        Handler: r,
    }
    go func() {
        zap.L().Info("starting server", zap.String("address", cfg.Server.Address))
        if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
            zap.L().Fatal("listen error", zap.Error(err))
        }
    }()

    stop := make(chan os.Signal, 1)
    signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
    <-stop

    zap.L().Info("shutting down…")
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := srv.Shutdown(ctx); err != nil {
        zap.L().Error("shutdown error", zap.Error(err))
    }
    zap.L().Info("server stopped")
}
