package observer

import "go.uber.org/zap"

// ZapSink logs scan observations through the global zap logger.
type ZapSink struct{}

func NewZapSink() *ZapSink { return &ZapSink{} }

func (s *ZapSink) OnProgress(processed, total uint64) {
    zap.L().Info("scan progress",
        zap.Uint64("processed", processed),
        zap.Uint64("total", total),
    )
}

func (s *ZapSink) OnSlotAnomaly(slot uint64, reason string) {
    zap.L().Warn("slot anomaly",
        zap.Uint64("slot", slot),
        zap.String("reason", reason),
    )
}
