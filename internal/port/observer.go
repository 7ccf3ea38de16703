package port

// ProgressSink receives scan observations. Implementations must not block:
// the scanner calls these inline between batches.
type ProgressSink interface {
    OnProgress(processed, total uint64)
    OnSlotAnomaly(slot uint64, reason string)
}
