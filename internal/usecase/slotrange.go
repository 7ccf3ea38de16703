package usecase

import (
    "fmt"
    "time"

    apierr "validator_payments_api/internal/errors"
)

const dateLayout = "2006-01-02"

// parseDate reads a calendar date with UTC-midnight semantics.
func parseDate(s string) (time.Time, error) {
    t, err := time.ParseInLocation(dateLayout, s, time.UTC)
    if err != nil {
        return time.Time{}, fmt.Errorf("parsing date %q: %w", s, apierr.ErrInvalidRange)
    }
    return t, nil
}

// ResolveSlotRange maps a UTC time interval onto the inclusive slot range
// [startSlot, endSlot]. The end instant is exclusive: the last slot included
// is the last one starting strictly before it. Pre-genesis start instants
// clamp to slot 0.
func ResolveSlotRange(start, end time.Time, genesis time.Time, slotSeconds uint64) (uint64, uint64, error) {
    g := genesis.Unix()
    interval := int64(slotSeconds)

    var startSlot int64
    if d := start.Unix() - g; d > 0 {
        startSlot = ceilDiv(d, interval)
    }
    endSlot := floorDiv(end.Unix()-g-1, interval)

    if endSlot < 0 || startSlot > endSlot {
        return 0, 0, fmt.Errorf("no slots between %s and %s: %w",
            start.Format(time.RFC3339), end.Format(time.RFC3339), apierr.ErrInvalidRange)
    }
    return uint64(startSlot), uint64(endSlot), nil
}

func ceilDiv(a, b int64) int64 {
    return (a + b - 1) / b
}

func floorDiv(a, b int64) int64 {
    q := a / b
    if a%b != 0 && (a < 0) != (b < 0) {
        q--
    }
    return q
}
