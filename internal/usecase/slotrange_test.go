package usecase_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apierr "validator_payments_api/internal/errors"
	"validator_payments_api/internal/usecase"
)

func TestResolveSlotRange(t *testing.T) {
	genesis := time.Unix(0, 0).UTC()

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantStart uint64
		wantEnd   uint64
		wantErr   bool
	}{
		{
			name:      "two full slots, exclusive end boundary",
			start:     genesis,
			end:       genesis.Add(24 * time.Second),
			wantStart: 0,
			wantEnd:   1,
		},
		{
			name:      "end mid-slot includes the started slot",
			start:     genesis,
			end:       genesis.Add(23 * time.Second),
			wantStart: 0,
			wantEnd:   1,
		},
		{
			name:      "single slot",
			start:     genesis,
			end:       genesis.Add(12 * time.Second),
			wantStart: 0,
			wantEnd:   0,
		},
		{
			name:      "pre-genesis start clamps to zero",
			start:     genesis.Add(-48 * time.Hour),
			end:       genesis.Add(12 * time.Second),
			wantStart: 0,
			wantEnd:   0,
		},
		{
			name:      "start between slots rounds up",
			start:     genesis.Add(1 * time.Second),
			end:       genesis.Add(25 * time.Second),
			wantStart: 1,
			wantEnd:   2,
		},
		{
			name:    "end before genesis",
			start:   genesis.Add(-48 * time.Hour),
			end:     genesis.Add(-24 * time.Hour),
			wantErr: true,
		},
		{
			name:    "inverted interval",
			start:   genesis.Add(24 * time.Second),
			end:     genesis.Add(12 * time.Second),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := usecase.ResolveSlotRange(tt.start, tt.end, genesis, 12)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, apierr.ErrInvalidRange))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantStart, start)
			require.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestResolveSlotRange_Monotonic(t *testing.T) {
	genesis := time.Unix(1_606_824_023, 0).UTC()

	prevStart, prevEnd := uint64(0), uint64(0)
	for days := 1; days <= 30; days++ {
		start := genesis
		end := genesis.Add(time.Duration(days) * 24 * time.Hour)
		s, e, err := usecase.ResolveSlotRange(start, end, genesis, 12)
		require.NoError(t, err)
		require.LessOrEqual(t, s, e)
		require.GreaterOrEqual(t, s, prevStart)
		require.GreaterOrEqual(t, e, prevEnd)
		prevStart, prevEnd = s, e
	}
}
