package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"14.03.2026", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), false},
		{"01.12.25", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), false},
		{"сегодня", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), false},
		{"Сегодня", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), false},
		{"today", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), false},
		{" 14.03.2026 ", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), false},
		{"2026-03-14", time.Time{}, true},
		{"32.01.2026", time.Time{}, true},
		{"завтра", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)

	got, err = ParseClock(" 23:59 ")
	require.NoError(t, err)
	assert.Equal(t, "23:59", got)

	_, err = ParseClock("9 утра")
	require.Error(t, err)

	_, err = ParseClock("25:00")
	require.Error(t, err)
}

func TestDraftToggleType(t *testing.T) {
	d := &Draft{}

	d.ToggleType(3)
	d.ToggleType(1)
	d.ToggleType(5)
	assert.Equal(t, []int64{3, 1, 5}, d.SelectedTypeIDs)

	// toggling off keeps the order of the rest
	d.ToggleType(1)
	assert.Equal(t, []int64{3, 5}, d.SelectedTypeIDs)
	assert.False(t, d.TypeSelected(1))
	assert.True(t, d.TypeSelected(5))
}

func TestDraftQuantitySequencing(t *testing.T) {
	d := &Draft{SelectedTypeIDs: []int64{3, 5}}

	assert.Equal(t, int64(3), d.CurrentQuantityType())
	more := d.RecordQuantity(7)
	assert.True(t, more)

	assert.Equal(t, int64(5), d.CurrentQuantityType())
	more = d.RecordQuantity(0)
	assert.False(t, more)

	assert.Equal(t, int64(0), d.CurrentQuantityType())
	assert.Equal(t, []TaskDraft{{WorkTypeID: 3, Quantity: 7}, {WorkTypeID: 5, Quantity: 0}}, d.Tasks)
}
