package healthdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	rows := []DailyRow{
		{Date: "2024-01-01", Systolic: f(120)},
		{Date: "2024-01-02"},
		{Date: "2024-01-03", Systolic: f(100)},
		{Date: "2024-01-04", Systolic: f(140)},
		{Date: "2024-01-05"},
	}

	s, ok := ComputeStats(rows, KeySystolic)
	require.True(t, ok)
	assert.Equal(t, Stats{Min: 100, Max: 140, Avg: 120, Latest: 140, Count: 3}, s)

	_, ok = ComputeStats(rows, KeyDiastolic)
	assert.False(t, ok)
}

func TestStatsFor_SkipsEmptyKeys(t *testing.T) {
	rows := []DailyRow{{Date: "2024-01-01", SpO2: f(97)}}
	got := StatsFor(rows, []string{KeySpO2, KeySteps})
	assert.Len(t, got, 1)
	assert.Equal(t, 97.0, got[KeySpO2].Latest)
}
