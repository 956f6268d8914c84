package healthdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDateMapping(t *testing.T) {
	p := mustPayload(t, `{
		"blood_pressure": {"time_series": [{"date": "2024-01-02T08:00:00", "systolic": 120}]},
		"steps": {"time_series": [{"date": "2024-01-01", "steps": 5000}, {"date": "2024"}]},
		"meals": {"time_series": [{"date_str": "2024-01-03", "dish": "Laksa"}]},
		"anthro": {"time_series": [{"date": "2024-01-02"}]}
	}`)

	m := BuildDateMapping(p)
	require.Equal(t, 3, m.TotalDays())
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, m.Dates())

	assert.Equal(t, DayInfo{Date: "2024-01-01", DayNumber: 1, DayLabel: "Day 1", FormattedDate: "Jan 1"}, m.Days[0])
	assert.Equal(t, "Day 3", m.Days[2].DayLabel)

	info, ok := m.Lookup("2024-01-02T23:59:00")
	require.True(t, ok)
	assert.Equal(t, 2, info.DayNumber)

	_, ok = m.Lookup("2024-01-09")
	assert.False(t, ok)
	_, ok = m.Lookup("bad")
	assert.False(t, ok)
}

func TestBuildDateMapping_Empty(t *testing.T) {
	for name, p := range map[string]*Payload{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			m := BuildDateMapping(p)
			assert.Equal(t, 0, m.TotalDays())
			assert.Empty(t, m.Dates())
			_, ok := m.Lookup("2024-01-01")
			assert.False(t, ok)
		})
	}
}

func TestBuildDateMapping_Deterministic(t *testing.T) {
	p := mustPayload(t, `{
		"sleep": {"time_series": [{"date": "2024-03-05"}, {"date": "2024-03-01"}]},
		"spo2": {"time_series": [{"date": "2024-03-03T10:00:00"}, {"date": "2024-03-01T09:00:00"}]}
	}`)
	first := BuildDateMapping(p)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildDateMapping(p))
	}
	assert.Equal(t, "Mar 5", first.Days[2].FormattedDate)
}
