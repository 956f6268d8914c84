package healthdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandDay_MatchesWithinWindow(t *testing.T) {
	p := mustPayload(t, `{
		"blood_pressure": {"time_series": [
			{"date": "2024-01-01T08:15:00", "systolic": 120, "diastolic": 80},
			{"date": "2024-01-02T08:15:00", "systolic": 150, "diastolic": 95}
		]}
	}`)

	slots := ExpandDay(p, BuildDateMapping(p), "2024-01-01", DefaultOptions())
	require.Len(t, slots, 1)
	assert.Equal(t, "08:00", slots[0].Time)
	assert.Equal(t, 8, slots[0].Hour)
	assert.Equal(t, "2024-01-01 08:00:00", slots[0].FullDateTime)
	assert.Equal(t, "Day 1", slots[0].Day)
	assert.Equal(t, f(120), slots[0].Systolic)
	assert.Equal(t, f(80), slots[0].Diastolic)
}

func TestExpandDay_WindowIsInclusive(t *testing.T) {
	p := mustPayload(t, `{"spo2": {"time_series": [{"date": "2024-01-01T08:30:00", "spo2": 97}]}}`)

	slots := ExpandDay(p, BuildDateMapping(p), "2024-01-01", DefaultOptions())
	require.Len(t, slots, 2)
	assert.Equal(t, "08:00", slots[0].Time)
	assert.Equal(t, "09:00", slots[1].Time)
}

func TestExpandDay_FirstMatchWinsPerCategory(t *testing.T) {
	p := mustPayload(t, `{
		"heart_rate": {"time_series": [
			{"date": "2024-01-01T10:05:00", "averageHeartRate": 72},
			{"date": "2024-01-01T10:10:00", "averageHeartRate": 90}
		]},
		"blood_pressure": {"time_series": [{"date": "2024-01-01T10:00:00", "systolic": 118, "diastolic": 76, "heartRate": 60}]},
		"steps": {"time_series": [{"date": "2024-01-01T10:20:00", "steps": 2500}]},
		"temperature": {"time_series": [{"date": "2024-01-01T09:45:00", "temperature": 36.6}]}
	}`)

	slots := ExpandDay(p, BuildDateMapping(p), "2024-01-01", DefaultOptions())
	var ten *HourlySlot
	for i := range slots {
		if slots[i].Hour == 10 {
			ten = &slots[i]
		}
	}
	require.NotNil(t, ten)
	assert.Equal(t, f(72), ten.HeartRate, "heart_rate category overrides the blood pressure pulse")
	assert.Equal(t, f(118), ten.Systolic)
	assert.Equal(t, f(25), ten.Steps)
	assert.Equal(t, f(36.6), ten.Temperature)
}

func TestExpandDay_SleepAndMeals(t *testing.T) {
	p := mustPayload(t, `{
		"sleep": {"time_series": [{"date": "2024-01-01", "totalSleep": 480}]},
		"meals": {"time_series": [{"date": "2024-01-01T12:10:00", "dish": "Chicken Rice"}]}
	}`)

	slots := ExpandDay(p, BuildDateMapping(p), "2024-01-01", DefaultOptions())

	asleep := map[int]bool{}
	var lunch []string
	for _, s := range slots {
		if s.Asleep {
			asleep[s.Hour] = true
		}
		if s.Hour == 12 {
			lunch = s.Meals
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 22, 23}, hoursOf(asleep))
	assert.Equal(t, []string{"Chicken Rice"}, lunch)
	assert.Len(t, slots, 9)
}

func TestExpandDay_KeepsWallClock(t *testing.T) {
	p := mustPayload(t, `{"spo2": {"time_series": [{"date": "2024-01-01T01:00:00Z", "spo2": 96}]}}`)
	opts := DefaultOptions()
	opts.Location = time.FixedZone("SGT", 8*60*60)

	slots := ExpandDay(p, BuildDateMapping(p), "2024-01-01", opts)
	require.Len(t, slots, 1)
	assert.Equal(t, 1, slots[0].Hour)
}

func TestExpandDay_OffsetStaysOnWrittenDate(t *testing.T) {
	p := mustPayload(t, `{
		"blood_pressure": {"time_series": [{"date": "2024-01-01T23:30:00-05:00", "systolic": 118, "diastolic": 76}]}
	}`)
	m := BuildDateMapping(p)
	require.Equal(t, []string{"2024-01-01"}, m.Dates())

	rows := NormalizeDaily(p, m, DefaultOptions())
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-01", rows[0].Date)

	slots := ExpandDay(p, m, "2024-01-01", DefaultOptions())
	require.Len(t, slots, 1)
	assert.Equal(t, "23:00", slots[0].Time)
	assert.Equal(t, f(118), slots[0].Systolic)
	assert.Empty(t, ExpandDay(p, m, "2024-01-02", DefaultOptions()))

	timeline := ExpandTimeline(p, m, DefaultOptions())
	require.Len(t, timeline, 24)
	assert.Equal(t, f(118), timeline[23].Systolic)
}

func TestExpandDay_NoData(t *testing.T) {
	p := mustPayload(t, `{"spo2": {"time_series": [{"date": "2024-01-01T08:00:00", "spo2": 96}]}}`)
	m := BuildDateMapping(p)

	assert.Empty(t, ExpandDay(p, m, "2024-02-01", DefaultOptions()))
	assert.Empty(t, ExpandDay(p, m, "not-a-date", DefaultOptions()))
	assert.Empty(t, ExpandDay(nil, m, "2024-01-01", DefaultOptions()))
}

func TestExpandTimeline(t *testing.T) {
	p := mustPayload(t, `{
		"blood_pressure": {"time_series": [{"date": "2024-01-01T08:45:00", "systolic": 121, "diastolic": 79}]},
		"spo2": {"time_series": [{"date": "2024-01-02T00:10:00", "spo2": 95}]}
	}`)

	slots := ExpandTimeline(p, BuildDateMapping(p), DefaultOptions())
	require.Len(t, slots, 48)

	assert.Equal(t, "2024-01-01", slots[8].Date)
	assert.Equal(t, f(121), slots[8].Systolic)
	assert.Nil(t, slots[9].Systolic, "timeline matches strictly within the clock hour")

	assert.Equal(t, "Day 2", slots[24].Day)
	assert.Equal(t, "00:00", slots[24].Time)
	assert.Equal(t, f(95), slots[24].SpO2)
	assert.False(t, slots[30].HasData())
}

func TestExpandTimeline_Empty(t *testing.T) {
	assert.Empty(t, ExpandTimeline(nil, DateMapping{}, DefaultOptions()))
	assert.Empty(t, ExpandTimeline(&Payload{}, DateMapping{}, DefaultOptions()))
}
