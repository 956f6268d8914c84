package dashboard

import (
	"net/url"
	"testing"

	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "120", formatValue(120))
	assert.Equal(t, "36.7", formatValue(36.66))
	assert.Equal(t, "84", formatValue(84.0))
	assert.Equal(t, "-", cell(nil))
}

func TestToggles(t *testing.T) {
	got := toggles([]string{healthdata.KeySpO2})
	assert.Len(t, got, len(healthdata.Parameters()))
	for _, tg := range got {
		assert.Equal(t, tg.Key == healthdata.KeySpO2, tg.Selected, tg.Key)
	}
}

func TestSleepSlices_OnlyWhenSelected(t *testing.T) {
	slices := []healthdata.SleepSlice{{Name: "Deep Sleep", Minutes: 90, Percent: 21.4286}}

	assert.Nil(t, sleepSlices(slices, []string{healthdata.KeySystolic}))

	got := sleepSlices(slices, []string{healthdata.KeySleep})
	if assert.Len(t, got, 1) {
		assert.Equal(t, "21.4", got[0].Percent)
		assert.Equal(t, "90", got[0].Minutes)
	}
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "Monday, January 15, 2024", longDate("2024-01-15"))
	assert.Equal(t, "garbage", longDate("garbage"))
}

func TestDashboardLink(t *testing.T) {
	tests := []struct {
		name  string
		query string
		date  string
		want  string
	}{
		{"bare", "", "", "/dashboard"},
		{"date only", "", "2024-01-15", "/dashboard?date=2024-01-15"},
		{"clears date keeps overrides", "metric=steps&metric=sleep&chart=bar&date=2024-01-15", "", "/dashboard?chart=bar&metric=steps&metric=sleep"},
		{"replaces date", "metric=spo2&date=2024-01-15", "2024-01-16", "/dashboard?date=2024-01-16&metric=spo2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dashboardLink(q, tt.date))
		})
	}
}
