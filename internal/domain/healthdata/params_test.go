package healthdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSelection(t *testing.T) {
	assert.Equal(t, []string{KeySystolic}, SanitizeSelection(nil))
	assert.Equal(t, []string{KeySystolic}, SanitizeSelection([]string{"bogus"}))
	assert.Equal(t,
		[]string{KeySystolic, KeyHeartRate, KeySteps},
		SanitizeSelection([]string{KeySteps, KeyHeartRate, KeySteps, KeySystolic}),
	)
}

func TestSanitizeChartType(t *testing.T) {
	assert.Equal(t, ChartBar, SanitizeChartType("bar"))
	assert.Equal(t, ChartLine, SanitizeChartType("line"))
	assert.Equal(t, ChartLine, SanitizeChartType("pie"))
}

func TestParameters(t *testing.T) {
	params := Parameters()
	assert.Len(t, params, 7)
	p, ok := LookupParameter(KeySteps)
	assert.True(t, ok)
	assert.Equal(t, "x10²", p.Unit)
	assert.Equal(t, "#ea580c", p.Color)
}
