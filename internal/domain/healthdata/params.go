// internal/domain/healthdata/params.go
package healthdata

// Parameter keys used by the dashboard toggles, rows and chart series.
const (
	KeySystolic    = "systolic"
	KeyDiastolic   = "diastolic"
	KeyHeartRate   = "heartRate"
	KeySleep       = "sleep"
	KeySpO2        = "spo2"
	KeySteps       = "steps"
	KeyTemperature = "temperature"
)

// Chart types.
const (
	ChartLine = "line"
	ChartBar  = "bar"
)

// Parameter describes one selectable health metric.
type Parameter struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	ChartLabel string `json:"chartLabel"`
	Color      string `json:"color"`
	Unit       string `json:"unit"`
}

var parameters = []Parameter{
	{Key: KeySystolic, Label: "Systolic Blood Pressure", ChartLabel: "Systolic BP", Color: "#d52b1e", Unit: "mmHg"},
	{Key: KeyDiastolic, Label: "Diastolic Blood Pressure", ChartLabel: "Diastolic BP", Color: "#2563eb", Unit: "mmHg"},
	{Key: KeyHeartRate, Label: "Heart Rate", ChartLabel: "Heart Rate", Color: "#dc2626", Unit: "bpm"},
	{Key: KeySleep, Label: "Sleep", ChartLabel: "Sleep (min)", Color: "#7c3aed", Unit: "minutes"},
	{Key: KeySpO2, Label: "Blood Oxygen Saturation (SpO₂)", ChartLabel: "SpO₂ (%)", Color: "#0891b2", Unit: "%"},
	{Key: KeySteps, Label: "Steps", ChartLabel: "Steps (x10²)", Color: "#ea580c", Unit: "x10²"},
	{Key: KeyTemperature, Label: "Temperature", ChartLabel: "Temperature (°C)", Color: "#059669", Unit: "°C"},
}

// Parameters returns the selectable metrics in sidebar order.
func Parameters() []Parameter {
	out := make([]Parameter, len(parameters))
	copy(out, parameters)
	return out
}

// LookupParameter finds a parameter by key.
func LookupParameter(key string) (Parameter, bool) {
	for _, p := range parameters {
		if p.Key == key {
			return p, true
		}
	}
	return Parameter{}, false
}

// DefaultSelection is the metric set shown before the user picks any.
func DefaultSelection() []string {
	return []string{KeySystolic}
}

// SanitizeSelection drops unknown and repeated keys and keeps sidebar order.
// An empty result falls back to DefaultSelection.
func SanitizeSelection(keys []string) []string {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	out := make([]string, 0, len(keys))
	for _, p := range parameters {
		if want[p.Key] {
			out = append(out, p.Key)
		}
	}
	if len(out) == 0 {
		return DefaultSelection()
	}
	return out
}

// SanitizeChartType maps anything but "bar" to "line".
func SanitizeChartType(t string) string {
	if t == ChartBar {
		return ChartBar
	}
	return ChartLine
}
