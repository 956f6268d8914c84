// internal/domain/healthdata/baseline.go
package healthdata

// AnthroMeasure is one anthropometric value with its display metadata.
type AnthroMeasure struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Unit  string   `json:"unit"`
	Value *float64 `json:"value"`
}

// Anthro is the baseline body-measurement card set.
type Anthro struct {
	Measures []AnthroMeasure `json:"measures"`
	FilledBy string          `json:"filledBy,omitempty"`
	Date     string          `json:"date,omitempty"`
}

var anthroFields = []struct {
	key, label, unit string
}{
	{"height_cm", "Height", "cm"},
	{"weight_kg", "Weight", "kg"},
	{"bmi", "BMI", ""},
	{"waist_circumference_cm", "Waist", "cm"},
	{"hip_circumference_cm", "Hip", "cm"},
	{"mid_arm_circumference_cm", "Mid-Arm", "cm"},
	{"grip_strength_left_kg", "Grip Left", "kg"},
	{"grip_strength_right_kg", "Grip Right", "kg"},
}

// BuildAnthro returns the anthropometric cards, or nil when the payload has
// no anthro category. Each value prefers the metric mean and falls back to
// the last time-series entry.
func BuildAnthro(p *Payload) *Anthro {
	if p == nil || p.Anthro == nil {
		return nil
	}
	latest, _ := p.Anthro.Last()

	a := &Anthro{Measures: make([]AnthroMeasure, 0, len(anthroFields))}
	for _, f := range anthroFields {
		m := AnthroMeasure{Key: f.key, Label: f.label, Unit: f.unit}
		if mt, ok := p.Anthro.Metric(f.key); ok && mt.Mean != nil {
			m.Value = mt.Mean
		} else if v, ok := latest.Number(f.key); ok {
			m.Value = ptr(v)
		}
		a.Measures = append(a.Measures, m)
	}
	a.FilledBy = latest.Text("filledBy")
	a.Date = latest.Date()
	return a
}

// LungMetric is a lung-function summary value.
type LungMetric struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Unit  string   `json:"unit"`
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

var lungFields = []struct {
	key, label, unit string
}{
	{"fev1", "FEV1", "L"},
	{"fev1_fvc", "FEV1/FVC", ""},
}

// BuildLung returns the lung-function cards, or nil when the payload carries
// no lung-function metrics.
func BuildLung(p *Payload) []LungMetric {
	if p == nil || p.LungFunction == nil || p.LungFunction.Metrics == nil {
		return nil
	}
	out := make([]LungMetric, 0, len(lungFields))
	for _, f := range lungFields {
		lm := LungMetric{Key: f.key, Label: f.label, Unit: f.unit}
		if mt, ok := p.LungFunction.Metric(f.key); ok {
			lm.Mean, lm.Min, lm.Max = mt.Mean, mt.Min, mt.Max
		}
		out = append(out, lm)
	}
	return out
}

// Summary is the latest record of each metric category plus the raw
// lung-function metrics, keyed the way the upstream summary endpoint keys them.
type Summary map[string]any

// BuildSummary computes the summary locally from a my-data payload.
func BuildSummary(p *Payload) Summary {
	s := Summary{}
	if p == nil {
		s["lung_metrics"] = map[string]any{}
		return s
	}
	latest := []struct {
		key    string
		series *Series
	}{
		{CategoryBloodPressure, p.BloodPressure},
		{CategoryHeartRate, p.HeartRate},
		{CategorySleep, p.Sleep},
		{CategorySpO2, p.SpO2},
		{CategorySteps, p.Steps},
		{CategoryTemperature, p.Temperature},
	}
	for _, l := range latest {
		if rec, ok := l.series.Last(); ok {
			s[l.key+"_latest"] = rec
		}
	}
	lung := map[string]any{}
	if p.LungFunction != nil {
		for k, raw := range p.LungFunction.Metrics {
			lung[k] = raw
		}
	}
	s["lung_metrics"] = lung
	return s
}
