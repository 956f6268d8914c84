// internal/domain/healthdata/payload.go
package healthdata

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Category keys as they appear in the upstream my-data payload.
const (
	CategoryBloodPressure = "blood_pressure"
	CategoryHeartRate     = "heart_rate"
	CategorySleep         = "sleep"
	CategorySpO2          = "spo2"
	CategorySteps         = "steps"
	CategoryTemperature   = "temperature"
	CategoryMeals         = "meals"
	CategoryAnthro        = "anthro"
	CategoryLungFunction  = "lung_function"
)

// Record is one reading inside a category's time series.
// Field names vary between sources, so records stay loosely typed and are
// read through the accessor helpers below.
type Record map[string]any

// Number returns the numeric value stored under key.
// Numeric strings are accepted; null, booleans and other shapes are not.
func (r Record) Number(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Text returns the trimmed string stored under key, or "" when absent or not a string.
func (r Record) Text(key string) string {
	if s, ok := r[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// FirstText returns the first non-empty string among keys.
func (r Record) FirstText(keys ...string) string {
	for _, k := range keys {
		if s := r.Text(k); s != "" {
			return s
		}
	}
	return ""
}

// Date returns the raw timestamp string of the record.
func (r Record) Date() string {
	return r.Text("date")
}

// dateAliases lists the fields a record may carry its calendar date in.
var dateAliases = []string{"date", "date_str", "dateString", "dateISO"}

// DateKey returns the YYYY-MM-DD portion (first 10 characters) of the
// record's date, looking through the date aliases in order.
func (r Record) DateKey() (string, bool) {
	return dateKey(r.FirstText(dateAliases...))
}

func dateKey(s string) (string, bool) {
	if len(s) < 10 {
		return "", false
	}
	return s[:10], true
}

// Metric is a precomputed summary of one field of a category.
type Metric struct {
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Std    *float64 `json:"std,omitempty"`
	Count  *float64 `json:"count,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Series is a single category: its time series plus optional metric summaries.
type Series struct {
	TimeSeries []Record                   `json:"time_series"`
	Metrics    map[string]json.RawMessage `json:"metrics,omitempty"`
}

// Records returns the time series, tolerating a nil Series.
func (s *Series) Records() []Record {
	if s == nil {
		return nil
	}
	return s.TimeSeries
}

// Last returns the final record of the time series.
func (s *Series) Last() (Record, bool) {
	recs := s.Records()
	if len(recs) == 0 {
		return nil, false
	}
	return recs[len(recs)-1], true
}

// Metric decodes the summary stored under name.
// Entries that are missing or not objects report false.
func (s *Series) Metric(name string) (Metric, bool) {
	if s == nil || s.Metrics == nil {
		return Metric{}, false
	}
	raw, ok := s.Metrics[name]
	if !ok {
		return Metric{}, false
	}
	var m Metric
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metric{}, false
	}
	return m, true
}

// Payload is the full my-data response for one participant.
type Payload struct {
	BloodPressure *Series `json:"blood_pressure,omitempty"`
	HeartRate     *Series `json:"heart_rate,omitempty"`
	Sleep         *Series `json:"sleep,omitempty"`
	SpO2          *Series `json:"spo2,omitempty"`
	Steps         *Series `json:"steps,omitempty"`
	Temperature   *Series `json:"temperature,omitempty"`
	Meals         *Series `json:"meals,omitempty"`
	Anthro        *Series `json:"anthro,omitempty"`
	LungFunction  *Series `json:"lung_function,omitempty"`
}

// Categories returns every category in a fixed order. Missing categories are nil.
func (p *Payload) Categories() []*Series {
	if p == nil {
		return nil
	}
	return []*Series{
		p.BloodPressure,
		p.HeartRate,
		p.Sleep,
		p.SpO2,
		p.Steps,
		p.Temperature,
		p.Meals,
		p.Anthro,
		p.LungFunction,
	}
}

// Empty reports whether no category carries any records.
func (p *Payload) Empty() bool {
	for _, s := range p.Categories() {
		if len(s.Records()) > 0 {
			return false
		}
	}
	return true
}

// Decode reads a my-data payload from r.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode health payload: %w", err)
	}
	return &p, nil
}
