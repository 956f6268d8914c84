// internal/domain/healthdata/normalize.go
package healthdata

import "sort"

// DailyRow is one calendar date with every metric merged in.
// Nil fields had no reading that day.
type DailyRow struct {
	Date          string `json:"date"`
	Day           string `json:"day"`
	DayNumber     int    `json:"dayNumber"`
	FormattedDate string `json:"formattedDate"`

	Systolic    *float64 `json:"systolic,omitempty"`
	Diastolic   *float64 `json:"diastolic,omitempty"`
	HeartRate   *float64 `json:"heartRate,omitempty"`
	Sleep       *float64 `json:"sleep,omitempty"`
	DeepSleep   *float64 `json:"deepSleep,omitempty"`
	RemSleep    *float64 `json:"remSleep,omitempty"`
	LightSleep  *float64 `json:"lightSleep,omitempty"`
	AlmostAwake *float64 `json:"almostAwake,omitempty"`
	SpO2        *float64 `json:"spo2,omitempty"`
	Steps       *float64 `json:"steps,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Value returns the metric stored under a parameter key (see Parameters).
func (r DailyRow) Value(key string) *float64 {
	switch key {
	case KeySystolic:
		return r.Systolic
	case KeyDiastolic:
		return r.Diastolic
	case KeyHeartRate:
		return r.HeartRate
	case KeySleep:
		return r.Sleep
	case KeySpO2:
		return r.SpO2
	case KeySteps:
		return r.Steps
	case KeyTemperature:
		return r.Temperature
	case "deepSleep":
		return r.DeepSleep
	case "remSleep":
		return r.RemSleep
	case "lightSleep":
		return r.LightSleep
	case "almostAwake":
		return r.AlmostAwake
	}
	return nil
}

// field copies rec[key] into *dst when the record carries a number there.
// Absent values leave the existing field alone.
func field(dst **float64, rec Record, keys ...string) {
	for _, k := range keys {
		if v, ok := rec.Number(k); ok {
			*dst = ptr(v)
			return
		}
	}
}

func ptr(v float64) *float64 { return &v }

// NormalizeDaily merges every metric category into one row per date, sorted
// ascending. Within a category the last record for a date wins per field.
func NormalizeDaily(p *Payload, m DateMapping, opts Options) []DailyRow {
	opts = opts.withDefaults()
	if p == nil {
		return []DailyRow{}
	}

	rows := make(map[string]*DailyRow)
	row := func(rec Record) *DailyRow {
		key, ok := dateKey(rec.Date())
		if !ok {
			return nil
		}
		r, ok := rows[key]
		if !ok {
			r = &DailyRow{Date: key}
			rows[key] = r
		}
		return r
	}

	for _, rec := range p.BloodPressure.Records() {
		if r := row(rec); r != nil {
			field(&r.Systolic, rec, "systolic")
			field(&r.Diastolic, rec, "diastolic")
		}
	}
	for _, rec := range p.HeartRate.Records() {
		if r := row(rec); r != nil {
			field(&r.HeartRate, rec, "averageHeartRate", "heart_rate")
		}
	}
	for _, rec := range p.Sleep.Records() {
		if r := row(rec); r != nil {
			field(&r.Sleep, rec, "totalSleep", "total_sleep_minutes")
			field(&r.DeepSleep, rec, "deepSleep")
			field(&r.RemSleep, rec, "remSleep")
			field(&r.LightSleep, rec, "lightSleep")
			field(&r.AlmostAwake, rec, "almostAwake")
		}
	}
	for _, rec := range p.SpO2.Records() {
		if r := row(rec); r != nil {
			field(&r.SpO2, rec, "spo2")
		}
	}
	for _, rec := range p.Steps.Records() {
		if r := row(rec); r != nil {
			if v, ok := rec.Number("steps"); ok {
				r.Steps = ptr(v / opts.StepsScale)
			}
		}
	}
	for _, rec := range p.Temperature.Records() {
		if r := row(rec); r != nil {
			field(&r.Temperature, rec, "temperature")
		}
	}

	out := make([]DailyRow, 0, len(rows))
	for _, d := range m.Days {
		r, ok := rows[d.Date]
		if !ok {
			continue
		}
		r.Day = d.DayLabel
		r.DayNumber = d.DayNumber
		r.FormattedDate = d.FormattedDate
		out = append(out, *r)
		delete(rows, d.Date)
	}
	// Dates the mapping did not know about (a caller passing a mapping built
	// from a different payload) still appear, without a day label.
	if len(rows) > 0 {
		extra := make([]string, 0, len(rows))
		for k := range rows {
			extra = append(extra, k)
		}
		sort.Strings(extra)
		for _, k := range extra {
			r := rows[k]
			r.FormattedDate = formatShortDate(k)
			out = append(out, *r)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	}
	return out
}
