// internal/domain/healthdata/hourly.go
package healthdata

import (
	"fmt"
	"time"
)

// HourlySlot is one clock hour of one date.
type HourlySlot struct {
	Date         string `json:"date"`
	Day          string `json:"day,omitempty"`
	Time         string `json:"time"`
	Hour         int    `json:"hour"`
	FullDateTime string `json:"fullDateTime"`

	Systolic    *float64 `json:"systolic,omitempty"`
	Diastolic   *float64 `json:"diastolic,omitempty"`
	HeartRate   *float64 `json:"heartRate,omitempty"`
	Sleep       *float64 `json:"sleep,omitempty"`
	SpO2        *float64 `json:"spo2,omitempty"`
	Steps       *float64 `json:"steps,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`

	Asleep bool     `json:"asleep"`
	Meals  []string `json:"meals,omitempty"`
}

// Value returns the metric stored under a parameter key.
func (s HourlySlot) Value(key string) *float64 {
	switch key {
	case KeySystolic:
		return s.Systolic
	case KeyDiastolic:
		return s.Diastolic
	case KeyHeartRate:
		return s.HeartRate
	case KeySleep:
		return s.Sleep
	case KeySpO2:
		return s.SpO2
	case KeySteps:
		return s.Steps
	case KeyTemperature:
		return s.Temperature
	}
	return nil
}

// HasData reports whether anything was matched into the slot.
func (s HourlySlot) HasData() bool {
	return s.Systolic != nil || s.Diastolic != nil || s.HeartRate != nil ||
		s.Sleep != nil || s.SpO2 != nil || s.Steps != nil || s.Temperature != nil ||
		s.Asleep || len(s.Meals) > 0
}

func newSlot(date string, hour int) HourlySlot {
	label := fmt.Sprintf("%02d:00", hour)
	return HourlySlot{
		Date:         date,
		Time:         label,
		Hour:         hour,
		FullDateTime: date + " " + label + ":00",
	}
}

// timedRecord is a record whose timestamp could be resolved.
type timedRecord struct {
	at  time.Time
	rec Record
}

// recordTime resolves a metric record's timestamp. A bare date counts as midnight.
func recordTime(rec Record, loc *time.Location) (time.Time, bool) {
	raw := rec.Date()
	if t, ok := parseTimestamp(raw, loc); ok {
		return t, true
	}
	if len(raw) == len(dayLayout) {
		return parseDay(raw, loc)
	}
	return time.Time{}, false
}

func timed(s *Series, loc *time.Location) []timedRecord {
	recs := s.Records()
	out := make([]timedRecord, 0, len(recs))
	for _, rec := range recs {
		if t, ok := recordTime(rec, loc); ok {
			out = append(out, timedRecord{at: t, rec: rec})
		}
	}
	return out
}

// hourlySources holds every category with its timestamps resolved once.
type hourlySources struct {
	bp, hr, sleep, spo2, steps, temp []timedRecord
	meals                            []MealEntry
}

func newHourlySources(p *Payload, m DateMapping, loc *time.Location) hourlySources {
	return hourlySources{
		bp:    timed(p.BloodPressure, loc),
		hr:    timed(p.HeartRate, loc),
		sleep: timed(p.Sleep, loc),
		spo2:  timed(p.SpO2, loc),
		steps: timed(p.Steps, loc),
		temp:  timed(p.Temperature, loc),
		meals: mealEntries(p, m, loc),
	}
}

// fill writes the first matching record of each category into slot.
func (src hourlySources) fill(slot *HourlySlot, match func(time.Time) bool, scale float64) {
	first := func(recs []timedRecord) (Record, bool) {
		for _, tr := range recs {
			if match(tr.at) {
				return tr.rec, true
			}
		}
		return nil, false
	}

	if rec, ok := first(src.bp); ok {
		field(&slot.Systolic, rec, "systolic")
		field(&slot.Diastolic, rec, "diastolic")
		field(&slot.HeartRate, rec, "heartRate")
	}
	if rec, ok := first(src.hr); ok {
		field(&slot.HeartRate, rec, "averageHeartRate", "heart_rate")
	}
	if rec, ok := first(src.sleep); ok {
		field(&slot.Sleep, rec, "totalSleep", "total_sleep_minutes")
	}
	if rec, ok := first(src.spo2); ok {
		field(&slot.SpO2, rec, "spo2")
	}
	if rec, ok := first(src.steps); ok {
		if v, ok := rec.Number("steps"); ok {
			slot.Steps = ptr(v / scale)
		}
	}
	if rec, ok := first(src.temp); ok {
		field(&slot.Temperature, rec, "temperature")
	}
	for _, me := range src.meals {
		if match(me.At) {
			slot.Meals = append(slot.Meals, me.Dish)
		}
	}
}

// ExpandDay builds the hourly drill-down for one date. Each category
// contributes the first record within opts.Window of the hour, inclusive on
// both ends. Only slots that received data are returned.
func ExpandDay(p *Payload, m DateMapping, date string, opts Options) []HourlySlot {
	opts = opts.withDefaults()
	day, ok := parseDay(date, opts.Location)
	if !ok || p == nil {
		return []HourlySlot{}
	}
	key := day.Format(dayLayout)
	src := newHourlySources(p, m, opts.Location)
	asleep := opts.SleepHeuristic().Hours(sleepByDate(p)[key])
	info, _ := m.Lookup(key)

	out := make([]HourlySlot, 0, 24)
	for hour := 0; hour < 24; hour++ {
		center := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, opts.Location)
		lo, hi := center.Add(-opts.Window), center.Add(opts.Window)
		slot := newSlot(key, hour)
		slot.Day = info.DayLabel
		src.fill(&slot, func(t time.Time) bool {
			return !t.Before(lo) && !t.After(hi)
		}, opts.StepsScale)
		slot.Asleep = asleep[hour]
		if slot.HasData() {
			out = append(out, slot)
		}
	}
	return out
}

// ExpandTimeline emits every hour of every known date, matching records that
// fall in the same clock hour. Empty placeholder slots are kept so the
// timeline has no gaps.
func ExpandTimeline(p *Payload, m DateMapping, opts Options) []HourlySlot {
	opts = opts.withDefaults()
	if p == nil || m.TotalDays() == 0 {
		return []HourlySlot{}
	}
	src := newHourlySources(p, m, opts.Location)
	sleep := sleepByDate(p)
	heuristic := opts.SleepHeuristic()

	out := make([]HourlySlot, 0, 24*m.TotalDays())
	for _, d := range m.Days {
		asleep := heuristic.Hours(sleep[d.Date])
		for hour := 0; hour < 24; hour++ {
			slot := newSlot(d.Date, hour)
			slot.Day = d.DayLabel
			date, h := d.Date, hour
			src.fill(&slot, func(t time.Time) bool {
				return t.Hour() == h && t.Format(dayLayout) == date
			}, opts.StepsScale)
			slot.Asleep = asleep[hour]
			out = append(out, slot)
		}
	}
	return out
}
