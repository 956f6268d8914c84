// internal/domain/healthdata/view.go
package healthdata

// Daily is everything the chart area needs, derived from one payload.
type Daily struct {
	Days       []DayInfo        `json:"days"`
	Rows       []DailyRow       `json:"rows"`
	Stats      map[string]Stats `json:"stats"`
	SleepSlice []SleepSlice     `json:"sleepBreakdown"`
}

// BuildDaily runs the date mapper and normalizer over p and computes stats
// for every parameter.
func BuildDaily(p *Payload, opts Options) Daily {
	m := BuildDateMapping(p)
	rows := NormalizeDaily(p, m, opts)
	keys := make([]string, 0, len(parameters))
	for _, prm := range parameters {
		keys = append(keys, prm.Key)
	}
	return Daily{
		Days:       m.Days,
		Rows:       rows,
		Stats:      StatsFor(rows, keys),
		SleepSlice: SleepBreakdown(rows),
	}
}

// Baseline is the baseline overview: body measurements, lung function and meals.
type Baseline struct {
	Anthro *Anthro      `json:"anthro"`
	Lung   []LungMetric `json:"lungMetrics"`
	Meals  MealSummary  `json:"meals"`
	Days   []DayInfo    `json:"days"`
}

// BuildBaseline assembles the baseline overview from p.
func BuildBaseline(p *Payload, opts Options) Baseline {
	m := BuildDateMapping(p)
	return Baseline{
		Anthro: BuildAnthro(p),
		Lung:   BuildLung(p),
		Meals:  AggregateMeals(p, m, opts),
		Days:   m.Days,
	}
}
