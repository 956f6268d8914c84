// internal/domain/healthdata/options.go
package healthdata

import "time"

// Defaults for the tunable transform constants.
const (
	DefaultStepsScale     = 100.0
	DefaultHourlyWindow   = 30 * time.Minute
	DefaultSleepStartHour = 22
	DefaultSleepWakeHour  = 6
)

// Options carries the tunable constants used by the transforms.
// Start from DefaultOptions; a non-positive scale or window, an hour outside
// 0..23 and a nil location fall back to the defaults.
type Options struct {
	// StepsScale divides raw step counts for chart scale (steps / 100 -> "x10²").
	StepsScale float64
	// Window is the half-width of the hourly match window in the single-day view.
	Window time.Duration
	// SleepStartHour is the clock hour the sleep heuristic starts marking from.
	SleepStartHour int
	// SleepWakeHour is the clock hour the heuristic never marks past.
	SleepWakeHour int
	// Location is the zone record times are read in. Offsets written in a
	// timestamp are ignored; its wall-clock reading is kept.
	Location *time.Location
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		StepsScale:     DefaultStepsScale,
		Window:         DefaultHourlyWindow,
		SleepStartHour: DefaultSleepStartHour,
		SleepWakeHour:  DefaultSleepWakeHour,
		Location:       time.UTC,
	}
}

func (o Options) withDefaults() Options {
	if o.StepsScale <= 0 {
		o.StepsScale = DefaultStepsScale
	}
	if o.Window <= 0 {
		o.Window = DefaultHourlyWindow
	}
	if o.SleepStartHour < 0 || o.SleepStartHour > 23 {
		o.SleepStartHour = DefaultSleepStartHour
	}
	if o.SleepWakeHour < 0 || o.SleepWakeHour > 23 {
		o.SleepWakeHour = DefaultSleepWakeHour
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// SleepHeuristic returns the sleep heuristic configured by these options.
func (o Options) SleepHeuristic() SleepHeuristic {
	o = o.withDefaults()
	return SleepHeuristic{StartHour: o.SleepStartHour, WakeHour: o.SleepWakeHour}
}
