package clock

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now directly so window evaluation and shortfall projection are
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a single instant. Tests mutate T between calls.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

// Set moves the fixed clock to t.
func (f *Fixed) Set(t time.Time) {
	f.T = t
}
