package dashboard

import (
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultCounterDuration is how long a KPI counter takes to reach its target.
	DefaultCounterDuration = 2 * time.Second
	// DefaultCounterDelay postpones counters after page load.
	DefaultCounterDelay = 600 * time.Millisecond
	// DefaultRingDelay postpones stat ring fills after page load.
	DefaultRingDelay = 800 * time.Millisecond
	// RingStartDashArray is the empty ring every fill starts from.
	RingStartDashArray = "0, 100"
)

// EaseOutQuart maps linear progress p to 1-(1-p)^4, clamping p to [0,1].
func EaseOutQuart(p float64) float64 {
	switch {
	case math.IsNaN(p) || p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	return 1 - math.Pow(1-p, 4)
}

// CounterAnimation counts a KPI value up from zero.
type CounterAnimation struct {
	Target   float64
	Decimal  bool
	Prefix   string
	Suffix   string
	Duration time.Duration
	Delay    time.Duration
}

// NewCounterAnimation builds the counter for a KPI with default timing.
func NewCounterAnimation(kpi KPI) CounterAnimation {
	return CounterAnimation{
		Target:   kpi.Target,
		Decimal:  kpi.Decimal,
		Prefix:   kpi.Prefix,
		Suffix:   kpi.Suffix,
		Duration: DefaultCounterDuration,
		Delay:    DefaultCounterDelay,
	}
}

func (a CounterAnimation) duration() time.Duration {
	if a.Duration <= 0 {
		return DefaultCounterDuration
	}
	return a.Duration
}

// Progress returns the linear progress at elapsed time since the animation started.
func (a CounterAnimation) Progress(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	p := float64(elapsed) / float64(a.duration())
	return math.Min(p, 1)
}

// ValueAt returns the eased value at elapsed.
func (a CounterAnimation) ValueAt(elapsed time.Duration) float64 {
	return EaseOutQuart(a.Progress(elapsed)) * a.Target
}

// TextAt returns the counter text at elapsed.
func (a CounterAnimation) TextAt(elapsed time.Duration) string {
	return a.format(a.ValueAt(elapsed))
}

// FinalText is the text shown once the animation completes.
func (a CounterAnimation) FinalText() string {
	return a.format(a.Target)
}

// Done reports whether the counter has reached its target.
func (a CounterAnimation) Done(elapsed time.Duration) bool {
	return elapsed >= a.duration()
}

// Frames samples the animation at fps frames per second. The last frame is
// always the target text.
func (a CounterAnimation) Frames(fps int) []string {
	if fps <= 0 {
		fps = 60
	}
	step := time.Second / time.Duration(fps)
	total := a.duration()
	frames := make([]string, 0, int(total/step)+2)
	for elapsed := time.Duration(0); elapsed < total; elapsed += step {
		frames = append(frames, a.TextAt(elapsed))
	}
	return append(frames, a.FinalText())
}

func (a CounterAnimation) format(v float64) string {
	if a.Decimal {
		return a.Prefix + strconv.FormatFloat(v, 'f', 1, 64) + a.Suffix
	}
	return a.Prefix + humanize.Comma(int64(math.Floor(v))) + a.Suffix
}

// RingAnimation fills a stat ring from empty to its dash array.
type RingAnimation struct {
	DashArray string
	Delay     time.Duration
}

// NewRingAnimation builds the animation for ring with default timing.
func NewRingAnimation(ring StatRing) RingAnimation {
	return RingAnimation{DashArray: ring.DashArray, Delay: DefaultRingDelay}
}

// StateAt returns the dash array the ring shows at elapsed since page load.
func (r RingAnimation) StateAt(elapsed time.Duration) string {
	delay := r.Delay
	if delay <= 0 {
		delay = DefaultRingDelay
	}
	if elapsed < delay {
		return RingStartDashArray
	}
	return r.DashArray
}
