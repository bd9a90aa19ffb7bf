package rf

import (
	"time"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// PollInterval is the granularity of waiting for acknowledges.
const PollInterval = time.Millisecond

// Poller polls a condition until it's met or time runs out.
type Poller struct {
	Clock    fx.Clock
	Interval time.Duration
}

// Poll sleeps one interval before each check of cond, so cond is
// checked at most timeout/Interval times. It returns whether cond
// was met.
func (p *Poller) Poll(timeout time.Duration, cond func() bool) bool {
	interval := p.Interval
	if interval <= 0 {
		interval = PollInterval
	}
	clock := p.Clock
	if clock == nil {
		clock = fx.SystemClock
	}
	for waited := time.Duration(0); waited < timeout; waited += interval {
		clock.Sleep(interval)
		if cond() {
			return true
		}
	}
	return false
}
