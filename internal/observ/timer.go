// Package observ measures the phases of one unit of work.
package observ

import (
	"time"

	"rudderc/internal/logger"
)

// Phase is one timed step of a unit of work.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer tracks the phases of a single unit of work. Not safe for concurrent use;
// each worker owns its timer.
type Timer struct {
	now    func() time.Time
	starts []time.Time
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{now: time.Now} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name})
	t.starts = append(t.starts, t.now())
	return len(t.phases) - 1
}

// End finishes a phase by its index. Unknown indexes are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	t.phases[idx].Dur = t.now().Sub(t.starts[idx])
	t.phases[idx].Note = note
}

// Phases returns a copy of the recorded phases.
func (t *Timer) Phases() []Phase {
	out := make([]Phase, len(t.phases))
	copy(out, t.phases)
	return out
}

// Total sums the durations of all finished phases.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
	}
	return total
}

// Log writes one debug entry per phase and a total.
func (t *Timer) Log(log *logger.Logger) {
	if len(t.phases) == 0 {
		return
	}
	for _, p := range t.phases {
		if p.Note != "" {
			log.Debugf("phase %s: %.2f ms (%s)", p.Name, millis(p.Dur), p.Note)
			continue
		}
		log.Debugf("phase %s: %.2f ms", p.Name, millis(p.Dur))
	}
	log.Debugf("phase total: %.2f ms", millis(t.Total()))
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
