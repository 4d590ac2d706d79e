package game

import (
	"sort"
	"time"
)

// perfWindow is the number of samples kept per phase, about two seconds of
// ticks at the default rate.
const perfWindow = 120

// phaseRing is a fixed ring of duration samples with a running sum, so Avg
// is O(1) regardless of window size.
type phaseRing struct {
	buf  [perfWindow]time.Duration
	head int
	n    int
	sum  time.Duration
}

func (r *phaseRing) push(d time.Duration) {
	if r.n == perfWindow {
		r.sum -= r.buf[r.head]
	} else {
		r.n++
	}
	r.buf[r.head] = d
	r.sum += d
	r.head = (r.head + 1) % perfWindow
}

func (r *phaseRing) avg() time.Duration {
	if r.n == 0 {
		return 0
	}
	return r.sum / time.Duration(r.n)
}

// PerfStats tracks a rolling execution-time average per simulation phase.
type PerfStats struct {
	phases map[string]*phaseRing
}

// NewPerfStats creates a new performance stats tracker.
func NewPerfStats() *PerfStats {
	return &PerfStats{phases: make(map[string]*phaseRing)}
}

// Record adds a duration sample for the named phase.
func (p *PerfStats) Record(name string, d time.Duration) {
	r, ok := p.phases[name]
	if !ok {
		r = &phaseRing{}
		p.phases[name] = r
	}
	r.push(d)
}

// Avg returns the rolling average duration for the named phase.
func (p *PerfStats) Avg(name string) time.Duration {
	r, ok := p.phases[name]
	if !ok {
		return 0
	}
	return r.avg()
}

// Total returns the sum of all phase averages.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for _, r := range p.phases {
		total += r.avg()
	}
	return total
}

// SortedNames returns phase names sorted by average duration (descending).
func (p *PerfStats) SortedNames() []string {
	names := make([]string, 0, len(p.phases))
	for name := range p.phases {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.Avg(names[i]) > p.Avg(names[j])
	})
	return names
}
