// Package tsp - throttled progress reporting shared by both solvers.
package tsp

// heuristicProgressCap bounds the time-based fraction of HeuristicPath before it
// finishes; 1.0 is reserved for the final report.
const heuristicProgressCap = 0.95

// progressReporter forwards fractions to a ProgressFunc, dropping calls that
// advance less than step since the last delivered one. Fractions never decrease.
type progressReporter struct {
	fn      ProgressFunc
	step    float64
	last    float64
	started bool
	done    bool
}

func newProgressReporter(fn ProgressFunc, step float64) *progressReporter {
	return &progressReporter{fn: fn, step: step}
}

// report delivers f when it moved by at least step. Values outside [0,1] are clamped.
func (p *progressReporter) report(f float64, nodes int64) {
	if p.fn == nil || p.done {
		return
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	if p.started && (f < p.last || f-p.last < p.step) {
		return
	}
	p.started = true
	p.last = f
	p.fn(f, nodes)
}

// finish delivers 1.0 unless already delivered; later reports are ignored.
func (p *progressReporter) finish(nodes int64) {
	if p.fn == nil || p.done {
		return
	}
	p.done = true
	if p.started && p.last >= 1 {
		return
	}
	p.last = 1
	p.fn(1, nodes)
}
