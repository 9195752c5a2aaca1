package cache

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Build phases, in the order they are reported.
const (
	PhaseFit     = "fit"
	PhaseEncode  = "encode"
	PhasePersist = "persist"
)

// buildReport writes one line per build phase. The encode line is redrawn
// in place as courses are encoded. All methods are no-ops on a nil report.
type buildReport struct {
	mu       sync.Mutex
	w        io.Writer
	courses  int
	interval int

	started      time.Time
	phaseStarted time.Time
	maxDone      int  // highest done count seen
	drawn        int  // done count on the last redraw
	open         bool // encode line lacks its newline
}

// newBuildReport returns nil when w is nil.
func newBuildReport(w io.Writer, courses, interval int) *buildReport {
	if w == nil {
		return nil
	}
	if interval < 1 {
		interval = 1
	}
	now := time.Now()
	return &buildReport{
		w:            w,
		courses:      courses,
		interval:     interval,
		started:      now,
		phaseStarted: now,
	}
}

func (r *buildReport) fitted(terms int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s: %d courses, %d terms (%s)\n", PhaseFit, r.courses, terms, r.lap())
}

// encoded takes the absolute number of encoded courses. Workers may
// deliver counts out of order.
func (r *buildReport) encoded(done int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if done <= r.maxDone {
		return
	}
	r.maxDone = done
	if done-r.drawn < r.interval && done < r.courses {
		return
	}
	r.drawn = done

	percentage := 100.0
	if r.courses > 0 {
		percentage = float64(done) / float64(r.courses) * 100.0
	}
	fmt.Fprintf(r.w, "\r%s: %d/%d courses (%.1f%%)", PhaseEncode, done, r.courses, percentage)
	r.open = true
	if done >= r.courses {
		fmt.Fprintf(r.w, " (%s)\n", r.lap())
		r.open = false
	}
}

func (r *buildReport) persisted(attempts int, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeLine()
	if err != nil {
		fmt.Fprintf(r.w, "%s: failed after %d attempt(s) (%s): %v\n", PhasePersist, attempts, ClassifySaveError(err), err)
		return
	}
	fmt.Fprintf(r.w, "%s: saved in %d attempt(s) (%s)\n", PhasePersist, attempts, r.lap())
}

// finish ends any pending encode line and writes the outcome of the build.
func (r *buildReport) finish(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeLine()
	elapsed := time.Since(r.started).Round(time.Microsecond)
	if err != nil {
		fmt.Fprintf(r.w, "build: failed after %s: %v\n", elapsed, err)
		return
	}
	fmt.Fprintf(r.w, "build: done in %s\n", elapsed)
}

// closeLine must be called with r.mu held.
func (r *buildReport) closeLine() {
	if r.open {
		fmt.Fprintln(r.w)
		r.open = false
	}
}

// lap returns the duration of the current phase and starts the next one.
// Must be called with r.mu held.
func (r *buildReport) lap() time.Duration {
	now := time.Now()
	d := now.Sub(r.phaseStarted)
	r.phaseStarted = now
	return d.Round(time.Microsecond)
}
