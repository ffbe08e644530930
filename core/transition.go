package core

import (
	"sync"

	"github.com/web3guy0/goldsniper/strategy"
	"github.com/web3guy0/goldsniper/types"
)

// TransitionFilter lets sinks react to status changes instead of every tick.
// Unavailable reports never count as a change.
type TransitionFilter struct {
	mu   sync.Mutex
	seen bool
	last strategy.Status
}

// Changed reports whether r carries a different status than the previous
// available report. A signal or watch whose magnitude escalates within the
// same kind is not a change.
func (t *TransitionFilter) Changed(r *types.Report) bool {
	if r == nil || !r.Available {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st := r.Status()
	if t.seen && st.Kind == t.last.Kind {
		return false
	}
	t.seen = true
	t.last = st
	return true
}

// Last returns the most recent status seen
func (t *TransitionFilter) Last() strategy.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
