package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/goldsniper/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ROUTER - Fans each tick report out to the registered sinks
// ═══════════════════════════════════════════════════════════════════════════════

// Sink consumes tick reports. OnReport runs on the engine goroutine and must
// not block for long.
type Sink interface {
	Name() string
	OnReport(r *types.Report)
}

type Router struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewRouter creates a new report router
func NewRouter(sinks ...Sink) *Router {
	r := &Router{}
	for _, s := range sinks {
		r.Subscribe(s)
	}
	return r
}

// Subscribe registers a sink; nil sinks are ignored
func (r *Router) Subscribe(s Sink) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, s)
	log.Debug().Str("sink", s.Name()).Msg("Sink subscribed")
}

// Route delivers a report to every sink in registration order. A panicking
// sink is logged and skipped so the loop keeps ticking.
func (r *Router) Route(report *types.Report) {
	r.mu.RLock()
	sinks := make([]Sink, len(r.sinks))
	copy(sinks, r.sinks)
	r.mu.RUnlock()

	for _, s := range sinks {
		deliver(s, report)
	}
}

func deliver(s Sink, report *types.Report) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("sink", s.Name()).Msg("Sink panicked")
		}
	}()
	s.OnReport(report)
}

// Len returns the number of sinks
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}
