package gwaction

import "sync"

// Registry owns every in-flight pipeline, keyed by request id. The original
// action base frees itself (i_am_done()) once its response is sent; a Go
// action cannot free itself, so instead a process-wide Registry holds the
// reference and Pipeline.Done drops it, making the request id the single
// thing a caller needs to look up, cancel, or inspect an in-flight action.
type Registry struct {
	mu        sync.Mutex
	pipelines map[string]*Pipeline
}

var defaultRegistry = &Registry{pipelines: make(map[string]*Pipeline)}

func (r *Registry) register(p *Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines[p.requestID] = p
}

func (r *Registry) remove(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pipelines, requestID)
}

// Lookup returns the pipeline registered under requestID, if any.
func Lookup(requestID string) (*Pipeline, bool) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	p, ok := defaultRegistry.pipelines[requestID]
	return p, ok
}

// InFlight returns the number of pipelines currently registered, for
// metrics and tests.
func InFlight() int {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	return len(defaultRegistry.pipelines)
}
