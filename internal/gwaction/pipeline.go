// Package gwaction implements the action base (C3): an ordered list of
// stages driven by a cursor, with no policy on how a stage reports success
// or failure. The convention, followed by gwputpart, is that a stage either
// calls Next on success or jumps straight to the response-emission stage on
// failure, short-circuiting whatever stages remain.
package gwaction

import (
	"context"
	"sync"
)

// Stage is one step of a pipeline. A stage is free to do its work
// asynchronously (spawn a goroutine, register a callback) and call the
// pipeline's Next or Done from wherever that work eventually completes;
// Stage itself takes no arguments and returns nothing, matching the
// continuation style this package generalizes.
type Stage func()

// Pipeline holds an ordered list of stages, a cursor into that list, and the
// request id under which it is registered. It owns no request state itself;
// callers embed Pipeline into their own action type and add stages that
// close over that action's fields.
type Pipeline struct {
	mu        sync.Mutex
	stages    []Stage
	cursor    int
	requestID string
	done      bool
}

// NewPipeline returns an empty pipeline for the given request id and
// registers it in the process-wide Registry. Callers must call AddTask for
// every stage before calling Start.
func NewPipeline(requestID string) *Pipeline {
	p := &Pipeline{requestID: requestID}
	defaultRegistry.register(p)
	return p
}

// AddTask appends a stage. Only valid before Start; every caller wires up
// its full step list during construction and never appends afterward.
func (p *Pipeline) AddTask(s Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, s)
}

// Start invokes the first stage. No-op on an empty pipeline.
func (p *Pipeline) Start(_ context.Context) {
	p.mu.Lock()
	stages := p.stages
	p.mu.Unlock()
	if len(stages) == 0 {
		return
	}
	stages[0]()
}

// Next advances the cursor and invokes the next stage. When the cursor
// passes the end of the stage list the pipeline is implicitly complete;
// callers reaching the end of the stage graph without an explicit
// short-circuit rely on the final stage calling Done itself.
func (p *Pipeline) Next() {
	p.mu.Lock()
	p.cursor++
	cursor := p.cursor
	stages := p.stages
	p.mu.Unlock()

	if cursor >= len(stages) {
		return
	}
	stages[cursor]()
}

// Done marks the pipeline complete and removes it from the registry.
// Exactly one of Done or an abandoned (never-completing) pipeline may exist
// per request id; every stage graph in this repo ends by calling Done from
// its response-emission stage.
func (p *Pipeline) Done() {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.mu.Unlock()

	defaultRegistry.remove(p.requestID)
}

// IsDone reports whether Done has already fired.
func (p *Pipeline) IsDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// RequestID returns the request id this pipeline is registered under.
func (p *Pipeline) RequestID() string {
	return p.requestID
}
