// Package task defines the lifecycle-hook contract the dispatcher
// drives (spec C5), the capability-interface reading of the Python
// Task base class described in the Design Notes ("Stateful Task
// inheritance -> trait/interface with lifecycle hooks").
package task

import (
	"github.com/rs/zerolog/log"

	"walksat/internal/transport"
)

// Task is implemented by the user code plugged into the dispatcher.
// Produce, Consume, and Apply are pure contract with no default;
// Setup, Finalize, SetupWorker, and FinalizeWorker are optional and
// default to a no-op warning via DefaultHooks, mirroring the Python
// base class's "WARNING: ... has not been implemented" prints.
type Task interface {
	// Setup runs once on the master before any item is produced.
	Setup(comm transport.Comm)
	// Produce returns a channel the task populates with work items and
	// closes once exhausted. The task owns the goroutine (if any) that
	// feeds it.
	Produce() <-chan any
	// Consume is called once per result, in arrival order, only ever
	// from the dispatcher's recv stage (sequential mode: inline).
	Consume(result any)
	// Finalize runs once on the master after all results are consumed.
	Finalize()

	// SetupWorker runs once per worker before its first Apply.
	SetupWorker(comm transport.Comm)
	// Apply computes a result for one work item. Pure: no mutation of
	// master-owned state, no communication with other workers.
	Apply(item any) (any, error)
	// FinalizeWorker runs once per worker after its last Apply.
	FinalizeWorker()
}

// DefaultHooks implements the four optional lifecycle hooks as no-ops
// that log a warning, so concrete Tasks can embed it and only
// implement Produce/Consume/Apply.
type DefaultHooks struct {
	Name string // used in the warning message; defaults to "task" if empty
}

func (d DefaultHooks) label() string {
	if d.Name == "" {
		return "task"
	}
	return d.Name
}

func (d DefaultHooks) Setup(comm transport.Comm) {
	log.Warn().Str("task", d.label()).Msg("Setup not implemented")
}

func (d DefaultHooks) Finalize() {
	log.Warn().Str("task", d.label()).Msg("Finalize not implemented")
}

func (d DefaultHooks) SetupWorker(comm transport.Comm) {
	log.Warn().Str("task", d.label()).Msg("SetupWorker not implemented")
}

func (d DefaultHooks) FinalizeWorker() {
	log.Warn().Str("task", d.label()).Msg("FinalizeWorker not implemented")
}
