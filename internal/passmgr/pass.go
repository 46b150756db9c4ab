// Package passmgr implements the Pass Manager (C2): a dependency-ordered,
// heap-pooled execution engine for compiler passes. It is grounded on
// original_source/lib/utils/PassManager.{h,cc} (the state machine, the
// ComputeDependency triple-purpose dispatch, Kahn's algorithm for
// scheduling) and borrows its naming and doc-comment habits from the
// teacher's internal/semantic/pass.go (Pass interface, Name()) and
// internal/semantic/passes/declaration_pass.go (long structured doc
// comments on pass types).
package passmgr

import "github.com/joos1w/joosc/internal/diag"

// state is a pass's position in its private lifecycle. It is unexported:
// only the manager drives transitions.
type state int

const (
	stateUninitialized state = iota
	statePropagateEnabled
	stateRegisterDependencies
	stateRunning
	stateCleanup
	stateValid
	stateInvalid
)

// Pass is a named unit of compiler work. Implementations declare their
// dependencies from within ComputeDependency by calling back into the
// Manager passed to Init; the manager invokes ComputeDependency multiple
// times, in different states, for different purposes (see Manager.Run).
type Pass interface {
	// Name returns the pass's unique, CLI-addressable name.
	Name() string
	// Desc returns a one-line human description, used by -p/--passes help.
	Desc() string
	// Init is called once, before any dependency computation, with the
	// manager the pass belongs to.
	Init(pm *Manager)
	// ComputeDependency is invoked once per relevant manager phase. Its
	// effect depends on the manager's current phase (enable propagation,
	// dependency registration, or cleanup); passes do not need to know
	// which phase is active — they simply call pm.Require(other) for every
	// pass whose results they use, and pm dispatches accordingly.
	ComputeDependency()
	// Run executes the pass. Errors reported to the diagnostic engine mark
	// the pass Invalid; so does a non-nil returned error, which Manager.Run
	// returns as-is without running any later pass.
	Run() error
}

// heapOwner is implemented by passes that hold heaps the manager must be
// able to release during cleanup. Passes that don't allocate arenas need
// not implement it.
type heapOwner interface {
	Heaps() []int // indices into Manager.heaps owned by this pass
}

// Diag returns the shared diagnostic engine for a pass to report into.
func (pm *Manager) Diag() *diag.Engine {
	return pm.diagEngine
}
