package passmgr

import (
	"fmt"
	"reflect"

	"github.com/joos1w/joosc/internal/arena"
	"github.com/joos1w/joosc/internal/diag"
)

// FatalError is raised for programmer errors per spec §7: cyclic pass
// dependency, heap use-after-destroy, multiple passes of a requested type,
// a missing required pass. The manager panics with a FatalError; callers at
// the CLI boundary recover and print it, since these indicate a bug in pass
// wiring rather than a user-facing diagnostic.
type FatalError struct{ Msg string }

func (e *FatalError) Error() string { return e.Msg }

func fatalf(format string, args ...any) {
	panic(&FatalError{Msg: fmt.Sprintf(format, args...)})
}

type heapRecord struct {
	heap     *arena.Heap
	owner    Pass
	refCount int
}

type passRecord struct {
	pass      Pass
	state     state
	enabled   bool
	preserved bool
	indegree  int
	// dependents are passes that declared a dependency on this one, i.e.
	// edges this -> dependent in the DAG.
	dependents []Pass
}

// Manager runs a fixed set of registered passes in dependency order. See
// Run for the exact five-phase algorithm (propagate, register, toposort,
// cycle-check, execute) mirrored from original_source/PassManager.cc.
type Manager struct {
	order      []Pass // registration order; used to break toposort ties
	records    map[Pass]*passRecord
	pool       *arena.Pool
	heaps      []*heapRecord
	diagEngine *diag.Engine

	// currentPass/phase are set only while invoking a pass's
	// ComputeDependency, so Require can dispatch by phase.
	currentPass Pass
	phase       state
}

// NewManager returns a manager with no registered passes.
func NewManager(diagEngine *diag.Engine) *Manager {
	return &Manager{
		records:    make(map[Pass]*passRecord),
		pool:       arena.NewPool(),
		diagEngine: diagEngine,
	}
}

// AddPass registers p and calls its Init hook.
func (pm *Manager) AddPass(p Pass) {
	if _, dup := pm.records[p]; dup {
		fatalf("pass %q registered twice", p.Name())
	}
	pm.order = append(pm.order, p)
	pm.records[p] = &passRecord{pass: p, state: stateUninitialized}
	p.Init(pm)
}

// Enable marks pass name as requested via the CLI's -p/--passes option
// (spec §6). Passes not named here, and not transitively required by a
// named pass, default to disabled (spec §6: "if omitted, all passes default
// to disabled").
func (pm *Manager) Enable(name string) {
	for _, p := range pm.order {
		if p.Name() == name {
			pm.records[p].enabled = true
			return
		}
	}
	fatalf("unknown pass requested: %q", name)
}

// Preserve marks p's heaps (and, transitively, every heap of a pass p
// depends on) as exempt from recycling at cleanup. See §13's Open Question
// decision: preserve is transitive over the dependency graph.
func (pm *Manager) Preserve(p Pass) {
	rec, ok := pm.records[p]
	if !ok {
		fatalf("Preserve called on an unregistered pass")
	}
	rec.preserved = true
}

// NewHeap requests a new heap on behalf of the currently running pass. The
// manager prefers a pooled free heap; otherwise it allocates a fresh one.
func (pm *Manager) NewHeap() *arena.Heap {
	if pm.currentPass == nil {
		fatalf("NewHeap called outside of a running pass")
	}
	h := pm.pool.Acquire()
	pm.heaps = append(pm.heaps, &heapRecord{heap: h, owner: pm.currentPass, refCount: 1})
	return h
}

// Require is called from within a pass's ComputeDependency to declare a
// dependency on target. Its effect depends on which phase the manager is
// currently running:
//   - enable propagation: enables target if it wasn't already (monotonic).
//   - dependency registration: records the edge target -> self and bumps
//     the ref-count of every heap target owns.
//   - cleanup: decrements the ref-count of every heap target owns, freeing
//     any that reach zero back to the pool (unless target is preserved).
func (pm *Manager) Require(target Pass) {
	self := pm.currentPass
	if self == nil {
		fatalf("Require called outside of ComputeDependency")
	}
	targetRec, ok := pm.records[target]
	if !ok {
		fatalf("Require: target pass %q is not registered", target.Name())
	}

	switch pm.phase {
	case statePropagateEnabled:
		if !targetRec.enabled {
			targetRec.enabled = true
		}
	case stateRegisterDependencies:
		selfRec := pm.records[self]
		selfRec.indegree++
		targetRec.dependents = append(targetRec.dependents, self)
		for _, hr := range pm.heaps {
			if hr.owner == target {
				hr.refCount++
			}
		}
	case stateCleanup:
		for _, hr := range pm.heaps {
			if hr.owner == target {
				hr.refCount--
				if hr.refCount == 0 && !targetRec.preserved {
					pm.pool.Release(hr.heap)
				}
			}
		}
	default:
		fatalf("Require called outside a valid dependency-computation phase")
	}
}

// findUniquePass returns the unique registered instance of type T, or
// fatals if there is none or more than one (spec §7's "multiple passes of
// a requested type" / "missing required pass" fatal errors).
func findUniquePass[T Pass](pm *Manager) T {
	want := reflect.TypeOf((*T)(nil)).Elem()
	var matches []Pass
	for _, p := range pm.order {
		if reflect.TypeOf(p) == want {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		fatalf("no registered pass of type %s", want)
	}
	if len(matches) > 1 {
		fatalf("multiple registered passes of type %s", want)
	}
	return matches[0].(T)
}

// GetPass returns the unique registered instance of type T. Requesting a
// pass that has not reached the Valid state is a fatal error (spec §4.2);
// this is the "Analysis lookup" a running pass uses to read another pass's
// results, so it is only ever safe to call from within Run().
func GetPass[T Pass](pm *Manager) T {
	p := findUniquePass[T](pm)
	rec := pm.records[p]
	if rec.state != stateValid {
		fatalf("pass %q requested via GetPass is not Valid", p.Name())
	}
	return p
}

// LookupPass returns the unique registered instance of type T regardless of
// its lifecycle state. Unlike GetPass, this does not require target to be
// Valid: it is meant for a pass's ComputeDependency, which declares
// dependencies (via Require) during the enable-propagation and
// dependency-registration phases, long before any pass has run (spec
// §4.2's phases 1-2) — GetPass's Valid check would fatal on every such
// call, since nothing is Valid yet at that point in the algorithm.
func LookupPass[T Pass](pm *Manager) T {
	return findUniquePass[T](pm)
}

// propagateEnabled runs phase 1: repeatedly invoke ComputeDependency on
// every pass while in statePropagateEnabled, until no pass becomes newly
// enabled. Termination is guaranteed because enabling is monotonic and the
// pass set is finite.
func (pm *Manager) propagateEnabled() {
	pm.phase = statePropagateEnabled
	for {
		changed := false
		for _, p := range pm.order {
			rec := pm.records[p]
			if !rec.enabled {
				continue
			}
			before := pm.countEnabled()
			pm.currentPass = p
			p.ComputeDependency()
			pm.currentPass = nil
			if pm.countEnabled() != before {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

func (pm *Manager) countEnabled() int {
	n := 0
	for _, rec := range pm.records {
		if rec.enabled {
			n++
		}
	}
	return n
}

// Run executes the manager's full algorithm: enable propagation, dependency
// registration with heap ref-counting, Kahn's topological sort, cycle
// detection, and serial execution with per-pass cleanup. It returns an
// error when a pass goes Invalid, either because its Run returned an error
// or because diagnostic errors were reported; fatal
// conditions panic with *FatalError, matching spec §7's distinction between
// recoverable diagnostics and programmer errors.
func (pm *Manager) Run() error {
	pm.propagateEnabled()

	// Phase 2: dependency registration.
	pm.phase = stateRegisterDependencies
	for _, p := range pm.order {
		rec := pm.records[p]
		if !rec.enabled {
			continue
		}
		rec.state = stateRegisterDependencies
		pm.currentPass = p
		p.ComputeDependency()
		pm.currentPass = nil
	}

	// Phase 3: Kahn's algorithm.
	order := pm.kahnOrder()

	// Phase 4: cycle check.
	numEnabled := pm.countEnabled()
	if len(order) != numEnabled {
		fatalf("cyclic pass dependency")
	}

	// Per §9's Open Question decision (preserve is transitive): before any
	// cleanup runs, propagate every preserved pass's mark backward across
	// the dependency edges it sits on, so a heap an ancestor still needs
	// is never recycled out from under it.
	pm.propagatePreserve()

	// Phase 5: serial execution with cleanup.
	for _, p := range order {
		rec := pm.records[p]
		rec.state = stateRunning
		pm.currentPass = p
		err := p.Run()
		pm.currentPass = nil
		if err != nil {
			rec.state = stateInvalid
			return err
		}
		if pm.diagEngine.HasErrors() {
			rec.state = stateInvalid
			return fmt.Errorf("pass %q produced diagnostic errors", p.Name())
		}
		rec.state = stateCleanup
		pm.phase = stateCleanup
		pm.currentPass = p
		p.ComputeDependency()
		pm.currentPass = nil
		rec.state = stateValid
	}
	return nil
}

// propagatePreserve marks, for every already-preserved pass, every pass it
// transitively depends on as preserved too. A pass's dependencies are
// recovered from the reverse of the dependents edges recorded during phase
// 2: if p appears in target's dependents list, p depends on target.
func (pm *Manager) propagatePreserve() {
	deps := make(map[Pass][]Pass)
	for _, target := range pm.order {
		for _, dependent := range pm.records[target].dependents {
			deps[dependent] = append(deps[dependent], target)
		}
	}
	var markDeps func(p Pass)
	markDeps = func(p Pass) {
		for _, dep := range deps[p] {
			rec := pm.records[dep]
			if !rec.preserved {
				rec.preserved = true
				markDeps(dep)
			}
		}
	}
	for _, p := range pm.order {
		if pm.records[p].preserved {
			markDeps(p)
		}
	}
}

// kahnOrder runs Kahn's algorithm over the enabled subgraph, breaking ties
// by registration order (spec §5: "ties are broken by insertion order").
func (pm *Manager) kahnOrder() []Pass {
	indeg := make(map[Pass]int)
	for _, p := range pm.order {
		rec := pm.records[p]
		if rec.enabled {
			indeg[p] = rec.indegree
		}
	}
	var ready []Pass
	for _, p := range pm.order {
		if _, ok := indeg[p]; ok && indeg[p] == 0 {
			ready = append(ready, p)
		}
	}

	var out []Pass
	for len(ready) > 0 {
		p := ready[0]
		ready = ready[1:]
		out = append(out, p)
		for _, dep := range pm.records[p].dependents {
			if _, ok := indeg[dep]; !ok {
				continue
			}
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	return out
}
