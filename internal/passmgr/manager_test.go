package passmgr

import (
	"testing"

	"github.com/joos1w/joosc/internal/diag"
	"github.com/stretchr/testify/require"
)

// fakePass is a minimal Pass for exercising the manager's scheduling
// algorithm independent of any real compiler pass.
type fakePass struct {
	name    string
	needs   []*fakePass
	ran     *[]string
	pm      *Manager
	runErr  error
}

func (f *fakePass) Name() string { return f.name }
func (f *fakePass) Desc() string { return "fake pass for tests" }
func (f *fakePass) Init(pm *Manager) { f.pm = pm }
func (f *fakePass) ComputeDependency() {
	for _, n := range f.needs {
		f.pm.Require(n)
	}
}
func (f *fakePass) Run() error {
	*f.ran = append(*f.ran, f.name)
	return f.runErr
}

func TestPassOrderingWithPropagation(t *testing.T) {
	var ran []string
	a := &fakePass{name: "A", ran: &ran}
	b := &fakePass{name: "B", ran: &ran, needs: []*fakePass{a}}

	pm := NewManager(diag.New())
	pm.AddPass(a)
	pm.AddPass(b)
	pm.Enable("B") // only B requested; A must be enabled by propagation

	require.NoError(t, pm.Run())
	require.Equal(t, []string{"A", "B"}, ran)
}

func TestCyclicDependencyFails(t *testing.T) {
	var ran []string
	a := &fakePass{name: "A", ran: &ran}
	c := &fakePass{name: "C", ran: &ran}
	a.needs = []*fakePass{c}
	c.needs = []*fakePass{a}

	pm := NewManager(diag.New())
	pm.AddPass(a)
	pm.AddPass(c)
	pm.Enable("A")
	pm.Enable("C")

	require.Panics(t, func() { _ = pm.Run() })
}

func TestDiamondDependencyNoCycle(t *testing.T) {
	var ran []string
	a := &fakePass{name: "A", ran: &ran}
	b := &fakePass{name: "B", ran: &ran, needs: []*fakePass{a}}
	c := &fakePass{name: "C", ran: &ran, needs: []*fakePass{a, b}}

	pm := NewManager(diag.New())
	pm.AddPass(a)
	pm.AddPass(b)
	pm.AddPass(c)
	pm.Enable("C")

	require.NoError(t, pm.Run())
	require.Equal(t, []string{"A", "B", "C"}, ran)
}
