package passes

import (
	"io"

	"github.com/joos1w/joosc/internal/passmgr"
)

// AsmWriter is the asm-writer client pass spec §6 mentions as the thing
// that serializes the TIR compilation unit "as a human-readable
// assembly-like text" when enabled. It is architecturally a pass-manager
// client per §1 (backend passes are in scope as clients, not individually
// specified), so it lives alongside the core passes here rather than in
// internal/codegen.
//
// Dependencies: CodeGen.
// Outputs: none retrievable through GetPass; it writes to out as a side
// effect, the same shape as a real backend's object-file writer.
type AsmWriter struct {
	pm  *passmgr.Manager
	out io.Writer
	// color, if set via the --asm-color pass option, wraps the dump in an
	// ANSI SGR pair. It demonstrates the per-pass options collaborator
	// spec §6 describes ("each named pass may carry its own options
	// registered through the pass options collaborator") without pulling
	// a terminal-color dependency into the core.
	color bool
}

// NewAsmWriter returns an AsmWriter that will print the lowered TIR to out.
func NewAsmWriter(out io.Writer) *AsmWriter {
	return &AsmWriter{out: out}
}

func (p *AsmWriter) Name() string { return "asm-writer" }
func (p *AsmWriter) Desc() string { return "print the TIR compilation unit as assembly-like text" }

func (p *AsmWriter) Init(pm *passmgr.Manager) {
	p.pm = pm
}

// RegisterOptions wires --asm-color into opts under this pass's name, per
// spec §6's pass-options collaborator.
func (p *AsmWriter) RegisterOptions(opts *passmgr.PassOptions) {
	fs := opts.FlagSetFor(p.Name())
	fs.BoolVar(&p.color, "asm-color", false, "wrap the asm dump in ANSI color codes")
}

func (p *AsmWriter) ComputeDependency() {
	p.pm.Require(passmgr.LookupPass[*CodeGen](p.pm))
}

func (p *AsmWriter) Run() error {
	unit := passmgr.GetPass[*CodeGen](p.pm).Unit()
	text := unit.String()
	if p.color {
		text = "\x1b[36m" + text + "\x1b[0m"
	}
	_, err := io.WriteString(p.out, text)
	return err
}
