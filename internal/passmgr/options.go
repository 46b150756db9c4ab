package passmgr

import "github.com/spf13/pflag"

// PassOptions is the "pass options collaborator" spec §6 mentions: each
// named pass may register its own flags without the CLI package needing to
// know about them ahead of time. Grounded on original_source's PassOptions
// (a CLI::App wrapper owned by PassManager); here pflag.FlagSet plays the
// same role, since the teacher's own CLI is built on spf13/cobra, whose
// flag plumbing is spf13/pflag.
type PassOptions struct {
	sets map[string]*pflag.FlagSet
}

// NewPassOptions returns an empty pass-options registry.
func NewPassOptions() *PassOptions {
	return &PassOptions{sets: make(map[string]*pflag.FlagSet)}
}

// FlagSetFor returns (creating if necessary) the flag set a pass named name
// may register its own options into.
func (o *PassOptions) FlagSetFor(name string) *pflag.FlagSet {
	fs, ok := o.sets[name]
	if !ok {
		fs = pflag.NewFlagSet(name, pflag.ContinueOnError)
		o.sets[name] = fs
	}
	return fs
}

// Names returns every pass name that has registered at least one flag, in
// no particular order; callers needing a stable order should sort it.
func (o *PassOptions) Names() []string {
	names := make([]string, 0, len(o.sets))
	for n := range o.sets {
		names = append(names, n)
	}
	return names
}
