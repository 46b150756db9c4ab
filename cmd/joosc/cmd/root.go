package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags, same pattern as the teacher's
	// cmd/dwscript/cmd/root.go.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var verbose int

var rootCmd = &cobra.Command{
	Use:     "joosc",
	Short:   "joosc compiler core driver",
	Version: Version,
	Long: `joosc drives the compiler core through its dependency-ordered pass
pipeline: name resolution, hierarchy checking, expression-name
classification, and lowering to the typed intermediate representation.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("joosc version %s (%s)\n", Version, GitCommit))
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase diagnostic verbosity (repeatable)")
}
