package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"surge/internal/diagfmt"
	"surge/internal/driver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Resolve a source file's declarations and report name-resolution diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	parsed, err := driver.Parse(filePath, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	prettyOpts, err := colorOpts(cmd)
	if err != nil {
		return err
	}

	if parsed.Bag.HasErrors() {
		diagfmt.Pretty(os.Stderr, parsed.Bag, parsed.FileSet, prettyOpts)
		return fmt.Errorf("parsing %s failed", filePath)
	}

	resolved := driver.Resolve(parsed, maxDiagnostics)
	if resolved.Bag.HasErrors() || resolved.Bag.HasWarnings() {
		diagfmt.Pretty(os.Stderr, resolved.Bag, parsed.FileSet, prettyOpts)
	}
	if resolved.Bag.HasErrors() {
		return fmt.Errorf("resolving %s failed", filePath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "resolved %s: %d item(s), %d expression symbol(s)\n",
		filePath, len(resolved.Result.ItemSymbols), len(resolved.Result.ExprSymbols))
	return nil
}

func colorOpts(cmd *cobra.Command) (diagfmt.PrettyOpts, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return diagfmt.PrettyOpts{}, err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr))
	return diagfmt.PrettyOpts{Color: useColor, Context: 2, ShowNotes: true, ShowFixes: true}, nil
}
