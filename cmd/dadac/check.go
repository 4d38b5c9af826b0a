package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"surge/internal/diagfmt"
	"surge/internal/driver"
	"surge/internal/querycache"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a source file's types and permissions",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("cache", "", "path to a querycache database persisting check summaries across runs (disabled if empty)")
	checkCmd.Flags().String("cache-policy", "", "path to a YAML cache eviction policy sidecar (defaults if empty)")
}

func runCheck(cmd *cobra.Command, args []string) error {
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
	if resolved.Bag.HasErrors() {
		diagfmt.Pretty(os.Stderr, resolved.Bag, parsed.FileSet, prettyOpts)
		return fmt.Errorf("resolving %s failed", filePath)
	}

	result := driver.Check(parsed, resolved, maxDiagnostics)
	if result.Bag.HasErrors() || result.Bag.HasWarnings() {
		diagfmt.Pretty(os.Stderr, result.Bag, parsed.FileSet, prettyOpts)
	}
	if result.Bag.HasErrors() {
		return fmt.Errorf("checking %s failed", filePath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "checked %s: %d function body/bodies, no permission errors\n",
		filePath, len(result.Bodies))

	if err := recordCacheSummary(cmd, filePath, parsed, result); err != nil {
		// The cache is a durability convenience, not load-bearing for
		// correctness — a cache write failure is reported but never fails
		// an otherwise-successful check.
		fmt.Fprintf(os.Stderr, "dadac: warning: %v\n", err)
	}
	return nil
}

// recordCacheSummary persists this run's outcome to the querycache database
// named by --cache, if any, keyed by the checked file's path and tagged
// with a fresh session id. It reports whether the file's content changed
// since the last recorded check, then applies the cache's eviction policy.
func recordCacheSummary(cmd *cobra.Command, filePath string, parsed *driver.ParseResult, result *driver.CheckResult) error {
	cachePath, err := cmd.Flags().GetString("cache")
	if err != nil || cachePath == "" {
		return nil
	}

	store, err := querycache.Open(cachePath)
	if err != nil {
		return err
	}
	defer store.Close()

	policyPath, _ := cmd.Flags().GetString("cache-policy")
	if policyPath == "" {
		policyPath = cachePath + ".policy.yaml"
	}
	policy, err := querycache.LoadPolicy(policyPath)
	if err != nil {
		return err
	}

	key, err := filepath.Abs(filePath)
	if err != nil {
		key = filePath
	}
	hash := hex.EncodeToString(parsed.File.Hash[:])

	prev, found, err := store.Get("check", key)
	if err != nil {
		return err
	}

	rec, err := store.Put("check", key, querycache.Record{
		ContentHash: hash,
		ItemCount:   len(result.Bodies),
		ErrorCount:  result.Bag.Len(),
	})
	if err != nil {
		return err
	}

	if found && prev.ContentHash == hash {
		fmt.Fprintf(cmd.OutOrStdout(), "querycache: unchanged since session %s\n", prev.Session)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "querycache: recorded session %s\n", rec.Session)
	}

	return store.Evict(policy)
}
