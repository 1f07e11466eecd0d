package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-taint-trace/internal/log"
	"github.com/l3aro/go-taint-trace/internal/scanner"
	"github.com/l3aro/go-taint-trace/pkg/rules"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Run the security detectors over a project",
	Long: `Finds JavaScript and TypeScript sources under path (default: the current
directory), honoring .gttignore files, and reports every sink an untrusted or
hard-coded value can reach.

Rules:
  xss                     untrusted data written as HTML
  sqli                    SQL text built from untrusted data
  hardcoded-credentials   high entropy literals assigned to secrets
  weak-cipher             broken cipher and hash algorithms
  path-traversal          file system paths built from untrusted data

Exits with status 1 when issues are found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		format, _ := cmd.Flags().GetString("format")
		if cmd.Flags().Changed("rules") {
			cfg.Rules, _ = cmd.Flags().GetStringSlice("rules")
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers, _ = cmd.Flags().GetInt("workers")
		}
		switch format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
		}
		if cfg.Workers < 1 {
			return fmt.Errorf("workers must be positive")
		}

		selected, err := rules.Select(cfg.Rules)
		if err != nil {
			return err
		}

		paths, base, err := discover(root)
		if err != nil {
			return err
		}

		e := newEngine()
		defer e.close()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		progress := log.NewProgress("scanning", len(paths))
		runner := rules.NewRunner(rules.Options{
			Rules:   selected,
			Tracer:  e.tracer,
			Loader:  e.loader,
			Workers: cfg.Workers,
			Logger:  e.log,
			OnFile:  func(string) { progress.Step() },
		})
		issues, err := runner.Scan(ctx, paths)
		progress.Done()
		if err != nil {
			return err
		}
		e.log.Debug("scan finished", "files", len(paths), "issues", len(issues))

		if err := writeIssues(os.Stdout, format, issues, base, len(paths), useColors()); err != nil {
			return err
		}
		if len(issues) > 0 {
			return ErrIssuesFound
		}
		return nil
	},
}

// discover returns the sources to scan and the directory paths are shown
// relative to.
func discover(root string) ([]string, string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, "", fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, "", err
		}
		return []string{abs}, filepath.Dir(abs), nil
	}

	opts := scanner.DefaultOptions()
	opts.Extensions = cfg.Extensions
	opts.Exclude = cfg.Exclude
	files, err := scanner.New(opts).Scan(root)
	if err != nil {
		return nil, "", fmt.Errorf("scanning %s: %w", root, err)
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.FullPath
	}
	base, err := filepath.Abs(root)
	if err != nil {
		return nil, "", err
	}
	return paths, base, nil
}

func init() {
	scanCmd.Flags().StringSlice("rules", nil, "Comma separated rule IDs to run (default: all)")
	scanCmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
	scanCmd.Flags().IntP("workers", "w", 0, "Files scanned in parallel (default from config)")
}
