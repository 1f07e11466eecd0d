package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gookit/color"
	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-taint-trace/pkg/rules"
)

// report is the serialized result of a scan.
type report struct {
	Issues []*rules.Issue `json:"issues" yaml:"issues"`
	Stats  reportStats    `json:"stats" yaml:"stats"`
}

type reportStats struct {
	Files  int `json:"files" yaml:"files"`
	Issues int `json:"issues" yaml:"issues"`
}

func writeIssues(w io.Writer, format string, issues []*rules.Issue, base string, files int, colors bool) error {
	for _, is := range issues {
		if rel, err := filepath.Rel(base, is.File); err == nil {
			is.File = rel
		}
		for i, step := range is.Trace {
			if step.File == "" {
				continue
			}
			if rel, err := filepath.Rel(base, step.File); err == nil {
				is.Trace[i].File = rel
			}
		}
	}
	r := report{Issues: issues, Stats: reportStats{Files: files, Issues: len(issues)}}
	if r.Issues == nil {
		r.Issues = []*rules.Issue{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	writeText(w, r, colors)
	return nil
}

func writeText(w io.Writer, r report, colors bool) {
	paint := func(c color.Color, s string) string {
		if !colors {
			return s
		}
		return c.Render(s)
	}
	for _, is := range r.Issues {
		fmt.Fprintf(w, "[%s] - %s (Severity: %s)\n",
			is.FileLocation(), paint(color.FgLightWhite, is.RuleID), paint(severityColor(is.Severity), is.Severity.String()))
		fmt.Fprintf(w, "    %s\n", is.What)
		if is.Code != "" {
			fmt.Fprintf(w, "  > %s\n", paint(color.FgDarkGray, is.Code))
		}
		for depth, step := range is.Trace {
			loc := step.File
			if loc == "" {
				loc = "<stdin>"
			}
			fmt.Fprintf(w, "%*s%s  %s:%d:%d\n", depth*2+4, "", step.Label, loc, step.Line, step.Column)
		}
		fmt.Fprintln(w)
	}
	summary := fmt.Sprintf("Summary:\n  Files: %d\n  Issues: %d", r.Stats.Files, r.Stats.Issues)
	if r.Stats.Issues > 0 {
		fmt.Fprintln(w, paint(color.FgRed, summary))
	} else {
		fmt.Fprintln(w, paint(color.FgGreen, summary))
	}
}

func severityColor(s rules.Severity) color.Color {
	switch s {
	case rules.High:
		return color.FgRed
	case rules.Medium:
		return color.FgYellow
	}
	return color.FgCyan
}
