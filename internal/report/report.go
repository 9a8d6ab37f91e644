// Package report aggregates the findings of one run and renders them for the
// operator.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/docwarden/internal/models"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("report: unknown format %q", s)
	}
}

// Report is the outcome of one pass over the document graph.
type Report struct {
	Title     string
	Root      string
	Documents int
	// Strict promotes warnings to failures.
	Strict   bool
	Findings []models.Finding
}

// Errors counts error-level findings.
func (r *Report) Errors() int { return r.count(models.SeverityError) }

// Warnings counts warning-level findings.
func (r *Report) Warnings() int { return r.count(models.SeverityWarning) }

// Failed reports whether the run should exit non-zero.
func (r *Report) Failed() bool {
	return r.Errors() > 0 || (r.Strict && r.Warnings() > 0)
}

func (r *Report) count(s models.Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

type summary struct {
	Title     string           `json:"title" yaml:"title"`
	Root      string           `json:"root" yaml:"root"`
	Documents int              `json:"documents" yaml:"documents"`
	Errors    int              `json:"errors" yaml:"errors"`
	Warnings  int              `json:"warnings" yaml:"warnings"`
	Strict    bool             `json:"strict" yaml:"strict"`
	Failed    bool             `json:"failed" yaml:"failed"`
	Findings  []models.Finding `json:"findings" yaml:"findings"`
}

func (r *Report) summary() summary {
	findings := r.Findings
	if findings == nil {
		findings = []models.Finding{}
	}
	return summary{
		Title:     r.Title,
		Root:      r.Root,
		Documents: r.Documents,
		Errors:    r.Errors(),
		Warnings:  r.Warnings(),
		Strict:    r.Strict,
		Failed:    r.Failed(),
		Findings:  findings,
	}
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.summary())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.summary()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderText(w, r)
	}
}

func renderText(w io.Writer, r *Report) error {
	var b strings.Builder
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", rule, r.Title, rule)

	errs, warns := r.Errors(), r.Warnings()
	if !r.Failed() {
		b.WriteString("[+] VALIDATION PASSED\n")
		fmt.Fprintf(&b, "    Checked %d documents\n", r.Documents)
		if warns > 0 {
			fmt.Fprintf(&b, "    %d warning(s) found (not treated as errors)\n", warns)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	if errs > 0 {
		fmt.Fprintf(&b, "[X] VALIDATION FAILED: %d error(s) found\n\n", errs)
	} else {
		fmt.Fprintf(&b, "[X] VALIDATION FAILED: %d warning(s) treated as errors\n\n", warns)
	}

	for _, group := range groupByPath(r.Findings) {
		fmt.Fprintf(&b, "File: %s\n", group.path)
		for _, f := range group.findings {
			symbol := "[X]"
			if f.Severity == models.SeverityWarning {
				symbol = "[!]"
			}
			fmt.Fprintf(&b, "  %s %s: %s\n", symbol, strings.ToUpper(string(f.Severity)), f.Category)
			fmt.Fprintf(&b, "      Issue: %s\n", f.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "  Documents checked: %d\n", r.Documents)
	fmt.Fprintf(&b, "  Errors: %d\n", errs)
	fmt.Fprintf(&b, "  Warnings: %d\n", warns)
	if r.Strict && warns > 0 {
		b.WriteString("\n[X] Strict mode: treating warnings as errors\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type pathGroup struct {
	path     string
	findings []models.Finding
}

// groupByPath keeps the order in which paths first appear.
func groupByPath(findings []models.Finding) []pathGroup {
	idx := make(map[string]int)
	var out []pathGroup
	for _, f := range findings {
		i, ok := idx[f.Path]
		if !ok {
			i = len(out)
			idx[f.Path] = i
			out = append(out, pathGroup{path: f.Path})
		}
		out[i].findings = append(out[i].findings, f)
	}
	return out
}
