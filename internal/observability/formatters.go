// Package observability provides structured logging helpers and formatted
// output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/notice-extractor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResult outputs a human-readable summary of a pipeline run.
func (p *Printer) PrintResult(res *types.PipelineResult) {
	if res == nil {
		return
	}

	if !res.Success {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Stage:  %s\n", res.Stage))
		sb.WriteString(fmt.Sprintf("Error:  %s", res.Error))
		p.printBox("EXTRACTION FAILED", sb.String())
		return
	}

	p.PrintJobFields(res.Data)
	p.PrintConfidence(res.Confidence)
	p.PrintWarnings(res.Warnings)
}

// PrintJobFields outputs the headline fields and table sizes of a notice.
func (p *Printer) PrintJobFields(fields *types.JobFields) {
	if fields == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:         %s\n", fields.Title))
	sb.WriteString(fmt.Sprintf("Organization:  %s\n", fields.Organization))
	if fields.AdvertisementNumber != "" {
		sb.WriteString(fmt.Sprintf("Advt. No.:     %s\n", fields.AdvertisementNumber))
	}
	if fields.ImportantDates.ApplicationEnd != "" {
		sb.WriteString(fmt.Sprintf("Last date:     %s\n", fields.ImportantDates.ApplicationEnd))
	}
	sb.WriteString("\n")

	if len(fields.Vacancies) > 0 {
		sb.WriteString("Vacancies:\n")
		count := min(len(fields.Vacancies), maxItemsToShow)
		for i := 0; i < count; i++ {
			v := fields.Vacancies[i]
			sb.WriteString(fmt.Sprintf("  • %s", v.PostName))
			if v.Total != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", v.Total))
			}
			sb.WriteString("\n")
		}
		if len(fields.Vacancies) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(fields.Vacancies)-maxItemsToShow))
		}
	}

	sb.WriteString(fmt.Sprintf("Fee rows: %d  Stages: %d  Links: %d\n",
		len(fields.ApplicationFees), len(fields.SelectionStages), len(fields.Links)))

	p.printBox("EXTRACTED NOTICE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintConfidence outputs per-field confidence, lowest first.
func (p *Printer) PrintConfidence(confidence map[string]float64) {
	if len(confidence) == 0 {
		return
	}

	keys := make([]string, 0, len(confidence))
	for k := range confidence {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if confidence[keys[i]] == confidence[keys[j]] {
			return keys[i] < keys[j]
		}
		return confidence[keys[i]] < confidence[keys[j]]
	})

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%-28s %.2f\n", k, confidence[k]))
	}
	p.printBox("FIELD CONFIDENCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWarnings outputs the warning list, if any.
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}

	var sb strings.Builder
	for _, w := range warnings {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
	}
	p.printBox(fmt.Sprintf("WARNINGS (%d)", len(warnings)), strings.TrimSuffix(sb.String(), "\n"))
}
