package markdown

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gocondprob/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Renderer formats ranked analyses as markdown tables and HTML pages
type Renderer struct{}

// NewRenderer creates a markdown report renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

var columns = []struct {
	title   string
	measure stats.Measure
}{
	{"Binary EO", stats.BinaryEO},
	{"Binary Non-EO", stats.BinaryNonEO},
	{"Proportion EO", stats.ProportionEO},
	{"Proportion Non-EO", stats.ProportionNonEO},
}

func formatProbability(p float64) string {
	if p == stats.Undefined {
		return "n/a"
	}
	return strconv.FormatFloat(p, 'f', 3, 64)
}

// Markdown renders the analysis summary and ranking table
func (r *Renderer) Markdown(a *stats.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", a.Target.Label())
	if a.Source != "" {
		fmt.Fprintf(&b, "- **File:** %s\n", a.Source)
	}
	fmt.Fprintf(&b, "- **Window:** %g s\n", a.Window.Seconds())
	fmt.Fprintf(&b, "- **Targets:** %d\n\n", a.Targets)

	b.WriteString("| Rank | Behavior |")
	for _, c := range columns {
		fmt.Fprintf(&b, " %s |", c.title)
	}
	b.WriteString(" Avg | p |\n|---:|---|")
	for range columns {
		b.WriteString("---:|")
	}
	b.WriteString("---:|---:|\n")

	for i, c := range a.Candidates {
		fmt.Fprintf(&b, "| %d | %s |", i+1, escape(c.Behavior.Label()))
		for _, col := range columns {
			res := c.Results.Get(col.measure)
			cell := formatProbability(res.Probability)
			if c.Baseline != nil {
				cell += " (" + formatProbability(c.Baseline.Mean(col.measure)) + ")"
			}
			fmt.Fprintf(&b, " %s |", cell)
		}
		p := "-"
		if c.Baseline != nil {
			p = formatProbability(c.Baseline.PValue)
		}
		fmt.Fprintf(&b, " %s | %s |\n", formatProbability(c.Results.Avg), p)
	}
	if len(a.Candidates) > 0 && a.Candidates[0].Baseline != nil {
		b.WriteString("\nBackground means in parentheses.\n")
	}
	return b.String()
}

// HTML renders the markdown report as a complete HTML page
func (r *Renderer) HTML(a *stats.Analysis) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Conditional probability: " + a.Target.Label(),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(r.Markdown(a)), p, renderer)
}

// WriteReport writes markdown, or HTML when dest ends in .html. With appendTo
// the markdown section is added to the end of an existing file.
func (r *Renderer) WriteReport(ctx context.Context, a *stats.Analysis, dest string, appendTo bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var content []byte
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".html", ".htm":
		if appendTo {
			return fmt.Errorf("cannot append to html report %s", dest)
		}
		content = r.HTML(a)
	default:
		content = []byte(r.Markdown(a))
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendTo {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		content = append([]byte("\n"), content...)
	}
	f, err := os.OpenFile(dest, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Printf("[MarkdownRenderer] Wrote %d candidates to %s", len(a.Candidates), dest)
	return nil
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
