// Package report renders an assembled review into a standalone HTML document.
// The page shell is a template; the per-fragment markup is built by explicit
// mapping functions on the typed report so the rendering logic stays testable
// without a templating engine.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/sevigo/sparrow/internal/core"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

// skippedNote is the fixed explanation shown in place of a comment list for
// files that received no verdict.
const skippedNote = "This file was not reviewed."

// Renderer turns reports into HTML documents.
type Renderer struct {
	page *template.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer() (*Renderer, error) {
	page, err := template.ParseFS(templateFS, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Renderer{page: page}, nil
}

type pageData struct {
	Target    string
	CreatedAt string
	Accepted  int
	Rejected  int
	Skipped   int
	Warnings  []string
	Fragments []template.HTML
}

// Render produces the full HTML document for a report.
func (r *Renderer) Render(rep *core.Report) ([]byte, error) {
	accepted, rejected, skipped := rep.Counts()
	data := pageData{
		Target:    rep.Target,
		CreatedAt: rep.CreatedAt.Format("2006-01-02 15:04:05 UTC"),
		Accepted:  accepted,
		Rejected:  rejected,
		Skipped:   skipped,
		Warnings:  rep.Warnings,
	}
	for _, f := range rep.Fragments {
		data.Fragments = append(data.Fragments, renderFragment(f))
	}

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, data); err != nil {
		return nil, &core.RenderError{Err: err}
	}
	return buf.Bytes(), nil
}

// WriteFile renders the report fully in memory and then writes it in a single
// operation, so a failure never leaves a half-written report behind. Failures
// are reported as *core.RenderError; the report itself stays usable.
func (r *Renderer) WriteFile(rep *core.Report, path string) error {
	out, err := r.Render(rep)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &core.RenderError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return &core.RenderError{Path: path, Err: err}
	}
	return nil
}

// renderFragment maps one fragment to its HTML section.
func renderFragment(f core.ReportFragment) template.HTML {
	label, class := statusBadge(f.Status)

	var b strings.Builder
	b.WriteString(`<section class="fragment">` + "\n")
	fmt.Fprintf(&b, `<h2>%s<span class="badge %s">%s</span></h2>`+"\n",
		html.EscapeString(f.Diff.Path), class, label)

	switch {
	case f.Diff.IsBinary:
		b.WriteString(`<p class="skip-note">Binary file, diff not shown.</p>` + "\n")
	case f.Diff.Unified != "":
		b.WriteString(diffTableHTML(f.Diff.Unified))
	}

	if f.Status == core.StatusSkipped {
		fmt.Fprintf(&b, `<p class="skip-note">%s</p>`+"\n", html.EscapeString(skipNote(f)))
	} else if f.Result != nil && len(f.Result.Comments) > 0 {
		b.WriteString(renderComments(f.Result.Comments))
	}

	b.WriteString("</section>")
	return template.HTML(b.String())
}

func skipNote(f core.ReportFragment) string {
	if f.SkipReason != "" {
		return fmt.Sprintf("%s (%s)", skippedNote, f.SkipReason)
	}
	return skippedNote
}

// statusBadge maps a status to its badge label and CSS class. The switch is
// exhaustive over the status enum.
func statusBadge(status core.FragmentStatus) (label, class string) {
	switch status {
	case core.StatusAccepted:
		return "Accepted", "accepted"
	case core.StatusRejected:
		return "Rejected", "rejected"
	case core.StatusSkipped:
		return "Skipped", "skipped"
	default:
		return "Unknown", "skipped"
	}
}

// diffTableHTML renders a unified diff as a table, one row per line, with
// added, removed, and hunk-header lines classed for styling.
func diffTableHTML(unified string) string {
	var b strings.Builder
	b.WriteString(`<table class="diff">` + "\n")

	lineNo := 0
	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		class := "ctx"
		switch {
		case strings.HasPrefix(line, "@@"):
			class = "hunk"
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			class = "hunk"
		case strings.HasPrefix(line, "+"):
			class = "add"
		case strings.HasPrefix(line, "-"):
			class = "del"
		}
		lineNo++
		fmt.Fprintf(&b, `<tr class="%s"><td class="num">%d</td><td>%s</td></tr>`+"\n",
			class, lineNo, html.EscapeString(line))
	}

	b.WriteString("</table>\n")
	return b.String()
}

// renderComments maps a verdict's comments to their HTML list.
func renderComments(comments []core.ReviewComment) string {
	var b strings.Builder
	b.WriteString(`<div class="comments">` + "\n")
	for _, c := range comments {
		b.WriteString(`<div class="comment">` + "\n")
		fmt.Fprintf(&b, `<p class="where">Line %d</p>`+"\n", c.StartLine)
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(c.Explanation))
		if c.OldCode != "" {
			fmt.Fprintf(&b, `<pre class="old">%s</pre>`+"\n", html.EscapeString(c.OldCode))
		}
		if c.NewCode != "" {
			fmt.Fprintf(&b, `<pre class="new">%s</pre>`+"\n", html.EscapeString(c.NewCode))
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
	return b.String()
}
