package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/sparrow/internal/core"
)

func sampleReport() *core.Report {
	accepted := core.NewReviewedFragment(
		core.FileDiff{Path: "internal/app/app.go", Unified: "@@ -1,2 +1,2 @@\n-old line\n+new line\n"},
		&core.ReviewResult{Accepted: true},
	)
	rejected := core.NewReviewedFragment(
		core.FileDiff{Path: "cmd/main.go", Unified: "@@ -3 +3 @@\n+x := <-ch\n"},
		&core.ReviewResult{Accepted: false, Comments: []core.ReviewComment{
			{
				Explanation: "receive can block forever without a done channel",
				StartLine:   3,
				OldCode:     "x := <-ch",
				NewCode:     "select {\ncase x := <-ch:\ncase <-ctx.Done():\n}",
			},
		}},
	)
	skipped := core.NewSkippedFragment(
		core.FileDiff{Path: "assets/logo.png", IsBinary: true},
		"binary file",
	)
	return &core.Report{
		Target:    "HEAD",
		Fragments: []core.ReportFragment{accepted, rejected, skipped},
		Warnings:  []string{"review of c.go failed: timeout"},
		CreatedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(sampleReport())
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, "internal/app/app.go")
	assert.Contains(t, page, `<span class="badge accepted">Accepted</span>`)
	assert.Contains(t, page, `<span class="badge rejected">Rejected</span>`)
	assert.Contains(t, page, `<span class="badge skipped">Skipped</span>`)

	// Diff lines are classed and escaped.
	assert.Contains(t, page, `<tr class="add">`)
	assert.Contains(t, page, `<tr class="del">`)
	assert.Contains(t, page, `<tr class="hunk">`)
	assert.Contains(t, page, "x := &lt;-ch")

	// Rejected fragment carries its comment.
	assert.Contains(t, page, "receive can block forever")
	assert.Contains(t, page, `<p class="where">Line 3</p>`)
	assert.Contains(t, page, `<pre class="old">`)
	assert.Contains(t, page, `<pre class="new">`)

	// Skipped fragment gets the note and reason instead of comments.
	assert.Contains(t, page, "This file was not reviewed. (binary file)")
	assert.Contains(t, page, "Binary file, diff not shown.")

	assert.Contains(t, page, "review of c.go failed: timeout")
	assert.Contains(t, page, "2025-03-14 09:30:00 UTC")
}

func TestRender_EscapesUserContent(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rep := &core.Report{
		Target: "HEAD",
		Fragments: []core.ReportFragment{
			core.NewReviewedFragment(
				core.FileDiff{Path: "evil.go", Unified: "+<script>alert(1)</script>\n"},
				&core.ReviewResult{Accepted: false, Comments: []core.ReviewComment{
					{Explanation: "<img src=x onerror=alert(1)>", StartLine: 1},
				}},
			),
		},
		CreatedAt: time.Now().UTC(),
	}

	out, err := r.Render(rep)
	require.NoError(t, err)
	page := string(out)

	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, page, "<img src=x")
}

func TestRender_Deterministic(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rep := sampleReport()
	first, err := r.Render(rep)
	require.NoError(t, err)
	second, err := r.Render(rep)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteFile(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "review.html")
	require.NoError(t, r.WriteFile(sampleReport(), path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "internal/app/app.go")
}

func TestWriteFile_FailureLeavesReportUsable(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	// A regular file where a directory is needed makes the write fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	badPath := filepath.Join(blocker, "review.html")

	rep := sampleReport()
	err = r.WriteFile(rep, badPath)
	require.Error(t, err)

	var renderErr *core.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, badPath, renderErr.Path)

	// The same report can still be rendered elsewhere.
	goodPath := filepath.Join(t.TempDir(), "review.html")
	require.NoError(t, r.WriteFile(rep, goodPath))
}
