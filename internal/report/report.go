// Package report renders the tracked-postings catalog as a static HTML
// dashboard, written atomically so a half-written file never replaces a
// good one.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lacedup/footwork/internal/model"
)

// Generator renders the dashboard for a catalog snapshot.
type Generator struct {
	tmpl *template.Template
}

func NewGenerator() *Generator {
	return &Generator{tmpl: template.Must(template.New("dashboard").Parse(dashboardTemplate))}
}

type companyGroup struct {
	Company  string
	Postings []model.Posting
}

type dashboardData struct {
	GeneratedAt string
	Total       int
	Applied     int
	Companies   []companyGroup
}

// Render builds the dashboard HTML for the given postings.
func (g *Generator) Render(postings []model.Posting) ([]byte, error) {
	data := dashboardData{
		GeneratedAt: time.Now().Format("2006-01-02 15:04 MST"),
		Total:       len(postings),
		Companies:   groupByCompany(postings),
	}
	for _, p := range postings {
		if p.Applied {
			data.Applied++
		}
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the dashboard and replaces path with it. The content
// lands in a temp file first and moves into place with a rename, so readers
// never observe a partial report.
func (g *Generator) WriteFile(path string, postings []model.Posting) error {
	html, err := g.Render(postings)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dashboard-*.html")
	if err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return fmt.Errorf("write dashboard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	return nil
}

// groupByCompany buckets postings per company, companies alphabetically and
// postings newest-first within each.
func groupByCompany(postings []model.Posting) []companyGroup {
	byCompany := make(map[string][]model.Posting)
	for _, p := range postings {
		byCompany[p.Company] = append(byCompany[p.Company], p)
	}

	groups := make([]companyGroup, 0, len(byCompany))
	for company, ps := range byCompany {
		sort.Slice(ps, func(i, j int) bool {
			if !ps[i].FirstSeen.Equal(ps[j].FirstSeen) {
				return ps[i].FirstSeen.After(ps[j].FirstSeen)
			}
			return ps[i].ID < ps[j].ID
		})
		groups = append(groups, companyGroup{Company: company, Postings: ps})
	}
	sort.Slice(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Company) < strings.ToLower(groups[j].Company)
	})
	return groups
}

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Footwork &mdash; Job Tracker</title>
<style>
	body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f5f5f4; color: #1c1917; }
	header { background: #1c1917; color: #fafaf9; padding: 1.25rem 2rem; }
	header h1 { margin: 0; font-size: 1.3rem; }
	header p { margin: 0.25rem 0 0; color: #a8a29e; font-size: 0.85rem; }
	main { max-width: 960px; margin: 1.5rem auto; padding: 0 1rem; }
	section { background: #fff; border-radius: 8px; margin-bottom: 1rem; padding: 1rem 1.25rem; box-shadow: 0 1px 2px rgba(0,0,0,0.06); }
	h2 { margin: 0 0 0.5rem; font-size: 1.05rem; }
	table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
	td { padding: 0.4rem 0.5rem; border-top: 1px solid #e7e5e4; vertical-align: top; }
	tr:first-child td { border-top: none; }
	a { color: #1d4ed8; text-decoration: none; }
	a:hover { text-decoration: underline; }
	.loc { color: #78716c; }
	.src { color: #78716c; font-size: 0.78rem; white-space: nowrap; }
	.applied { color: #15803d; font-weight: 600; white-space: nowrap; }
	.empty { text-align: center; color: #78716c; padding: 3rem 0; }
</style>
</head>
<body>
<header>
	<h1>&#128095; Footwork Job Tracker</h1>
	<p>{{.Total}} tracked posting(s), {{.Applied}} applied &middot; generated {{.GeneratedAt}}</p>
</header>
<main>
{{- if not .Companies}}
	<p class="empty">No tracked postings yet. Run the aggregator to fill the board.</p>
{{- end}}
{{- range .Companies}}
	<section>
		<h2>{{.Company}}</h2>
		<table>
		{{- range .Postings}}
			<tr>
				<td><a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a>
					{{- if .Location}} <span class="loc">&middot; {{.Location}}</span>{{end}}</td>
				<td class="src">{{.Source}}</td>
				<td>{{if .Applied}}<span class="applied">applied</span>{{end}}</td>
			</tr>
		{{- end}}
		</table>
	</section>
{{- end}}
</main>
</body>
</html>
`
