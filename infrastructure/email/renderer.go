package email

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"circulate-backend/domain/model"
)

// digestTemplate is the whole circulation email. Sections are
// conditional: the events block renders only when event content exists,
// the posts block only for circles with non-event content.
const digestTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 680px; margin: 0 auto; padding: 20px; background: #fff; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.15em; border-bottom: 2px solid #4a7c59; padding-bottom: 4px; }
h3 { font-size: 1em; color: #4a7c59; margin-bottom: 4px; }
.legend { font-size: 0.9em; color: #7f8c8d; border-left: 3px solid #4a7c59; padding-left: 12px; margin: 16px 0; }
.item { margin-bottom: 18px; }
.item .title { font-weight: 600; }
.item .meta { font-size: 0.9em; color: #7f8c8d; }
.item .desc { margin: 4px 0 0 0; }
.footer { margin-top: 30px; padding-top: 15px; border-top: 1px solid #ddd; font-size: 0.9em; color: #7f8c8d; }
a { color: #4a7c59; text-decoration: none; }
a:hover { text-decoration: underline; }
</style>
</head>
<body>
<h1>Hi {{.FirstName}},</h1>
<p>Here is what's new across your circles.</p>
<div class="legend">
Events are gathered across all of your circles and grouped by date; posts are listed per circle.
</div>
{{- if .Digest.HasEvents}}
<h2>Upcoming events</h2>
{{- range .Digest.Days}}
<h3>{{formatDay .Date}}</h3>
{{- range .Events}}
<div class="item">
<span class="title">{{if .Link}}<a href="{{.Link}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</span>
<div class="meta">{{formatTime .When}} &bull; {{.CreatorLabel}} &bull; {{.CircleName}}</div>
{{- if .Description}}
<p class="desc">{{.Description}}</p>
{{- end}}
</div>
{{- end}}
{{- end}}
{{- end}}
{{- if .Digest.HasPosts}}
<h2>Upcoming posts</h2>
{{- range .Digest.Circles}}
{{- if .Posts}}
<h3>{{.Name}}</h3>
{{- range .Posts}}
<div class="item">
<span class="title">{{if .Link}}<a href="{{.Link}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</span>
<div class="meta">shared by {{.CreatorLabel}}</div>
{{- if .Description}}
<p class="desc">{{.Description}}</p>
{{- end}}
</div>
{{- end}}
{{- end}}
{{- end}}
{{- end}}
<div class="footer">
You receive this circulation because of your circle memberships on Circulate.
</div>
</body>
</html>
`

// Renderer produces circulation email bodies. It is a pure formatter: no
// network or storage access, deterministic given its inputs.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the digest template once.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("digest").Funcs(template.FuncMap{
		"formatDay":  formatDay,
		"formatTime": formatTime,
	}).Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the HTML body for one recipient.
func (r *Renderer) Render(firstName string, digest *model.Digest) (string, error) {
	if firstName == "" {
		firstName = "there"
	}

	var b strings.Builder
	err := r.tmpl.Execute(&b, struct {
		FirstName string
		Digest    *model.Digest
	}{FirstName: firstName, Digest: digest})
	if err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}

func formatDay(t time.Time) string {
	return t.Format("Monday, January 2")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("3:04 PM")
}
