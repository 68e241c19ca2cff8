// Package html renders report HTML fragments from structured data. The
// compositor prints these through the shared browser; nothing here touches
// the network or the filesystem.
package html

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type CoverData struct {
	Title       string
	BrandName   string
	TenantID    string
	LogoDataURI template.URL
	GeneratedAt time.Time
	DateRange   string
}

type Section struct {
	Heading string
	Body    string
}

type ContentData struct {
	Title       string
	BrandName   string
	GeneratedAt time.Time
	ItemCount   int
	Sections    []Section
}

var funcMap = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006 15:04 MST")
	},
}

var coverTpl = template.Must(template.New("cover").Funcs(funcMap).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 0; }
  .cover { height: 100vh; display: flex; flex-direction: column; justify-content: center; align-items: center; background: #0b1b33; color: #fff; }
  .cover img { max-width: 240px; margin-bottom: 32px; }
  .cover h1 { font-size: 34px; margin: 0 0 12px; }
  .cover .brand { font-size: 20px; color: #9db4d6; }
  .cover .meta { position: absolute; bottom: 48px; font-size: 12px; color: #6d83a6; }
</style>
</head>
<body>
<div class="cover">
  {{if .LogoDataURI}}<img src="{{.LogoDataURI}}" alt="{{.BrandName}}">{{end}}
  <h1>{{.Title}}</h1>
  <div class="brand">{{.BrandName}}</div>
  <div class="meta">
    Generated {{formatDate .GeneratedAt}}{{if .DateRange}} &middot; {{.DateRange}}{{end}} &middot; tenant {{.TenantID}}
  </div>
</div>
</body>
</html>`))

var contentTpl = template.Must(template.New("content").Funcs(funcMap).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1c2b3a; margin: 24px; }
  h1 { font-size: 24px; border-bottom: 2px solid #0b1b33; padding-bottom: 8px; }
  h2 { font-size: 17px; margin-top: 28px; }
  p { font-size: 13px; line-height: 1.5; }
  .summary { font-size: 12px; color: #5a6b7e; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="summary">{{.BrandName}} &middot; {{formatDate .GeneratedAt}} &middot; based on {{.ItemCount}} records</p>
{{range .Sections}}
<h2>{{.Heading}}</h2>
<p>{{.Body}}</p>
{{end}}
</body>
</html>`))

func RenderCover(data CoverData) (string, error) {
	return execute(coverTpl, data)
}

func RenderContent(data ContentData) (string, error) {
	return execute(contentTpl, data)
}

func execute(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
