// Package web serves the single page that renders a voice chat session.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/tahcohcat/voicechat-web/internal/logger"
)

//go:embed templates/*.html
var templates embed.FS

type Page struct {
	tmpl  *template.Template
	title string
	log   *logger.Log
}

func NewPage(title string) (*Page, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Page{tmpl: tmpl, title: title, log: logger.New().WithField("component", "web")}, nil
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := p.tmpl.Execute(w, map[string]string{
		"Title":  p.title,
		"WSPath": "/ws",
	})
	if err != nil {
		p.log.WithError(err).Error("Failed to render page")
	}
}
