// Package views renders the console pages from embedded html/template files.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"

	"printhub/console/internal/session"
)

//go:embed templates
var templatesFS embed.FS

const (
	shellLayout = "templates/layouts/shell.html"
	authLayout  = "templates/layouts/auth.html"
)

// authPages render without the sidebar and top navigation.
var authPages = map[string]bool{
	"login":    true,
	"register": true,
}

// Page is the data every template receives.
type Page struct {
	Title       string
	Active      string
	Username    string
	IsAdmin     bool
	DarkMode    bool
	SidebarOpen bool
	Flash       *session.Flash
	Error       string
	Data        any
}

// NewPage fills the shell fields from the session.
func NewPage(s *session.Session, title, active string) Page {
	p := Page{Title: title, Active: active, DarkMode: true, SidebarOpen: true}
	if s != nil {
		p.Username = s.Username
		p.IsAdmin = s.IsAdmin()
		p.DarkMode = s.DarkMode
		p.SidebarOpen = s.SidebarOpen
	}
	return p
}

// Renderer implements gin's render.HTMLRender over the embedded pages, each
// parsed together with its layout.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func New() (*Renderer, error) {
	entries, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(entries))}
	for _, file := range entries {
		name := strings.TrimSuffix(path.Base(file), ".html")
		layout := shellLayout
		if authPages[name] {
			layout = authLayout
		}
		tmpl, err := template.New(name).Funcs(Funcs()).ParseFS(templatesFS, layout, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		tmpl = r.pages["error"]
		data = Page{Title: "Not found", Error: fmt.Sprintf("unknown page %q", name)}
	}
	return render.HTML{Template: tmpl, Name: "layout", Data: data}
}

func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
