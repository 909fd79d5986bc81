package container

import (
	"html/template"
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
)

// TemplateName is the file the renderer loads from its directory.
const TemplateName = "container.html"

// Renderer owns the parsed container template. The template is parsed once
// and shared read-only by every request; Reload swaps in a new parse result
// without blocking renders that are already running.
type Renderer struct {
	path string
	tmpl atomic.Pointer[template.Template]
}

// LoadRenderer parses dir/container.html. It fails when the file is missing
// or does not parse, so a broken deployment stops at startup.
func LoadRenderer(dir string) (*Renderer, error) {
	r := &Renderer{path: filepath.Join(dir, TemplateName)}
	t, err := parseTemplate(r.path)
	if err != nil {
		return nil, err
	}
	r.tmpl.Store(t)
	return r, nil
}

// Path is the template file on disk.
func (r *Renderer) Path() string { return r.path }

// Reload re-parses the template file. On error the previous template is kept.
func (r *Renderer) Reload() error {
	t, err := parseTemplate(r.path)
	if err != nil {
		return err
	}
	r.tmpl.Store(t)
	return nil
}

// Render executes the template with data. Values are escaped for the HTML
// context they land in.
func (r *Renderer) Render(w io.Writer, data any) error {
	if err := r.tmpl.Load().Execute(w, data); err != nil {
		return errors.Wrapf(err, "render %s", TemplateName)
	}
	return nil
}

func parseTemplate(path string) (*template.Template, error) {
	// A placeholder missing from the bindings fails the render.
	t, err := template.New(filepath.Base(path)).Option("missingkey=error").ParseFiles(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load template %s", path)
	}
	return t, nil
}
