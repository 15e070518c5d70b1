package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"sync"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFiles embed.FS

// EmbeddedTemplates returns the templates compiled into the binary.
func EmbeddedTemplates() fs.FS {
	fsys, _ := fs.Sub(templateFiles, "templates")
	return fsys
}

// TemplatesFS returns dir as a live file system when set, so edits show up
// on reload, and the embedded templates otherwise.
func TemplatesFS(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return EmbeddedTemplates()
}

const layoutTemplate = "layout.html"

var pageNames = []string{"list", "new", "detail", "delete", "not_found"}

// Views holds one parsed template set per page. In dev mode it is
// subscribed to the template watcher and re-parses on change.
type Views struct {
	fsys   fs.FS
	funcs  template.FuncMap
	logger *zap.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewViews parses every page from fsys.
func NewViews(fsys fs.FS, funcs template.FuncMap, logger *zap.Logger) (*Views, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Views{fsys: fsys, funcs: funcs, logger: logger}
	if err := v.Reload(); err != nil {
		return nil, err
	}
	return v, nil
}

// Reload re-parses all pages. On error the previous set stays in use.
func (v *Views) Reload() error {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(layoutTemplate).Funcs(v.funcs).ParseFS(v.fsys, layoutTemplate, name+".html")
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	v.mu.Lock()
	v.pages = pages
	v.mu.Unlock()
	return nil
}

// OnFileChange implements ChangeSubscriber.
func (v *Views) OnFileChange(change FileChange) {
	if change.Kind != FileChangeKindTemplate {
		return
	}
	if err := v.Reload(); err != nil {
		v.logger.Warn("template reload failed", zap.String("path", change.Path), zap.Error(err))
		return
	}
	v.logger.Info("templates reloaded", zap.String("path", change.Path))
}

// Render executes page into a buffer first so a template error never
// leaves a half-written response.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data any) error {
	v.mu.RLock()
	t, ok := v.pages[page]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
