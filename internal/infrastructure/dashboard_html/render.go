package dashboard_html

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"os"
	"path/filepath"

	"github.com/davarch/pipeline-bot/internal/domain"
)

//go:embed templates/dashboard.html.tmpl
var templatesFS embed.FS

const generatedLayout = "02/01/2006, 15:04:05"

var _ domain.DashboardRenderer = (*Renderer)(nil)

// Renderer writes dashboard.html into a directory.
type Renderer struct {
	dir  string
	tmpl *template.Template
}

func New(dir string) (*Renderer, error) {
	desc := newDescriptions()
	tmpl, err := template.New("dashboard.html.tmpl").Funcs(template.FuncMap{
		"markdown":    desc.render,
		"statusClass": statusClass,
	}).ParseFS(templatesFS, "templates/dashboard.html.tmpl")
	if err != nil {
		return nil, err
	}

	return &Renderer{dir: dir, tmpl: tmpl}, nil
}

// Path is the file Render writes.
func (r *Renderer) Path() string {
	return filepath.Join(r.dir, "dashboard.html")
}

type page struct {
	GroupName     string
	GeneratedTime string
	Projects      []domain.DashboardRow
}

func (r *Renderer) Render(_ context.Context, s domain.DashboardSnapshot) error {
	if r.dir == "" {
		return errors.New("output directory is empty")
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	tmp := r.Path() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	done := false
	defer func() {
		_ = f.Close()
		if !done {
			_ = os.Remove(tmp)
		}
	}()

	err = r.tmpl.Execute(f, page{
		GroupName:     s.GroupName,
		GeneratedTime: s.GeneratedAt.Format(generatedLayout),
		Projects:      s.Rows,
	})
	if err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}

	if err := os.Rename(tmp, r.Path()); err != nil {
		return err
	}
	done = true
	return nil
}

func statusClass(status string) string {
	switch domain.PipelineStatus(status) {
	case domain.StatusSuccess:
		return "ok"
	case domain.StatusFailed:
		return "nok"
	case domain.StatusRunning, domain.StatusPending, domain.StatusCreated:
		return "running"
	case "None":
		return "none"
	default:
		return "other"
	}
}
