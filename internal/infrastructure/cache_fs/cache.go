package cache_fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/davarch/pipeline-bot/internal/domain"
)

var _ domain.SnapshotWriter = (*FSCache)(nil)

// FSCache stores the latest dashboard snapshot as a JSON array of project
// rows.
type FSCache struct {
	path string
}

func New(path string) *FSCache { return &FSCache{path: path} }

type row struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	PathWithNamespace    string `json:"path_with_namespace"`
	Description          string `json:"description"`
	DefaultBranch        string `json:"default_branch"`
	Archived             bool   `json:"archived"`
	ReadmeURL            string `json:"readme_url"`
	WebURL               string `json:"web_url"`
	LastActivityAt       string `json:"last_activity_at,omitempty"`
	PipelineStatus       string `json:"pipeline_status"`
	PipelineWebURL       string `json:"pipeline_web_url"`
	MasterPipelineStatus string `json:"master_pipeline_status"`
	MasterPipelineWebURL string `json:"master_pipeline_web_url"`
}

func (c *FSCache) Write(_ context.Context, s domain.DashboardSnapshot) error {
	if c.path == "" {
		return errors.New("snapshot path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	rows := make([]row, 0, len(s.Rows))
	for _, r := range s.Rows {
		out := row{
			ID:                   r.Project.ID,
			Name:                 r.Project.Name,
			PathWithNamespace:    r.Project.PathWithNamespace,
			Description:          r.Project.Description,
			DefaultBranch:        r.Project.DefaultBranch,
			Archived:             r.Project.Archived,
			ReadmeURL:            r.Project.ReadmeURL,
			WebURL:               r.Project.WebURL,
			PipelineStatus:       r.PipelineStatus,
			PipelineWebURL:       r.PipelineWebURL,
			MasterPipelineStatus: r.MasterPipelineStatus,
			MasterPipelineWebURL: r.MasterPipelineWebURL,
		}
		if !r.Project.LastActivityAt.IsZero() {
			out.LastActivityAt = r.Project.LastActivityAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, out)
	}

	tmp := c.path + ".tmp"
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

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(rows); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}

	if err := os.Rename(tmp, c.path); err != nil {
		return err
	}
	done = true
	return nil
}
