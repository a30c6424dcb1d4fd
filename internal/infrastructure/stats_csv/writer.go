package stats_csv

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/davarch/pipeline-bot/internal/domain"
)

var _ domain.StatsSink = (*Writer)(nil)

var header = []string{
	"date",
	"total_no_of_projects",
	"no_of_non_archived_projects",
	"no_of_projects_with_pipeline",
	"no_of_projects_with_ok_pipeline",
	"no_of_projects_with_nok_pipeline",
	"no_of_projects_with_readme",
	"no_of_open_issues",
	"no_of_closed_issues",
	"no_of_open_mrs",
	"no_of_merged_mrs",
}

// Writer appends one row per run to a CSV file. The header goes in only
// while the file is empty.
type Writer struct {
	path string
}

func New(path string) *Writer { return &Writer{path: path} }

func (w *Writer) Append(_ context.Context, s domain.GroupStats) error {
	if w.path == "" {
		return errors.New("csv path is empty")
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := cw.Write(header); err != nil {
			return err
		}
	}

	if err := cw.Write(record(s)); err != nil {
		return err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Sync()
}

func record(s domain.GroupStats) []string {
	return []string{
		s.Date,
		strconv.Itoa(s.TotalProjects),
		strconv.Itoa(s.NonArchivedProjects),
		strconv.Itoa(s.ProjectsWithPipeline),
		strconv.Itoa(s.ProjectsWithOKPipe),
		strconv.Itoa(s.ProjectsWithNOKPipe),
		strconv.Itoa(s.ProjectsWithReadme),
		strconv.Itoa(s.OpenIssues),
		strconv.Itoa(s.ClosedIssues),
		strconv.Itoa(s.OpenMergeRequests),
		strconv.Itoa(s.MergedMergeRequests),
	}
}
