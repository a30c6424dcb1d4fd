package stats_sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/davarch/pipeline-bot/internal/domain"
)

var _ domain.StatsSink = (*StatsRepo)(nil)

// StatsRepo keeps every collected statistics row.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

func (r *StatsRepo) Append(ctx context.Context, s domain.GroupStats) error {
	const query = `
		INSERT INTO group_stats (
			group_name, date,
			total_no_of_projects, no_of_non_archived_projects,
			no_of_projects_with_pipeline, no_of_projects_with_ok_pipeline, no_of_projects_with_nok_pipeline,
			no_of_projects_with_readme,
			no_of_open_issues, no_of_closed_issues, no_of_open_mrs, no_of_merged_mrs
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query,
		s.Group, s.Date,
		s.TotalProjects, s.NonArchivedProjects,
		s.ProjectsWithPipeline, s.ProjectsWithOKPipe, s.ProjectsWithNOKPipe,
		s.ProjectsWithReadme,
		s.OpenIssues, s.ClosedIssues, s.OpenMergeRequests, s.MergedMergeRequests,
	); err != nil {
		return fmt.Errorf("insert stats for %s: %w", s.Group, err)
	}

	return nil
}

// Latest returns up to limit rows of group, newest first.
func (r *StatsRepo) Latest(ctx context.Context, group string, limit int) ([]domain.GroupStats, error) {
	const query = `
		SELECT group_name, date,
			total_no_of_projects, no_of_non_archived_projects,
			no_of_projects_with_pipeline, no_of_projects_with_ok_pipeline, no_of_projects_with_nok_pipeline,
			no_of_projects_with_readme,
			no_of_open_issues, no_of_closed_issues, no_of_open_mrs, no_of_merged_mrs
		FROM group_stats
		WHERE group_name = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, group, limit)
	if err != nil {
		return nil, fmt.Errorf("query stats for %s: %w", group, err)
	}
	defer rows.Close()

	var out []domain.GroupStats
	for rows.Next() {
		var s domain.GroupStats
		if err := rows.Scan(
			&s.Group, &s.Date,
			&s.TotalProjects, &s.NonArchivedProjects,
			&s.ProjectsWithPipeline, &s.ProjectsWithOKPipe, &s.ProjectsWithNOKPipe,
			&s.ProjectsWithReadme,
			&s.OpenIssues, &s.ClosedIssues, &s.OpenMergeRequests, &s.MergedMergeRequests,
		); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}

	return out, nil
}
