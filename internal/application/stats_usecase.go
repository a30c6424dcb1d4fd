package application

import (
	"context"
	"fmt"

	"code.cloudfoundry.org/clock"
	"github.com/davarch/pipeline-bot/internal/domain"
	"go.uber.org/zap"
)

const statsDateLayout = "02/01/2006"

type StatsUseCase struct {
	log      *zap.Logger
	gl       domain.GitlabClient
	groups   *GroupExpander
	projects *ProjectEnumerator
	clock    clock.Clock
	sinks    []domain.StatsSink
}

func NewStatsUseCase(l *zap.Logger, gl domain.GitlabClient, groups *GroupExpander, projects *ProjectEnumerator, clk clock.Clock, sinks ...domain.StatsSink) *StatsUseCase {
	return &StatsUseCase{log: l, gl: gl, groups: groups, projects: projects, clock: clk, sinks: sinks}
}

// Collect computes the counters of one statistics row for the group.
func (uc *StatsUseCase) Collect(ctx context.Context, groupName string) (domain.GroupStats, error) {
	st := domain.GroupStats{Group: groupName, Date: uc.clock.Now().Format(statsDateLayout)}

	root, ids, err := uc.groups.Resolve(ctx, groupName)
	if err != nil {
		return st, err
	}

	all, err := uc.projects.ListRefs(ctx, ids, false)
	if err != nil {
		return st, err
	}
	st.TotalProjects = len(all)

	active, err := uc.projects.ListRefs(ctx, ids, true)
	if err != nil {
		return st, err
	}
	st.NonArchivedProjects = len(active)

	for _, ref := range active {
		p, err := uc.projects.Resolve(ctx, ref)
		if err != nil {
			return st, err
		}
		uc.log.Debug("stats project", zap.Int64("project", p.ID), zap.String("name", p.Name))

		pipes, err := uc.gl.ListPipelines(ctx, p.ID)
		if err != nil {
			return st, fmt.Errorf("list pipelines of project %d: %w", p.ID, err)
		}

		if len(pipes) > 0 {
			st.ProjectsWithPipeline++
			if last, ok := domain.LatestOnRef(pipes, p.DefaultBranch); ok && last.Status == domain.StatusSuccess {
				st.ProjectsWithOKPipe++
			} else {
				st.ProjectsWithNOKPipe++
			}
		}

		if p.ReadmeURL != "" {
			st.ProjectsWithReadme++
		}
	}

	counts := []struct {
		dst   *int
		count func(context.Context, int64, string) (int, error)
		state string
	}{
		{&st.OpenIssues, uc.gl.CountGroupIssues, "opened"},
		{&st.ClosedIssues, uc.gl.CountGroupIssues, "closed"},
		{&st.OpenMergeRequests, uc.gl.CountGroupMergeRequests, "opened"},
		{&st.MergedMergeRequests, uc.gl.CountGroupMergeRequests, "merged"},
	}
	for _, c := range counts {
		n, err := c.count(ctx, root.ID, c.state)
		if err != nil {
			return st, fmt.Errorf("count %s items of group %d: %w", c.state, root.ID, err)
		}
		*c.dst = n
	}

	return st, nil
}

// Run collects the row and appends it to every sink.
func (uc *StatsUseCase) Run(ctx context.Context, groupName string) (domain.GroupStats, error) {
	st, err := uc.Collect(ctx, groupName)
	if err != nil {
		return st, err
	}

	for _, s := range uc.sinks {
		if err := s.Append(ctx, st); err != nil {
			return st, fmt.Errorf("append stats: %w", err)
		}
	}

	uc.log.Info("stats recorded",
		zap.String("group", groupName),
		zap.Int("projects", st.TotalProjects),
		zap.Int("active", st.NonArchivedProjects),
		zap.Int("sinks", len(uc.sinks)),
	)
	return st, nil
}
