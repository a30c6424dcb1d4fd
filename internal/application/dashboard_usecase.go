package application

import (
	"context"
	"fmt"

	"code.cloudfoundry.org/clock"
	"github.com/davarch/pipeline-bot/internal/domain"
	"go.uber.org/zap"
)

const (
	noPipelineStatus = "None"
	noPipelineURL    = "none"
)

type DashboardUseCase struct {
	log      *zap.Logger
	gl       domain.GitlabClient
	groups   *GroupExpander
	projects *ProjectEnumerator
	clock    clock.Clock
	snapshot domain.SnapshotWriter
	renderer domain.DashboardRenderer
}

func NewDashboardUseCase(
	l *zap.Logger,
	gl domain.GitlabClient,
	groups *GroupExpander,
	projects *ProjectEnumerator,
	clk clock.Clock,
	snapshot domain.SnapshotWriter,
	renderer domain.DashboardRenderer,
) *DashboardUseCase {
	return &DashboardUseCase{
		log: l, gl: gl, groups: groups, projects: projects, clock: clk,
		snapshot: snapshot, renderer: renderer,
	}
}

// Build collects one dashboard row per project of the group.
func (uc *DashboardUseCase) Build(ctx context.Context, groupName string, skipArchived bool) (domain.DashboardSnapshot, error) {
	snap := domain.DashboardSnapshot{GroupName: groupName, GeneratedAt: uc.clock.Now()}

	_, ids, err := uc.groups.Resolve(ctx, groupName)
	if err != nil {
		return snap, err
	}

	projects, err := uc.projects.Enumerate(ctx, ids, skipArchived)
	if err != nil {
		return snap, err
	}

	snap.Rows = make([]domain.DashboardRow, 0, len(projects))
	for _, p := range projects {
		pipes, err := uc.gl.ListPipelines(ctx, p.ID)
		if err != nil {
			return snap, fmt.Errorf("list pipelines of project %d: %w", p.ID, err)
		}
		snap.Rows = append(snap.Rows, rowFor(p, pipes))
	}

	return snap, nil
}

func rowFor(p domain.Project, pipes []domain.Pipeline) domain.DashboardRow {
	row := domain.DashboardRow{
		Project:              p,
		PipelineStatus:       noPipelineStatus,
		PipelineWebURL:       noPipelineURL,
		MasterPipelineStatus: noPipelineStatus,
		MasterPipelineWebURL: noPipelineURL,
	}
	if len(pipes) == 0 {
		return row
	}

	row.PipelineStatus = string(pipes[0].Status)
	row.PipelineWebURL = pipes[0].WebURL

	if last, ok := domain.LatestOnRef(pipes, p.DefaultBranch); ok {
		row.MasterPipelineStatus = string(last.Status)
		row.MasterPipelineWebURL = last.WebURL
	}
	return row
}

// Run builds the snapshot, stores it and renders the page.
func (uc *DashboardUseCase) Run(ctx context.Context, groupName string, skipArchived bool) (domain.DashboardSnapshot, error) {
	snap, err := uc.Build(ctx, groupName, skipArchived)
	if err != nil {
		return snap, err
	}

	if err := uc.snapshot.Write(ctx, snap); err != nil {
		return snap, fmt.Errorf("write snapshot: %w", err)
	}

	if err := uc.renderer.Render(ctx, snap); err != nil {
		return snap, fmt.Errorf("render dashboard: %w", err)
	}

	uc.log.Info("dashboard generated", zap.String("group", groupName), zap.Int("projects", len(snap.Rows)))
	return snap, nil
}
