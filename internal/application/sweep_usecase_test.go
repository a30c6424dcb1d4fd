package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSweep(gl *domain.MockGitLab, out io.Writer, note domain.Notifier) *SweepUseCase {
	log := zap.NewNop()
	return NewSweepUseCase(log, out,
		NewGroupExpander(gl, false),
		NewProjectEnumerator(gl),
		NewFreshnessEvaluator(gl, fakeclock.NewFakeClock(testNow)),
		NewPipelineTrigger(log, gl),
		note,
	)
}

// newTeam is a group without subgroups holding one stale project out of three.
func newTeam() *domain.MockGitLab {
	gl := domain.NewMockGitLab()
	gl.AddGroup(domain.Group{ID: 1, FullName: "Team"})
	gl.AddProject(1, domain.Project{ID: 10, Name: "api", DefaultBranch: "main"},
		domain.Pipeline{ID: 100, Ref: "main", Status: domain.StatusSuccess, UpdatedAt: daysAgo(15)})
	gl.AddProject(1, domain.Project{ID: 11, Name: "web", DefaultBranch: "main"},
		domain.Pipeline{ID: 101, Ref: "main", Status: domain.StatusSuccess, UpdatedAt: daysAgo(2)})
	gl.AddProject(1, domain.Project{ID: 12, Name: "docs", DefaultBranch: "master"})
	return gl
}

func TestSweep_DryRunDoesNotTrigger(t *testing.T) {
	gl := newTeam()
	var out bytes.Buffer

	rep, err := newSweep(gl, &out, nil).Run(context.Background(), SweepOptions{
		GroupName: "Team", MaxDays: 10, SkipArchived: true, DryRun: true,
	})
	require.NoError(t, err)

	assert.Len(t, rep.Results, 3)
	assert.Equal(t, 1, rep.Stale)
	assert.Zero(t, rep.Triggered)
	assert.Empty(t, gl.Triggered)
	assert.Contains(t, out.String(), "Pipeline for project api is 15 days old, needs updating")
	assert.Contains(t, out.String(), "Dry run mode, not triggering pipeline")
}

func TestSweep_TriggersStaleDefaultBranch(t *testing.T) {
	gl := newTeam()
	note := &domain.MockNotifier{}
	var out bytes.Buffer

	rep, err := newSweep(gl, &out, note).Run(context.Background(), SweepOptions{
		GroupName: "Team", MaxDays: 10, SkipArchived: true,
	})
	require.NoError(t, err)

	require.Len(t, gl.Triggered, 1)
	assert.Equal(t, int64(10), gl.Triggered[0].ProjectID)
	assert.Equal(t, "main", gl.Triggered[0].Ref)
	assert.Equal(t, 1, rep.Triggered)
	assert.Equal(t, 15, rep.Results[0].Freshness.ElapsedDays)
	assert.Len(t, note.Messages, 1)
	assert.Contains(t, out.String(), "Triggering pipeline ...")
}

func TestSweep_RejectionDoesNotStopBatch(t *testing.T) {
	gl := newTeam()
	gl.Pipelines[11] = []domain.Pipeline{{ID: 101, Ref: "main", UpdatedAt: daysAgo(20)}}
	gl.TriggerErr = fmt.Errorf("gitlab 400: %w", domain.ErrTriggerRejected)
	var out bytes.Buffer

	rep, err := newSweep(gl, &out, nil).Run(context.Background(), SweepOptions{
		GroupName: "Team", MaxDays: 10, SkipArchived: true,
	})
	require.NoError(t, err)

	assert.Len(t, rep.Results, 3)
	assert.Equal(t, 2, rep.Stale)
	assert.Equal(t, 2, rep.Failed)
	assert.Zero(t, rep.Triggered)
	assert.Contains(t, out.String(), "There was an error when triggering the pipeline")
}

func TestSweep_ProjectErrorIsIsolated(t *testing.T) {
	gl := newTeam()
	gl.ProjectErr[11] = fmt.Errorf("timeout")
	var out bytes.Buffer

	rep, err := newSweep(gl, &out, nil).Run(context.Background(), SweepOptions{
		GroupName: "Team", MaxDays: 10, SkipArchived: true, DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.Len(t, rep.Results, 3)
}

func TestSweep_GroupNotFoundAborts(t *testing.T) {
	gl := newTeam()
	var out bytes.Buffer

	_, err := newSweep(gl, &out, nil).Run(context.Background(), SweepOptions{GroupName: "Nobody", MaxDays: 10})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweep_UnknownProjectKindAborts(t *testing.T) {
	gl := newTeam()
	gl.GroupProjects[1] = append([]domain.ProjectRef{{ID: 50, Name: "odd", Kind: "snippet"}}, gl.GroupProjects[1]...)
	var out bytes.Buffer

	_, err := newSweep(gl, &out, nil).Run(context.Background(), SweepOptions{GroupName: "Team", MaxDays: 10, SkipArchived: true})
	assert.ErrorIs(t, err, domain.ErrInternalInvariant)
	assert.Empty(t, gl.Triggered)
}

func TestSweep_NotificationErrorIsNotAFailure(t *testing.T) {
	gl := newTeam()
	note := &domain.MockNotifier{Err: fmt.Errorf("notify-send: not found")}
	var out bytes.Buffer

	rep, err := newSweep(gl, &out, note).Run(context.Background(), SweepOptions{
		GroupName: "Team", MaxDays: 10, SkipArchived: true,
	})
	require.NoError(t, err)

	assert.Len(t, note.Messages, 1)
	assert.Equal(t, 1, rep.Triggered)
	assert.Zero(t, rep.Failed)
}
