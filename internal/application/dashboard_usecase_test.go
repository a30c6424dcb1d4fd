package application

import (
	"context"
	"testing"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboard_Rows(t *testing.T) {
	gl := domain.NewMockGitLab()
	gl.AddGroup(domain.Group{ID: 1, FullName: "Team"})
	gl.AddProject(1, domain.Project{ID: 10, Name: "api", DefaultBranch: "main"},
		domain.Pipeline{ID: 3, Ref: "feature", Status: domain.StatusRunning, WebURL: "u3"},
		domain.Pipeline{ID: 2, Ref: "main", Status: domain.StatusFailed, WebURL: "u2"},
	)
	gl.AddProject(1, domain.Project{ID: 11, Name: "docs", DefaultBranch: "main"})

	snapshots, pages := &domain.MockSnapshotWriter{}, &domain.MockSnapshotWriter{}
	uc := NewDashboardUseCase(zap.NewNop(), gl,
		NewGroupExpander(gl, false), NewProjectEnumerator(gl),
		fakeclock.NewFakeClock(testNow), snapshots, pages)

	snap, err := uc.Run(context.Background(), "Team", true)
	require.NoError(t, err)
	require.Len(t, snap.Rows, 2)

	api := snap.Rows[0]
	assert.Equal(t, "running", api.PipelineStatus)
	assert.Equal(t, "u3", api.PipelineWebURL)
	assert.Equal(t, "failed", api.MasterPipelineStatus)
	assert.Equal(t, "u2", api.MasterPipelineWebURL)

	docs := snap.Rows[1]
	assert.Equal(t, "None", docs.PipelineStatus)
	assert.Equal(t, "none", docs.PipelineWebURL)
	assert.Equal(t, "None", docs.MasterPipelineStatus)

	assert.True(t, testNow.Equal(snap.GeneratedAt))
	assert.Len(t, snapshots.Snapshots, 1)
	assert.Len(t, pages.Snapshots, 1)
}

func TestRowFor_OnlyOtherBranches(t *testing.T) {
	row := rowFor(domain.Project{DefaultBranch: "main"}, []domain.Pipeline{{Ref: "dev", Status: domain.StatusSuccess, WebURL: "u"}})
	assert.Equal(t, "success", row.PipelineStatus)
	assert.Equal(t, "None", row.MasterPipelineStatus)
	assert.Equal(t, "none", row.MasterPipelineWebURL)
}
