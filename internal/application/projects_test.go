package application

import (
	"context"
	"testing"

	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeamWithArchived() *domain.MockGitLab {
	gl := domain.NewMockGitLab()
	gl.AddGroup(domain.Group{ID: 1, FullName: "Team"})
	gl.AddProject(1, domain.Project{ID: 10, Name: "api", DefaultBranch: "main"})
	gl.AddProject(1, domain.Project{ID: 11, Name: "web", DefaultBranch: "main"})
	gl.AddProject(1, domain.Project{ID: 12, Name: "legacy", DefaultBranch: "master", Archived: true})
	return gl
}

func TestEnumerate_NoSkipArchivedIsUnion(t *testing.T) {
	gl := newTeamWithArchived()

	projects, err := NewProjectEnumerator(gl).Enumerate(context.Background(), []int64{1}, false)
	require.NoError(t, err)
	assert.Len(t, projects, 3)
}

func TestEnumerate_SkipArchived(t *testing.T) {
	gl := newTeamWithArchived()

	projects, err := NewProjectEnumerator(gl).Enumerate(context.Background(), []int64{1}, true)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	for _, p := range projects {
		assert.False(t, p.Archived, p.Name)
	}
}

func TestListRefs_DedupesSharedProjects(t *testing.T) {
	gl := newTeamWithArchived()
	gl.AddGroup(domain.Group{ID: 2, FullName: "Other"})
	gl.GroupProjects[2] = append(gl.GroupProjects[2], gl.GroupProjects[1][0])

	refs, err := NewProjectEnumerator(gl).ListRefs(context.Background(), []int64{1, 2}, true)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestResolve_FullProjectIsUsedAsIs(t *testing.T) {
	gl := domain.NewMockGitLab()
	full := domain.Project{ID: 5, Name: "api", DefaultBranch: "main"}

	p, err := NewProjectEnumerator(gl).Resolve(context.Background(), domain.ProjectRef{ID: 5, Kind: domain.KindProject, Full: &full})
	require.NoError(t, err)
	assert.Equal(t, full, p)
	assert.Zero(t, gl.Called)
}

func TestResolve_UnknownKindIsInvariantViolation(t *testing.T) {
	gl := domain.NewMockGitLab()

	_, err := NewProjectEnumerator(gl).Resolve(context.Background(), domain.ProjectRef{ID: 5, Kind: "snippet"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternalInvariant)
}
