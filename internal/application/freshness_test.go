package application

import (
	"context"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return testNow.Add(-time.Duration(d) * day)
}

func TestEvaluate(t *testing.T) {
	project := domain.Project{ID: 1, Name: "api", DefaultBranch: "main"}

	tests := []struct {
		name      string
		pipelines []domain.Pipeline
		want      domain.Freshness
	}{
		{
			name: "no pipelines",
			want: domain.Freshness{IsFresh: true, Outcome: domain.OutcomeNoPipelines},
		},
		{
			name: "only other branches",
			pipelines: []domain.Pipeline{
				{ID: 2, Ref: "feature", UpdatedAt: daysAgo(40)},
			},
			want: domain.Freshness{IsFresh: true, Outcome: domain.OutcomeNoDefaultBranchPipeline},
		},
		{
			name: "exactly max days is fresh",
			pipelines: []domain.Pipeline{
				{ID: 2, Ref: "main", UpdatedAt: daysAgo(10)},
			},
			want: domain.Freshness{IsFresh: true, ElapsedDays: 10, Outcome: domain.OutcomeEvaluated},
		},
		{
			name: "one second past max days is stale",
			pipelines: []domain.Pipeline{
				{ID: 2, Ref: "main", UpdatedAt: daysAgo(10).Add(-time.Second)},
			},
			want: domain.Freshness{IsFresh: false, ElapsedDays: 10, Outcome: domain.OutcomeEvaluated},
		},
		{
			name: "max days plus one is stale",
			pipelines: []domain.Pipeline{
				{ID: 2, Ref: "main", UpdatedAt: daysAgo(11)},
			},
			want: domain.Freshness{IsFresh: false, ElapsedDays: 11, Outcome: domain.OutcomeEvaluated},
		},
		{
			name: "most recent default branch pipeline wins",
			pipelines: []domain.Pipeline{
				{ID: 5, Ref: "feature", UpdatedAt: daysAgo(0)},
				{ID: 4, Ref: "main", UpdatedAt: daysAgo(2)},
				{ID: 3, Ref: "main", UpdatedAt: daysAgo(30)},
			},
			want: domain.Freshness{IsFresh: true, ElapsedDays: 2, Outcome: domain.OutcomeEvaluated},
		},
	}

	ev := NewFreshnessEvaluator(domain.NewMockGitLab(), fakeclock.NewFakeClock(testNow))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ev.Evaluate(project, tt.pipelines, 10)
			assert.Equal(t, tt.want.IsFresh, got.IsFresh)
			assert.Equal(t, tt.want.ElapsedDays, got.ElapsedDays)
			assert.Equal(t, tt.want.Outcome, got.Outcome)
			if got.Outcome == domain.OutcomeEvaluated {
				require.NotNil(t, got.Pipeline)
				assert.Equal(t, "main", got.Pipeline.Ref)
			} else {
				assert.Nil(t, got.Pipeline)
			}
		})
	}
}

func TestCheck_FetchesPipelines(t *testing.T) {
	gl := domain.NewMockGitLab()
	p := domain.Project{ID: 7, Name: "api", DefaultBranch: "main"}
	gl.AddProject(1, p, domain.Pipeline{ID: 1, Ref: "main", UpdatedAt: daysAgo(15)})

	f, err := NewFreshnessEvaluator(gl, fakeclock.NewFakeClock(testNow)).Check(context.Background(), p, 10)
	require.NoError(t, err)
	assert.False(t, f.IsFresh)
	assert.Equal(t, 15, f.ElapsedDays)
}

func TestFloorDays(t *testing.T) {
	assert.Equal(t, 0, floorDays(23*time.Hour))
	assert.Equal(t, 1, floorDays(day))
	assert.Equal(t, -1, floorDays(-time.Hour))
	assert.Equal(t, -1, floorDays(-day))
}
