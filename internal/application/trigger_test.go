package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureTrigger_Idempotent(t *testing.T) {
	gl := domain.NewMockGitLab()
	gl.Triggers[1] = []domain.Trigger{{ID: 99, Description: "deploy", Token: "other"}}
	tr := NewPipelineTrigger(zap.NewNop(), gl)

	first, err := tr.EnsureTrigger(context.Background(), 1)
	require.NoError(t, err)
	second, err := tr.EnsureTrigger(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.TriggerDescription, first.Description)
	assert.Equal(t, 1, gl.CreatedTriggers)
	assert.Len(t, gl.Triggers[1], 2)
}

func TestEnsureTrigger_ReusesExisting(t *testing.T) {
	gl := domain.NewMockGitLab()
	gl.Triggers[1] = []domain.Trigger{{ID: 3, Description: domain.TriggerDescription, Token: "tok"}}

	got, err := NewPipelineTrigger(zap.NewNop(), gl).EnsureTrigger(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Zero(t, gl.CreatedTriggers)
}

func TestFire_UsesTriggerToken(t *testing.T) {
	gl := domain.NewMockGitLab()
	gl.Triggers[1] = []domain.Trigger{{ID: 3, Description: domain.TriggerDescription, Token: "tok"}}

	_, err := NewPipelineTrigger(zap.NewNop(), gl).Fire(context.Background(), domain.Project{ID: 1, Name: "api"}, "main")
	require.NoError(t, err)
	require.Len(t, gl.Triggered, 1)
	assert.Equal(t, domain.TriggerCall{ProjectID: 1, Ref: "main", Token: "tok"}, gl.Triggered[0])
}

func TestFire_RejectionIsReturned(t *testing.T) {
	gl := domain.NewMockGitLab()
	gl.TriggerErr = fmt.Errorf("gitlab 400 Bad Request: %w", domain.ErrTriggerRejected)

	_, err := NewPipelineTrigger(zap.NewNop(), gl).Fire(context.Background(), domain.Project{ID: 1, Name: "api"}, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTriggerRejected)
}
