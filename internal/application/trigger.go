package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/davarch/pipeline-bot/internal/domain"
	"go.uber.org/zap"
)

type PipelineTrigger struct {
	log *zap.Logger
	gl  domain.GitlabClient
}

func NewPipelineTrigger(l *zap.Logger, gl domain.GitlabClient) *PipelineTrigger {
	return &PipelineTrigger{log: l, gl: gl}
}

// EnsureTrigger returns the bot trigger of the project, creating it on
// first use.
func (t *PipelineTrigger) EnsureTrigger(ctx context.Context, projectID int64) (domain.Trigger, error) {
	triggers, err := t.gl.ListTriggers(ctx, projectID)
	if err != nil {
		return domain.Trigger{}, fmt.Errorf("list triggers of project %d: %w", projectID, err)
	}

	for _, tr := range triggers {
		if tr.Description == domain.TriggerDescription {
			return tr, nil
		}
	}

	tr, err := t.gl.CreateTrigger(ctx, projectID, domain.TriggerDescription)
	if err != nil {
		return domain.Trigger{}, fmt.Errorf("create trigger for project %d: %w", projectID, err)
	}
	t.log.Info("trigger created", zap.Int64("project", projectID), zap.Int64("trigger", tr.ID))

	return tr, nil
}

// Fire starts a pipeline on ref through the bot trigger.
func (t *PipelineTrigger) Fire(ctx context.Context, p domain.Project, ref string) (domain.Pipeline, error) {
	tr, err := t.EnsureTrigger(ctx, p.ID)
	if err != nil {
		return domain.Pipeline{}, err
	}

	pipe, err := t.gl.TriggerPipeline(ctx, p.ID, ref, tr.Token, map[string]string{})
	if err != nil {
		if errors.Is(err, domain.ErrTriggerRejected) {
			t.log.Warn("pipeline trigger rejected",
				zap.Int64("project", p.ID),
				zap.String("ref", ref),
				zap.Error(err),
			)
		}
		return domain.Pipeline{}, fmt.Errorf("trigger pipeline for %s on %s: %w", p.Name, ref, err)
	}

	t.log.Debug("pipeline triggered",
		zap.Int64("project", p.ID),
		zap.String("ref", ref),
		zap.Int64("pipeline", pipe.ID),
	)
	return pipe, nil
}
