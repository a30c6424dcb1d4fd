package application

import (
	"context"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/davarch/pipeline-bot/internal/domain"
)

const day = 24 * time.Hour

type FreshnessEvaluator struct {
	gl    domain.GitlabClient
	clock clock.Clock
}

func NewFreshnessEvaluator(gl domain.GitlabClient, clk clock.Clock) *FreshnessEvaluator {
	return &FreshnessEvaluator{gl: gl, clock: clk}
}

// Check fetches the pipelines of p and evaluates them.
func (e *FreshnessEvaluator) Check(ctx context.Context, p domain.Project, maxDays int) (domain.Freshness, error) {
	pipes, err := e.gl.ListPipelines(ctx, p.ID)
	if err != nil {
		return domain.Freshness{}, fmt.Errorf("list pipelines of project %d: %w", p.ID, err)
	}
	return e.Evaluate(p, pipes, maxDays), nil
}

// Evaluate classifies the latest default branch pipeline. A pipeline last
// updated exactly maxDays ago is still fresh.
func (e *FreshnessEvaluator) Evaluate(p domain.Project, pipelines []domain.Pipeline, maxDays int) domain.Freshness {
	if len(pipelines) == 0 {
		return domain.Freshness{IsFresh: true, Outcome: domain.OutcomeNoPipelines}
	}

	latest, ok := domain.LatestOnRef(pipelines, p.DefaultBranch)
	if !ok {
		return domain.Freshness{IsFresh: true, Outcome: domain.OutcomeNoDefaultBranchPipeline}
	}

	elapsed := e.clock.Now().Sub(latest.UpdatedAt)

	return domain.Freshness{
		IsFresh:     elapsed <= time.Duration(maxDays)*day,
		ElapsedDays: floorDays(elapsed),
		Outcome:     domain.OutcomeEvaluated,
		Pipeline:    &latest,
	}
}

func floorDays(d time.Duration) int {
	n := d / day
	if d < 0 && d%day != 0 {
		n--
	}
	return int(n)
}
