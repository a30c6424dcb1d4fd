package gitlab_http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/davarch/pipeline-bot/internal/domain"
)

// pipelinePage is the size of the single most-recent-first page read for a
// project. Older pipelines never decide freshness.
const pipelinePage = "20"

type pipelineDTO struct {
	ID        int64  `json:"id"`
	Ref       string `json:"ref"`
	Status    string `json:"status"`
	WebURL    string `json:"web_url"`
	UpdatedAt string `json:"updated_at"`
}

func (p pipelineDTO) toDomain() (domain.Pipeline, error) {
	out := domain.Pipeline{
		ID:     p.ID,
		Ref:    p.Ref,
		Status: mapStatus(p.Status),
		WebURL: p.WebURL,
	}
	if p.UpdatedAt == "" {
		return out, nil
	}

	t, err := domain.ParseTimestamp(p.UpdatedAt)
	if err != nil {
		return out, fmt.Errorf("pipeline %d: %w", p.ID, err)
	}
	out.UpdatedAt = t
	return out, nil
}

func (c *Client) ListPipelines(ctx context.Context, projectID int64) ([]domain.Pipeline, error) {
	q := url.Values{"per_page": {pipelinePage}, "order_by": {"id"}, "sort": {"desc"}}

	var list []pipelineDTO
	path := fmt.Sprintf("/projects/%d/pipelines", projectID)
	if _, err := c.do(ctx, http.MethodGet, c.endpoint(path, q), nil, &list); err != nil {
		return nil, err
	}

	out := make([]domain.Pipeline, 0, len(list))
	for _, p := range list {
		dp, err := p.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, dp)
	}
	return out, nil
}

type triggerDTO struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Token       string `json:"token"`
}

func (c *Client) ListTriggers(ctx context.Context, projectID int64) ([]domain.Trigger, error) {
	list, err := getAll[triggerDTO](ctx, c, fmt.Sprintf("/projects/%d/triggers", projectID), nil)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Trigger, 0, len(list))
	for _, t := range list {
		out = append(out, domain.Trigger{ID: t.ID, Description: t.Description, Token: t.Token})
	}
	return out, nil
}

func (c *Client) CreateTrigger(ctx context.Context, projectID int64, description string) (domain.Trigger, error) {
	var t triggerDTO
	form := url.Values{"description": {description}}
	path := fmt.Sprintf("/projects/%d/triggers", projectID)
	if _, err := c.do(ctx, http.MethodPost, c.endpoint(path, nil), form, &t); err != nil {
		return domain.Trigger{}, err
	}
	return domain.Trigger{ID: t.ID, Description: t.Description, Token: t.Token}, nil
}

// TriggerPipeline creates a pipeline on ref. Answers GitLab uses to refuse
// the request itself (bad ref, nothing to run) wrap domain.ErrTriggerRejected.
func (c *Client) TriggerPipeline(ctx context.Context, projectID int64, ref, token string, variables map[string]string) (domain.Pipeline, error) {
	form := url.Values{"token": {token}, "ref": {ref}}
	for k, v := range variables {
		form.Set("variables["+k+"]", v)
	}

	var p pipelineDTO
	path := fmt.Sprintf("/projects/%d/trigger/pipeline", projectID)
	if _, err := c.do(ctx, http.MethodPost, c.endpoint(path, nil), form, &p); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isRejection(apiErr.StatusCode) {
			return domain.Pipeline{}, fmt.Errorf("%w: %w", domain.ErrTriggerRejected, err)
		}
		return domain.Pipeline{}, err
	}

	out, err := p.toDomain()
	if err != nil {
		return domain.Pipeline{}, err
	}
	return out, nil
}

func isRejection(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

func mapStatus(s string) domain.PipelineStatus {
	switch s {
	case "success":
		return domain.StatusSuccess
	case "failed":
		return domain.StatusFailed
	case "running":
		return domain.StatusRunning
	case "pending", "waiting_for_resource", "preparing", "scheduled":
		return domain.StatusPending
	case "canceled", "canceling":
		return domain.StatusCancelled
	case "skipped":
		return domain.StatusSkipped
	case "manual":
		return domain.StatusManual
	case "created":
		return domain.StatusCreated
	default:
		return domain.StatusOther
	}
}
