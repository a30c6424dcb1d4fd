package gitlab_http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/davarch/pipeline-bot/internal/domain"
)

type groupDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	FullPath string `json:"full_path"`
	ParentID *int64 `json:"parent_id"`
}

func (g groupDTO) toDomain() domain.Group {
	out := domain.Group{ID: g.ID, Name: g.Name, FullName: g.FullName, FullPath: g.FullPath}
	if g.ParentID != nil {
		out.ParentID = *g.ParentID
	}
	return out
}

func (c *Client) SearchGroups(ctx context.Context, search string) ([]domain.Group, error) {
	list, err := getAll[groupDTO](ctx, c, "/groups", url.Values{"search": {search}})
	if err != nil {
		return nil, err
	}
	return mapGroups(list), nil
}

func (c *Client) ListSubgroups(ctx context.Context, groupID int64) ([]domain.Group, error) {
	list, err := getAll[groupDTO](ctx, c, fmt.Sprintf("/groups/%d/subgroups", groupID), nil)
	if err != nil {
		return nil, err
	}
	return mapGroups(list), nil
}

func mapGroups(list []groupDTO) []domain.Group {
	out := make([]domain.Group, 0, len(list))
	for _, g := range list {
		out = append(out, g.toDomain())
	}
	return out
}

func (c *Client) CountGroupIssues(ctx context.Context, groupID int64, state string) (int, error) {
	return c.count(ctx, fmt.Sprintf("/groups/%d/issues", groupID), state)
}

func (c *Client) CountGroupMergeRequests(ctx context.Context, groupID int64, state string) (int, error) {
	return c.count(ctx, fmt.Sprintf("/groups/%d/merge_requests", groupID), state)
}

// count asks for a one row page and reads X-Total, walking every page when
// GitLab does not send it.
func (c *Client) count(ctx context.Context, path, state string) (int, error) {
	q := url.Values{"state": {state}, "per_page": {"1"}}

	var first []struct {
		ID int64 `json:"id"`
	}
	hdr, err := c.do(ctx, http.MethodGet, c.endpoint(path, q), nil, &first)
	if err != nil {
		return 0, err
	}
	if n, ok := total(hdr); ok {
		return n, nil
	}

	all, err := getAll[struct {
		ID int64 `json:"id"`
	}](ctx, c, path, url.Values{"state": {state}})
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
