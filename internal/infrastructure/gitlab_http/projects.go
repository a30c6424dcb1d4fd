package gitlab_http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/davarch/pipeline-bot/internal/domain"
)

type projectDTO struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	Description       string `json:"description"`
	DefaultBranch     string `json:"default_branch"`
	Archived          bool   `json:"archived"`
	ReadmeURL         string `json:"readme_url"`
	WebURL            string `json:"web_url"`
	LastActivityAt    string `json:"last_activity_at"`
}

func (p projectDTO) toDomain() domain.Project {
	out := domain.Project{
		ID:                p.ID,
		Name:              p.Name,
		PathWithNamespace: p.PathWithNamespace,
		Description:       p.Description,
		DefaultBranch:     p.DefaultBranch,
		Archived:          p.Archived,
		ReadmeURL:         p.ReadmeURL,
		WebURL:            p.WebURL,
	}
	if t, err := domain.ParseTimestamp(p.LastActivityAt); err == nil {
		out.LastActivityAt = t
	}
	return out
}

// ListGroupProjects returns the group's own projects in one archived state.
// The listing is abbreviated, so entries are group project refs.
func (c *Client) ListGroupProjects(ctx context.Context, groupID int64, archived bool) ([]domain.ProjectRef, error) {
	q := url.Values{"archived": {strconv.FormatBool(archived)}}
	list, err := getAll[projectDTO](ctx, c, fmt.Sprintf("/groups/%d/projects", groupID), q)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ProjectRef, 0, len(list))
	for _, p := range list {
		out = append(out, domain.ProjectRef{ID: p.ID, Name: p.Name, Kind: domain.KindGroupProject})
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, projectID int64) (domain.Project, error) {
	var p projectDTO
	if _, err := c.do(ctx, http.MethodGet, c.endpoint(fmt.Sprintf("/projects/%d", projectID), nil), nil, &p); err != nil {
		return domain.Project{}, err
	}
	return p.toDomain(), nil
}
