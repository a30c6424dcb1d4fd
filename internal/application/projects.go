package application

import (
	"context"
	"fmt"

	"github.com/davarch/pipeline-bot/internal/domain"
)

type ProjectEnumerator struct {
	gl domain.GitlabClient
}

func NewProjectEnumerator(gl domain.GitlabClient) *ProjectEnumerator {
	return &ProjectEnumerator{gl: gl}
}

// ListRefs returns the projects of every group in groupIDs. Archived
// projects are added on top of the active ones unless skipArchived is set.
func (e *ProjectEnumerator) ListRefs(ctx context.Context, groupIDs []int64, skipArchived bool) ([]domain.ProjectRef, error) {
	var (
		out  []domain.ProjectRef
		seen = map[int64]bool{}
	)

	add := func(refs []domain.ProjectRef) {
		for _, r := range refs {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}

	for _, gid := range groupIDs {
		active, err := e.gl.ListGroupProjects(ctx, gid, false)
		if err != nil {
			return nil, fmt.Errorf("list projects of group %d: %w", gid, err)
		}
		add(active)

		if skipArchived {
			continue
		}

		archived, err := e.gl.ListGroupProjects(ctx, gid, true)
		if err != nil {
			return nil, fmt.Errorf("list archived projects of group %d: %w", gid, err)
		}
		add(archived)
	}

	return out, nil
}

// Resolve turns an abbreviated group listing entry into a full project.
func (e *ProjectEnumerator) Resolve(ctx context.Context, ref domain.ProjectRef) (domain.Project, error) {
	switch ref.Kind {
	case domain.KindGroupProject:
		p, err := e.gl.GetProject(ctx, ref.ID)
		if err != nil {
			return domain.Project{}, fmt.Errorf("get project %d: %w", ref.ID, err)
		}
		return p, nil
	case domain.KindProject:
		if ref.Full == nil {
			return domain.Project{}, &domain.InternalInvariantError{Reason: fmt.Sprintf("project %d has no attributes", ref.ID)}
		}
		return *ref.Full, nil
	default:
		return domain.Project{}, &domain.InternalInvariantError{
			Reason: fmt.Sprintf("unknown project kind %q for project %d, check API change", ref.Kind, ref.ID),
		}
	}
}

// Enumerate lists and resolves every project. The first failure aborts.
func (e *ProjectEnumerator) Enumerate(ctx context.Context, groupIDs []int64, skipArchived bool) ([]domain.Project, error) {
	refs, err := e.ListRefs(ctx, groupIDs, skipArchived)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(refs))
	for _, r := range refs {
		p, err := e.Resolve(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, nil
}
