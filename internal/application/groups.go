package application

import (
	"context"
	"fmt"

	"github.com/davarch/pipeline-bot/internal/domain"
)

// GroupExpander resolves a group name into the ids of the groups whose
// projects are processed.
type GroupExpander struct {
	gl             domain.GitlabClient
	includeParents bool
}

func NewGroupExpander(gl domain.GitlabClient, includeParents bool) *GroupExpander {
	return &GroupExpander{gl: gl, includeParents: includeParents}
}

// FindGroup returns the group whose full name is exactly fullName.
func (e *GroupExpander) FindGroup(ctx context.Context, fullName string) (domain.Group, error) {
	groups, err := e.gl.SearchGroups(ctx, fullName)
	if err != nil {
		return domain.Group{}, fmt.Errorf("search group %q: %w", fullName, err)
	}

	for _, g := range groups {
		if g.FullName == fullName {
			return g, nil
		}
	}

	return domain.Group{}, &domain.NotFoundError{Kind: "group", Name: fullName}
}

// Expand walks the subgroup tree below root. Groups without subgroups are
// always part of the result; groups with subgroups only when includeParents
// is set. Every id appears once, even when the tree has diamonds or cycles.
func (e *GroupExpander) Expand(ctx context.Context, root domain.Group) ([]int64, error) {
	var (
		out     []int64
		visited = map[int64]bool{}
		stack   = []domain.Group{root}
	)

	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[g.ID] {
			continue
		}
		visited[g.ID] = true

		subs, err := e.gl.ListSubgroups(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("list subgroups of %d: %w", g.ID, err)
		}

		if len(subs) == 0 || e.includeParents {
			out = append(out, g.ID)
		}

		for i := len(subs) - 1; i >= 0; i-- {
			if !visited[subs[i].ID] {
				stack = append(stack, subs[i])
			}
		}
	}

	return out, nil
}

// Resolve finds the group named fullName and expands it.
func (e *GroupExpander) Resolve(ctx context.Context, fullName string) (domain.Group, []int64, error) {
	root, err := e.FindGroup(ctx, fullName)
	if err != nil {
		return domain.Group{}, nil, err
	}

	ids, err := e.Expand(ctx, root)
	if err != nil {
		return domain.Group{}, nil, err
	}

	return root, ids, nil
}
