package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// MockGitLab is an in-memory GitLab used by use case tests.
type MockGitLab struct {
	Groups        map[int64]Group
	Subgroups     map[int64][]int64
	GroupProjects map[int64][]ProjectRef
	Projects      map[int64]Project
	Pipelines     map[int64][]Pipeline
	Triggers      map[int64][]Trigger
	Issues        map[string]int
	MergeRequests map[string]int

	ProjectErr map[int64]error
	TriggerErr error

	Triggered       []TriggerCall
	CreatedTriggers int
	Called          int
}

type TriggerCall struct {
	ProjectID int64
	Ref       string
	Token     string
}

func NewMockGitLab() *MockGitLab {
	return &MockGitLab{
		Groups:        map[int64]Group{},
		Subgroups:     map[int64][]int64{},
		GroupProjects: map[int64][]ProjectRef{},
		Projects:      map[int64]Project{},
		Pipelines:     map[int64][]Pipeline{},
		Triggers:      map[int64][]Trigger{},
		Issues:        map[string]int{},
		MergeRequests: map[string]int{},
		ProjectErr:    map[int64]error{},
	}
}

// AddGroup registers a group under parent. A zero parent makes it a root.
func (m *MockGitLab) AddGroup(g Group) {
	m.Groups[g.ID] = g
	if g.ParentID != 0 {
		m.Subgroups[g.ParentID] = append(m.Subgroups[g.ParentID], g.ID)
	}
}

// AddProject registers p as a project of groupID.
func (m *MockGitLab) AddProject(groupID int64, p Project, pipelines ...Pipeline) {
	m.Projects[p.ID] = p
	m.GroupProjects[groupID] = append(m.GroupProjects[groupID], ProjectRef{ID: p.ID, Name: p.Name, Kind: KindGroupProject})
	if len(pipelines) > 0 {
		m.Pipelines[p.ID] = pipelines
	}
}

func (m *MockGitLab) SearchGroups(_ context.Context, search string) ([]Group, error) {
	m.Called++
	var out []Group
	for _, g := range m.Groups {
		if strings.Contains(strings.ToLower(g.FullName), strings.ToLower(search)) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MockGitLab) ListSubgroups(_ context.Context, groupID int64) ([]Group, error) {
	m.Called++
	var out []Group
	for _, id := range m.Subgroups[groupID] {
		out = append(out, m.Groups[id])
	}
	return out, nil
}

func (m *MockGitLab) ListGroupProjects(_ context.Context, groupID int64, archived bool) ([]ProjectRef, error) {
	m.Called++
	var out []ProjectRef
	for _, ref := range m.GroupProjects[groupID] {
		p, ok := m.Projects[ref.ID]
		if ok && p.Archived != archived {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

func (m *MockGitLab) GetProject(_ context.Context, projectID int64) (Project, error) {
	m.Called++
	if err := m.ProjectErr[projectID]; err != nil {
		return Project{}, err
	}
	p, ok := m.Projects[projectID]
	if !ok {
		return Project{}, &NotFoundError{Kind: "project", Name: strconv.FormatInt(projectID, 10)}
	}
	return p, nil
}

func (m *MockGitLab) ListPipelines(_ context.Context, projectID int64) ([]Pipeline, error) {
	m.Called++
	return m.Pipelines[projectID], nil
}

func (m *MockGitLab) ListTriggers(_ context.Context, projectID int64) ([]Trigger, error) {
	m.Called++
	return m.Triggers[projectID], nil
}

func (m *MockGitLab) CreateTrigger(_ context.Context, projectID int64, description string) (Trigger, error) {
	m.Called++
	m.CreatedTriggers++
	t := Trigger{
		ID:          int64(m.CreatedTriggers),
		Description: description,
		Token:       fmt.Sprintf("token-%d-%d", projectID, m.CreatedTriggers),
	}
	m.Triggers[projectID] = append(m.Triggers[projectID], t)
	return t, nil
}

func (m *MockGitLab) TriggerPipeline(_ context.Context, projectID int64, ref, token string, _ map[string]string) (Pipeline, error) {
	m.Called++
	if m.TriggerErr != nil {
		return Pipeline{}, m.TriggerErr
	}
	m.Triggered = append(m.Triggered, TriggerCall{ProjectID: projectID, Ref: ref, Token: token})
	return Pipeline{ID: int64(len(m.Triggered)), Ref: ref, Status: StatusPending}, nil
}

func (m *MockGitLab) CountGroupIssues(_ context.Context, _ int64, state string) (int, error) {
	m.Called++
	return m.Issues[state], nil
}

func (m *MockGitLab) CountGroupMergeRequests(_ context.Context, _ int64, state string) (int, error) {
	m.Called++
	return m.MergeRequests[state], nil
}

type MockNotifier struct {
	Messages []string
	Err      error
}

func (n *MockNotifier) Notify(ctx context.Context, title, body, url string) error {
	n.Messages = append(n.Messages, title+"|"+body+"|"+url)
	return n.Err
}

type MockSnapshotWriter struct {
	Snapshots []DashboardSnapshot
	Err       error
}

func (c *MockSnapshotWriter) Write(ctx context.Context, s DashboardSnapshot) error {
	if c.Err != nil {
		return c.Err
	}
	c.Snapshots = append(c.Snapshots, s)
	return nil
}

func (c *MockSnapshotWriter) Render(ctx context.Context, s DashboardSnapshot) error {
	return c.Write(ctx, s)
}

type MockStatsSink struct {
	Rows []GroupStats
	Err  error
}

func (s *MockStatsSink) Append(ctx context.Context, row GroupStats) error {
	if s.Err != nil {
		return s.Err
	}
	s.Rows = append(s.Rows, row)
	return nil
}
