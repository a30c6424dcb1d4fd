package domain

import "context"

type GitlabClient interface {
	SearchGroups(ctx context.Context, search string) ([]Group, error)
	ListSubgroups(ctx context.Context, groupID int64) ([]Group, error)
	ListGroupProjects(ctx context.Context, groupID int64, archived bool) ([]ProjectRef, error)
	GetProject(ctx context.Context, projectID int64) (Project, error)
	ListPipelines(ctx context.Context, projectID int64) ([]Pipeline, error)
	ListTriggers(ctx context.Context, projectID int64) ([]Trigger, error)
	CreateTrigger(ctx context.Context, projectID int64, description string) (Trigger, error)
	TriggerPipeline(ctx context.Context, projectID int64, ref, token string, variables map[string]string) (Pipeline, error)
	CountGroupIssues(ctx context.Context, groupID int64, state string) (int, error)
	CountGroupMergeRequests(ctx context.Context, groupID int64, state string) (int, error)
}

type Notifier interface {
	Notify(ctx context.Context, title, body, url string) error
}

type SnapshotWriter interface {
	Write(ctx context.Context, s DashboardSnapshot) error
}

type DashboardRenderer interface {
	Render(ctx context.Context, s DashboardSnapshot) error
}

type StatsSink interface {
	Append(ctx context.Context, s GroupStats) error
}
