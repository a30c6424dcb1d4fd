package domain

import "time"

type PipelineStatus string

const (
	StatusSuccess   PipelineStatus = "success"
	StatusFailed    PipelineStatus = "failed"
	StatusRunning   PipelineStatus = "running"
	StatusPending   PipelineStatus = "pending"
	StatusCancelled PipelineStatus = "canceled"
	StatusSkipped   PipelineStatus = "skipped"
	StatusManual    PipelineStatus = "manual"
	StatusCreated   PipelineStatus = "created"
	StatusOther     PipelineStatus = "other"
)

// TriggerDescription tags the trigger credential owned by the bot.
const TriggerDescription = "bot_trigger_id"

type Group struct {
	ID       int64
	Name     string
	FullName string
	FullPath string
	ParentID int64
}

type ProjectKind string

const (
	KindGroupProject ProjectKind = "group_project"
	KindProject      ProjectKind = "project"
)

// ProjectRef is a project as seen from a group listing. Only Full is set
// when Kind is KindProject.
type ProjectRef struct {
	ID   int64
	Name string
	Kind ProjectKind
	Full *Project
}

type Project struct {
	ID                int64
	Name              string
	PathWithNamespace string
	Description       string
	DefaultBranch     string
	Archived          bool
	ReadmeURL         string
	WebURL            string
	LastActivityAt    time.Time
}

type Pipeline struct {
	ID        int64
	Ref       string
	Status    PipelineStatus
	UpdatedAt time.Time
	WebURL    string
}

type Trigger struct {
	ID          int64
	Description string
	Token       string
}

type FreshnessOutcome string

const (
	OutcomeNoPipelines             FreshnessOutcome = "no_pipelines"
	OutcomeNoDefaultBranchPipeline FreshnessOutcome = "no_default_branch_pipeline"
	OutcomeEvaluated               FreshnessOutcome = "evaluated"
)

// Freshness is the verdict for one project. Pipeline is nil unless Outcome
// is OutcomeEvaluated.
type Freshness struct {
	IsFresh     bool
	ElapsedDays int
	Outcome     FreshnessOutcome
	Pipeline    *Pipeline
}

type GroupStats struct {
	Group                string
	Date                 string
	TotalProjects        int
	NonArchivedProjects  int
	ProjectsWithPipeline int
	ProjectsWithOKPipe   int
	ProjectsWithNOKPipe  int
	ProjectsWithReadme   int
	OpenIssues           int
	ClosedIssues         int
	OpenMergeRequests    int
	MergedMergeRequests  int
}

type DashboardRow struct {
	Project              Project
	PipelineStatus       string
	PipelineWebURL       string
	MasterPipelineStatus string
	MasterPipelineWebURL string
}

type DashboardSnapshot struct {
	GroupName   string
	GeneratedAt time.Time
	Rows        []DashboardRow
}

// LatestOnRef returns the first pipeline built from ref. Pipelines are
// expected most-recent-first.
func LatestOnRef(pipelines []Pipeline, ref string) (Pipeline, bool) {
	for _, p := range pipelines {
		if p.Ref == ref {
			return p, true
		}
	}
	return Pipeline{}, false
}
