package application

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

type SweepOptions struct {
	GroupName    string
	MaxDays      int
	SkipArchived bool
	DryRun       bool
}

type ProjectResult struct {
	Project   domain.Project
	Freshness domain.Freshness
	Triggered bool
	Err       error
}

type SweepReport struct {
	Group     domain.Group
	Results   []ProjectResult
	Stale     int
	Triggered int
	Failed    int
}

// SweepUseCase checks every project of a group and rebuilds the ones whose
// default branch pipeline is stale.
type SweepUseCase struct {
	log       *zap.Logger
	out       io.Writer
	groups    *GroupExpander
	projects  *ProjectEnumerator
	freshness *FreshnessEvaluator
	trigger   *PipelineTrigger
	note      domain.Notifier
}

func NewSweepUseCase(
	l *zap.Logger,
	out io.Writer,
	groups *GroupExpander,
	projects *ProjectEnumerator,
	freshness *FreshnessEvaluator,
	trigger *PipelineTrigger,
	note domain.Notifier,
) *SweepUseCase {
	return &SweepUseCase{
		log: l, out: out,
		groups: groups, projects: projects, freshness: freshness, trigger: trigger,
		note: note,
	}
}

var (
	staleColor = color.New(color.FgYellow)
	infoColor  = color.New(color.FgCyan)
	errColor   = color.New(color.FgRed)
)

// Run sweeps the group once. Group resolution failures and API contract
// violations abort the sweep; any other per project failure is recorded
// and the sweep moves on.
func (uc *SweepUseCase) Run(ctx context.Context, opts SweepOptions) (SweepReport, error) {
	root, ids, err := uc.groups.Resolve(ctx, opts.GroupName)
	if err != nil {
		return SweepReport{}, err
	}

	refs, err := uc.projects.ListRefs(ctx, ids, opts.SkipArchived)
	if err != nil {
		return SweepReport{}, err
	}

	uc.log.Info("sweep",
		zap.String("group", root.FullName),
		zap.Int("groups", len(ids)),
		zap.Int("projects", len(refs)),
		zap.Int("max_days", opts.MaxDays),
		zap.Bool("dry_run", opts.DryRun),
	)

	rep := SweepReport{Group: root}
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		res, err := uc.sweepOne(ctx, ref, opts)
		if errors.Is(err, domain.ErrInternalInvariant) {
			return rep, err
		}
		if err != nil {
			res.Err = err
			rep.Failed++
			uc.log.Warn("project failed",
				zap.Int64("project", ref.ID),
				zap.String("name", ref.Name),
				zap.Error(err),
			)
		}
		if !res.Freshness.IsFresh && res.Freshness.Outcome != "" {
			rep.Stale++
		}
		if res.Triggered {
			rep.Triggered++
		}
		rep.Results = append(rep.Results, res)
	}

	return rep, nil
}

func (uc *SweepUseCase) sweepOne(ctx context.Context, ref domain.ProjectRef, opts SweepOptions) (ProjectResult, error) {
	p, err := uc.projects.Resolve(ctx, ref)
	if err != nil {
		return ProjectResult{Project: domain.Project{ID: ref.ID, Name: ref.Name}}, err
	}
	res := ProjectResult{Project: p}

	f, err := uc.freshness.Check(ctx, p, opts.MaxDays)
	if err != nil {
		return res, err
	}
	res.Freshness = f

	uc.log.Debug("freshness",
		zap.Int64("project", p.ID),
		zap.String("outcome", string(f.Outcome)),
		zap.Bool("fresh", f.IsFresh),
		zap.Int("elapsed_days", f.ElapsedDays),
	)

	if f.IsFresh {
		return res, nil
	}

	_, _ = staleColor.Fprintf(uc.out, "Pipeline for project %s is %d days old, needs updating\n", p.Name, f.ElapsedDays)
	if opts.DryRun {
		_, _ = infoColor.Fprintln(uc.out, "Dry run mode, not triggering pipeline")
		return res, nil
	}

	_, _ = infoColor.Fprintln(uc.out, "Triggering pipeline ...")
	pipe, err := uc.trigger.Fire(ctx, p, p.DefaultBranch)
	if err != nil {
		_, _ = errColor.Fprintf(uc.out, "There was an error when triggering the pipeline: %v\n", err)
		return res, err
	}
	res.Triggered = true

	if uc.note != nil {
		body := "Pipeline #" + strconv.FormatInt(pipe.ID, 10) + " (" + p.DefaultBranch + ")"
		if err := uc.note.Notify(ctx, "▶️ CI: rebuilt "+p.Name, body, pipe.WebURL); err != nil {
			uc.log.Warn("notification failed", zap.Int64("project", p.ID), zap.Error(err))
		}
	}

	return res, nil
}
