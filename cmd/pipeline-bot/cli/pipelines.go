package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/davarch/pipeline-bot/internal/application"
	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/davarch/pipeline-bot/internal/infrastructure/config"
	"github.com/davarch/pipeline-bot/internal/infrastructure/notify_libnotify"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const reloadDebounce = 300 * time.Millisecond

var (
	maxDays        int
	includeParents bool
	every          time.Duration
	notify         bool
	notifyStrict   bool
)

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines [<api-url> <token>]",
	Short: "Rebuild default branch pipelines older than --max-days",
	Args:  urlTokenArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd, args)
		if err != nil {
			return err
		}
		defer s.close()

		if err := applyBotFlags(cmd, &s.cfg); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		note := newNotifier(notify, notifyStrict)

		clk := clock.NewClock()
		uc := application.NewSweepUseCase(s.log, cmd.OutOrStdout(),
			application.NewGroupExpander(s.gl, s.cfg.Bot.IncludeParentGroups),
			application.NewProjectEnumerator(s.gl),
			application.NewFreshnessEvaluator(s.gl, clk),
			application.NewPipelineTrigger(s.log, s.gl),
			note,
		)

		opts := sweepOptions(s.cfg)
		if s.cfg.Bot.Every <= 0 {
			rep, err := uc.Run(ctx, opts)
			if err != nil {
				return err
			}
			s.log.Info("sweep finished",
				zap.String("group", rep.Group.FullName),
				zap.Int("projects", len(rep.Results)),
				zap.Int("stale", rep.Stale),
				zap.Int("triggered", rep.Triggered),
				zap.Int("failed", rep.Failed),
			)
			return nil
		}

		sched := application.NewScheduler(s.log, uc, opts, s.cfg.Bot.Every, s.cfg.Bot.PauseFile, clk)
		watchAndReload(ctx, cfgPath, s.log, sched, func() (application.SweepOptions, error) {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return application.SweepOptions{}, err
			}
			if err := applyBotFlags(cmd, &cfg); err != nil {
				return application.SweepOptions{}, err
			}
			return sweepOptions(cfg), nil
		})

		s.log.Info("start",
			zap.String("version", version),
			zap.String("group", opts.GroupName),
			zap.Int("max_days", opts.MaxDays),
			zap.Duration("every", s.cfg.Bot.Every),
			zap.String("gitlab", s.cfg.GitLab.BaseURL),
			zap.String("pause_file", s.cfg.Bot.PauseFile),
		)
		sched.Run(ctx)
		return nil
	},
}

func init() {
	f := pipelinesCmd.Flags()
	f.IntVar(&maxDays, "max-days", 10, "rebuild when the default branch pipeline is older than this many days")
	f.BoolVar(&includeParents, "include-parent-groups", false, "also sweep projects of groups that have subgroups")
	f.DurationVar(&every, "every", 0, "repeat the sweep at this interval (0 runs once)")
	f.BoolVar(&notify, "notify", false, "send a desktop notification for every triggered pipeline")
	f.BoolVar(&notifyStrict, "notify-strict", false, "log a warning when a notification cannot be delivered")
	addBoolPair(pipelinesCmd, "skip-archived", true, "ignore archived projects")
	addBoolPair(pipelinesCmd, "dry-run", false, "report stale projects without triggering")

	rootCmd.AddCommand(pipelinesCmd)
}

// applyBotFlags lays the flags the user actually set over cfg.
func applyBotFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("max-days") {
		if maxDays < 0 {
			return fmt.Errorf("--max-days must not be negative, got %d", maxDays)
		}
		cfg.Bot.MaxDays = maxDays
	}
	if f.Changed("include-parent-groups") {
		cfg.Bot.IncludeParentGroups = includeParents
	}
	if f.Changed("every") {
		cfg.Bot.Every = every
	}
	cfg.Bot.SkipArchived = boolPair(cmd, "skip-archived", cfg.Bot.SkipArchived)
	cfg.Bot.DryRun = boolPair(cmd, "dry-run", cfg.Bot.DryRun)
	return nil
}

// newNotifier returns an untyped nil when notifications are off.
func newNotifier(enabled, strict bool) domain.Notifier {
	if !enabled {
		return nil
	}
	opt := notify_libnotify.Options{Urgency: "low", Expire: 10 * time.Second}
	if strict {
		return notify_libnotify.New(opt)
	}
	return notify_libnotify.NewSoft(opt)
}

func sweepOptions(cfg config.Config) application.SweepOptions {
	return application.SweepOptions{
		GroupName:    cfg.Bot.GroupName,
		MaxDays:      cfg.Bot.MaxDays,
		SkipArchived: cfg.Bot.SkipArchived,
		DryRun:       cfg.Bot.DryRun,
	}
}

// watchAndReload re-reads the config file a moment after it settles and
// hands the new sweep options to the scheduler.
func watchAndReload(ctx context.Context, cfgPath string, log *zap.Logger, sched *application.Scheduler, reload func() (application.SweepOptions, error)) {
	if cfgPath == "" {
		return
	}

	dir := filepath.Dir(cfgPath)
	base := filepath.Base(cfgPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("fsnotify init failed", zap.Error(err))
		return
	}

	if err := w.Add(dir); err != nil {
		log.Warn("fsnotify add dir failed", zap.String("dir", dir), zap.Error(err))
		_ = w.Close()
		return
	}

	fire := func() {
		opts, err := reload()
		if err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		if opts.GroupName == "" {
			log.Warn("config reload: no group name, keeping previous options")
			return
		}
		sched.UpdateOptions(opts)
	}

	go func() {
		defer func() { _ = w.Close() }()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.AfterFunc(reloadDebounce, fire)
				} else {
					timer.Stop()
					timer.Reset(reloadDebounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("fsnotify error", zap.Error(err))
			}
		}
	}()
}
