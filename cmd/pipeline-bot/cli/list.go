package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"code.cloudfoundry.org/clock"
	"github.com/davarch/pipeline-bot/internal/application"
	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/spf13/cobra"
)

var (
	listOnlyStale bool
	listOnlyFresh bool
	listJSON      bool
)

type listItem struct {
	Name          string                  `json:"name"`
	ProjectID     int64                   `json:"project_id"`
	DefaultBranch string                  `json:"default_branch"`
	Archived      bool                    `json:"archived"`
	Fresh         bool                    `json:"fresh"`
	ElapsedDays   int                     `json:"elapsed_days"`
	Outcome       domain.FreshnessOutcome `json:"outcome"`
	PipelineURL   string                  `json:"pipeline_url,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list [<api-url> <token>]",
	Short: "List the group projects with the age of their default branch pipeline",
	Args:  urlTokenArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if listOnlyStale && listOnlyFresh {
			return fmt.Errorf("flags --stale and --fresh are mutually exclusive")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd, args)
		if err != nil {
			return err
		}
		defer s.close()

		if err := applyBotFlags(cmd, &s.cfg); err != nil {
			return err
		}

		_, ids, err := application.NewGroupExpander(s.gl, s.cfg.Bot.IncludeParentGroups).Resolve(cmd.Context(), s.cfg.Bot.GroupName)
		if err != nil {
			return err
		}

		projects, err := application.NewProjectEnumerator(s.gl).Enumerate(cmd.Context(), ids, s.cfg.Bot.SkipArchived)
		if err != nil {
			return err
		}

		ev := application.NewFreshnessEvaluator(s.gl, clock.NewClock())
		items := make([]listItem, 0, len(projects))
		for _, p := range projects {
			fr, err := ev.Check(cmd.Context(), p, s.cfg.Bot.MaxDays)
			if err != nil {
				return err
			}
			if (listOnlyStale && fr.IsFresh) || (listOnlyFresh && !fr.IsFresh) {
				continue
			}

			it := listItem{
				Name:          p.PathWithNamespace,
				ProjectID:     p.ID,
				DefaultBranch: p.DefaultBranch,
				Archived:      p.Archived,
				Fresh:         fr.IsFresh,
				ElapsedDays:   fr.ElapsedDays,
				Outcome:       fr.Outcome,
			}
			if fr.Pipeline != nil {
				it.PipelineURL = fr.Pipeline.WebURL
			}
			items = append(items, it)
		}

		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tPROJECT_ID\tBRANCH\tARCHIVED\tDAYS\tFRESH\tOUTCOME")
		for _, it := range items {
			branch := it.DefaultBranch
			if branch == "" {
				branch = "(none)"
			}
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%t\t%d\t%t\t%s\n",
				it.Name, it.ProjectID, branch, it.Archived, it.ElapsedDays, it.Fresh, it.Outcome)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVar(&listOnlyStale, "stale", false, "show only projects that need a rebuild")
	listCmd.Flags().BoolVar(&listOnlyFresh, "fresh", false, "show only fresh projects")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
	listCmd.Flags().IntVar(&maxDays, "max-days", 10, "age in days after which a pipeline is stale")
	listCmd.Flags().BoolVar(&includeParents, "include-parent-groups", false, "also list projects of groups that have subgroups")
	addBoolPair(listCmd, "skip-archived", true, "ignore archived projects")

	rootCmd.AddCommand(listCmd)
}
