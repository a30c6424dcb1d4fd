package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"code.cloudfoundry.org/clock"
	"github.com/davarch/pipeline-bot/internal/application"
	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/davarch/pipeline-bot/internal/infrastructure/config"
	"github.com/davarch/pipeline-bot/internal/infrastructure/stats_csv"
	"github.com/davarch/pipeline-bot/internal/infrastructure/stats_sqlite"
	"github.com/spf13/cobra"
)

var (
	csvFilename  string
	dbPath       string
	historyLimit int
	historyJSON  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [<api-url> <token>]",
	Short: "Append one row of group statistics to the CSV file (and the history db)",
	Args:  urlTokenArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd, args)
		if err != nil {
			return err
		}
		defer s.close()

		applyStatsFlags(cmd, &s.cfg)

		sinks := []domain.StatsSink{stats_csv.New(s.cfg.Stats.CSVFile)}
		if s.cfg.Stats.DBPath != "" {
			db, err := stats_sqlite.Open(cmd.Context(), s.cfg.Stats.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			sinks = append(sinks, stats_sqlite.NewStatsRepo(db))
		}

		uc := application.NewStatsUseCase(s.log, s.gl,
			application.NewGroupExpander(s.gl, s.cfg.Bot.IncludeParentGroups),
			application.NewProjectEnumerator(s.gl),
			clock.NewClock(),
			sinks...,
		)

		st, err := uc.Run(cmd.Context(), s.cfg.Bot.GroupName)
		if err != nil {
			return err
		}

		return printStats(cmd.OutOrStdout(), st)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the latest statistics rows recorded in the history db",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		applyStatsFlags(cmd, &cfg)

		if cfg.Stats.DBPath == "" {
			return errors.New("history needs --db or stats.db_path")
		}
		if cfg.Bot.GroupName == "" {
			return errors.New("group name is required (--group-name or GITLAB_GROUP)")
		}

		db, err := stats_sqlite.Open(cmd.Context(), cfg.Stats.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		rows, err := stats_sqlite.NewStatsRepo(db).Latest(cmd.Context(), cfg.Bot.GroupName, historyLimit)
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "DATE\tTOTAL\tACTIVE\tWITH_PIPE\tOK\tNOK\tREADME\tISSUES\tCLOSED\tMRS\tMERGED")
		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
				r.Date, r.TotalProjects, r.NonArchivedProjects, r.ProjectsWithPipeline,
				r.ProjectsWithOKPipe, r.ProjectsWithNOKPipe, r.ProjectsWithReadme,
				r.OpenIssues, r.ClosedIssues, r.OpenMergeRequests, r.MergedMergeRequests)
		}
		return w.Flush()
	},
}

func init() {
	statsCmd.PersistentFlags().StringVar(&csvFilename, "csv-filename", "gitlab_stats.csv", "CSV file the row is appended to")
	statsCmd.PersistentFlags().StringVar(&dbPath, "db", "", "optional SQLite file keeping the statistics history")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of rows to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print JSON")

	statsCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

func applyStatsFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("csv-filename") {
		cfg.Stats.CSVFile = csvFilename
	}
	if cmd.Flags().Changed("db") {
		cfg.Stats.DBPath = dbPath
	}
}

func printStats(out io.Writer, st domain.GroupStats) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, kv := range []struct {
		k string
		v any
	}{
		{"group", st.Group},
		{"date", st.Date},
		{"total_projects", st.TotalProjects},
		{"non_archived_projects", st.NonArchivedProjects},
		{"projects_with_pipeline", st.ProjectsWithPipeline},
		{"projects_with_ok_pipe", st.ProjectsWithOKPipe},
		{"projects_with_nok_pipe", st.ProjectsWithNOKPipe},
		{"projects_with_readme", st.ProjectsWithReadme},
		{"open_issues", st.OpenIssues},
		{"closed_issues", st.ClosedIssues},
		{"open_merge_requests", st.OpenMergeRequests},
		{"merged_merge_requests", st.MergedMergeRequests},
	} {
		_, _ = fmt.Fprintf(w, "%s:\t%v\n", kv.k, kv.v)
	}
	return w.Flush()
}
