package cli

import (
	"fmt"

	"code.cloudfoundry.org/clock"
	"github.com/davarch/pipeline-bot/internal/application"
	"github.com/davarch/pipeline-bot/internal/infrastructure/cache_fs"
	"github.com/davarch/pipeline-bot/internal/infrastructure/dashboard_html"
	"github.com/spf13/cobra"
)

var (
	dataFile string
	outDir   string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [<api-url> <token>]",
	Short: "Write the group status snapshot and render it as an HTML page",
	Args:  urlTokenArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd, args)
		if err != nil {
			return err
		}
		defer s.close()

		if cmd.Flags().Changed("data-file") {
			s.cfg.Dashboard.DataFile = dataFile
		}
		if cmd.Flags().Changed("out-dir") {
			s.cfg.Dashboard.OutDir = outDir
		}
		skip := boolPair(cmd, "skip-archived", s.cfg.Bot.SkipArchived)

		r, err := dashboard_html.New(s.cfg.Dashboard.OutDir)
		if err != nil {
			return err
		}

		uc := application.NewDashboardUseCase(s.log, s.gl,
			application.NewGroupExpander(s.gl, s.cfg.Bot.IncludeParentGroups),
			application.NewProjectEnumerator(s.gl),
			clock.NewClock(),
			cache_fs.New(s.cfg.Dashboard.DataFile),
			r,
		)

		snap, err := uc.Run(cmd.Context(), s.cfg.Bot.GroupName, skip)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d projects written to %s and %s\n",
			len(snap.Rows), s.cfg.Dashboard.DataFile, r.Path())
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dataFile, "data-file", "data.json", "JSON snapshot of the dashboard rows")
	dashboardCmd.Flags().StringVar(&outDir, "out-dir", "html", "directory the HTML page is rendered into")
	addBoolPair(dashboardCmd, "skip-archived", true, "leave archived projects out of the dashboard")

	rootCmd.AddCommand(dashboardCmd)
}
