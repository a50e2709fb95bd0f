package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/report"
)

var (
	siteVisitFile   string
	siteVisitLead   string
	siteVisitFormat string
)

var siteVisitCmd = &cobra.Command{
	Use:   "site-visit",
	Short: "Score a technician checklist and build the field solar report",
	Long:  "Scores roof readiness and sizes a system from a site visit checklist. With --lead the visit and report are stored against that lead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var c model.SiteVisitChecklist
		if err := readJSONFile(siteVisitFile, &c); err != nil {
			return eris.Wrap(err, "site-visit: read checklist")
		}

		var r *model.SiteReport
		if siteVisitLead != "" {
			env, err := initEnv(ctx, config.ModeSiteVisit, true)
			if err != nil {
				return err
			}
			defer env.Close()

			r, err = env.Field.RecordVisit(ctx, siteVisitLead, c)
			if err != nil {
				return err
			}
		} else {
			built := report.BuildSiteReport(c)
			r = &built
		}

		if siteVisitFormat == "text" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), report.FormatSiteReport(*r))
			return err
		}
		return writeJSON(cmd.OutOrStdout(), r)
	},
}

func init() {
	siteVisitCmd.Flags().StringVar(&siteVisitFile, "file", "", "site visit checklist JSON file (- for stdin)")
	siteVisitCmd.Flags().StringVar(&siteVisitLead, "lead", "", "lead ID to store the visit against")
	siteVisitCmd.Flags().StringVar(&siteVisitFormat, "format", "json", "output format: json or text")
	_ = siteVisitCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(siteVisitCmd)
}
