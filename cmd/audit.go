package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/report"
)

var (
	auditFile    string
	auditSave    bool
	auditOffline bool
	auditFormat  string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Estimate consumption, score efficiency and rank advice for a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var p model.AuditProfile
		if err := readJSONFile(auditFile, &p); err != nil {
			return eris.Wrap(err, "audit: read profile")
		}

		var r *model.AuditReport
		if auditSave {
			env, err := initEnv(ctx, config.ModeAudit, auditOffline)
			if err != nil {
				return err
			}
			defer env.Close()

			r, err = env.Audits.Submit(ctx, p)
			if err != nil {
				return err
			}
		} else {
			if err := cfg.Validate(config.ModeAudit); err != nil {
				return err
			}
			built := report.BuildAuditReport(ctx, initRanker(auditOffline, metrics.Default()), p)
			r = &built
		}

		if auditFormat == "text" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), report.FormatAuditReport(*r))
			return err
		}
		return writeJSON(cmd.OutOrStdout(), r)
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditFile, "file", "", "audit profile JSON file (- for stdin)")
	auditCmd.Flags().BoolVar(&auditSave, "save", false, "store the audit and its report")
	auditCmd.Flags().BoolVar(&auditOffline, "offline", false, "skip the advice service and use the fallback list")
	auditCmd.Flags().StringVar(&auditFormat, "format", "json", "output format: json or text")
	_ = auditCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(auditCmd)
}
