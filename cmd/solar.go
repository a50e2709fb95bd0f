package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/report"
)

var (
	solarFile string
	solarSave bool
	solarPDF  string
)

var solarCmd = &cobra.Command{
	Use:   "solar",
	Short: "Size a rooftop PV system and battery from a dwelling profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var p model.AuditProfile
		if err := readJSONFile(solarFile, &p); err != nil {
			return eris.Wrap(err, "solar: read profile")
		}

		a := report.BuildSolarAssessment(p)
		if solarSave {
			env, err := initEnv(ctx, config.ModeSolar, true)
			if err != nil {
				return err
			}
			defer env.Close()

			stored, err := env.Solar.Assess(ctx, p)
			if err != nil {
				return err
			}
			a = *stored
		}

		if solarPDF != "" {
			data, err := report.RenderSolarPDF(a)
			if err != nil {
				return err
			}
			if err := os.WriteFile(solarPDF, data, 0o644); err != nil {
				return eris.Wrapf(err, "solar: write %s", solarPDF)
			}
			zap.L().Info("solar report written", zap.String("path", solarPDF), zap.Int("bytes", len(data)))
		}

		return writeJSON(cmd.OutOrStdout(), a)
	},
}

func init() {
	solarCmd.Flags().StringVar(&solarFile, "file", "", "dwelling profile JSON file (- for stdin)")
	solarCmd.Flags().BoolVar(&solarSave, "save", false, "store the assessment")
	solarCmd.Flags().StringVar(&solarPDF, "pdf", "", "also write the report as PDF to this path")
	_ = solarCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(solarCmd)
}
