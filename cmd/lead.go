package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/lead"
	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/model"
)

var leadInput model.Lead

var leadBillRange string

var leadCmd = &cobra.Command{
	Use:   "lead",
	Short: "Request a professional on-site audit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, config.ModeLead, true)
		if err != nil {
			return err
		}
		defer env.Close()

		in := leadInput
		in.BillRange = model.BillRange(leadBillRange)
		l, err := createLead(ctx, env, in)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), l)
	},
}

// createLead validates and stores a lead submission.
func createLead(ctx context.Context, env *appEnv, in model.Lead) (*model.Lead, error) {
	l, err := lead.New(in)
	if err != nil {
		return nil, err
	}

	created, err := env.Store.CreateLead(ctx, l)
	env.Metrics.PipelineRun(metrics.PipelineLead, err)
	if err != nil {
		return nil, eris.Wrap(err, "lead: create")
	}

	zap.L().Info("lead created",
		zap.String("lead_id", created.ID),
		zap.String("bill_range", string(created.BillRange)),
		zap.Int("rough_estimate_eur", created.RoughEstimateEUR),
	)
	return created, nil
}

func init() {
	f := leadCmd.Flags()
	f.StringVar(&leadInput.Name, "name", "", "contact name")
	f.StringVar(&leadInput.Phone, "phone", "", "contact phone")
	f.StringVar(&leadInput.Email, "email", "", "contact email")
	f.StringVar(&leadInput.City, "city", "", "city")
	f.StringVar(&leadInput.Address, "address", "", "street address")
	f.StringVar(&leadInput.PreferredContactTime, "contact-time", "", "preferred contact time")
	f.StringVar(&leadBillRange, "bill-range", string(lead.DefaultBillRange), "monthly bill range in EUR: <30, 30-60, 60-100, 100-150, >150")
	_ = leadCmd.MarkFlagRequired("name")
	_ = leadCmd.MarkFlagRequired("phone")
	rootCmd.AddCommand(leadCmd)
}
