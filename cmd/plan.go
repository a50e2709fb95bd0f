package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/solarsense-cli/internal/advice"
	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/plan"
)

var (
	planUser string
	planJSON bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage a household's action plan",
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the actions on the plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlan(cmd, func(ctx context.Context, svc *plan.Service) error {
			items, err := svc.List(ctx, planUser)
			if err != nil {
				return err
			}
			if planJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			return printPlan(cmd.OutOrStdout(), items)
		})
	},
}

var planAddCmd = &cobra.Command{
	Use:   "add CODE",
	Short: "Add a catalog action to the plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlan(cmd, func(ctx context.Context, svc *plan.Service) error {
			item, err := svc.Add(ctx, planUser, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), item)
		})
	},
}

var planRemoveCmd = &cobra.Command{
	Use:   "remove CODE",
	Short: "Remove an action from the plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlan(cmd, func(ctx context.Context, svc *plan.Service) error {
			return svc.Remove(ctx, planUser, args[0])
		})
	},
}

// withPlan opens the store, builds the plan service and runs fn.
func withPlan(cmd *cobra.Command, fn func(context.Context, *plan.Service) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initEnv(ctx, config.ModePlan, true)
	if err != nil {
		return err
	}
	defer env.Close()

	catalog, err := advice.LoadCatalog()
	if err != nil {
		return err
	}
	return fn(ctx, plan.NewService(env.Store, catalog))
}

func printPlan(w io.Writer, items []plan.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tTITLE\tADDED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ActionCode, it.Action.Title, it.AddedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func init() {
	planCmd.PersistentFlags().StringVar(&planUser, "user", "", "user id that owns the plan")
	_ = planCmd.MarkPersistentFlagRequired("user")
	planListCmd.Flags().BoolVar(&planJSON, "json", false, "print JSON instead of a table")

	planCmd.AddCommand(planListCmd, planAddCmd, planRemoveCmd)
	rootCmd.AddCommand(planCmd)
}
