package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/solarsense-cli/internal/advice"
	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/model"
)

var (
	actionsQuery string
	actionsJSON  bool
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the energy-saving actions catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.ModeActions); err != nil {
			return err
		}

		catalog, err := advice.LoadCatalog()
		if err != nil {
			return err
		}
		actions := catalog.Search(actionsQuery)

		if actionsJSON {
			return writeJSON(cmd.OutOrStdout(), actions)
		}
		return printActions(cmd.OutOrStdout(), actions)
	},
}

func printActions(w io.Writer, actions []model.CatalogAction) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tTITLE\tDIFFICULTY\tCOMFORT\tKWH/MONTH")
	for _, a := range actions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.0f-%.0f\n",
			a.Code, a.Title, a.Difficulty, a.ComfortImpact, a.BaseSavings.KWhLow, a.BaseSavings.KWhHigh)
	}
	return tw.Flush()
}

func init() {
	actionsCmd.Flags().StringVar(&actionsQuery, "query", "", "filter by title or code")
	actionsCmd.Flags().BoolVar(&actionsJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(actionsCmd)
}
