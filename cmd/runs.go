package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/adbuddy-ai/backend/internal/model"
	"github.com/adbuddy-ai/backend/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect pipeline run history",
	Long:  "Commands for listing and viewing competitor and campaign runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")

		competitors, err := st.ListCompetitorRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}
		campaigns, err := st.ListCampaignRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(competitors) == 0 && len(campaigns) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, competitors, campaigns)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var run any
		run, err = st.GetCampaignRun(ctx, args[0])
		if eris.Is(err, store.ErrNotFound) {
			run, err = st.GetCompetitorRun(ctx, args[0])
		}
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func formatRunsList(w io.Writer, competitors []*model.CompetitorRun, campaigns []*model.CampaignRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tCOMPANY\tSTATUS\tCREATED")
	for _, r := range competitors {
		fmt.Fprintf(tw, "%s\tcompetitors\t%s\t%s\t%s\n",
			r.ID, r.Company.Name, r.Status, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	for _, r := range campaigns {
		fmt.Fprintf(tw, "%s\tcampaign\t%s\t%s\t%s\n",
			r.ID, r.Company.Name, r.Status, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum runs per kind")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
