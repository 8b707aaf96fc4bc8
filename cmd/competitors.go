package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adbuddy-ai/backend/internal/model"
)

var (
	competitorsName    string
	competitorsDetails string
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "Discover competitors for a business",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		company := model.Company{
			Name:    competitorsName,
			Details: competitorsDetails,
		}

		run := &model.CompetitorRun{
			Company: company,
			Status:  model.RunStatusProcessing,
		}
		if err := env.Store.CreateCompetitorRun(ctx, run); err != nil {
			return err
		}

		competitors, err := env.Pipeline.FindCompetitors(ctx, company)
		if err != nil {
			run.Status = model.RunStatusError
			run.ErrorMessage = err.Error()
			if uerr := env.Store.UpdateCompetitorRun(ctx, run); uerr != nil {
				zap.L().Error("persist failed run", zap.Error(uerr))
			}
			return err
		}

		run.Status = model.RunStatusProcessed
		run.Competitors = competitors
		if err := env.Store.UpdateCompetitorRun(ctx, run); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	competitorsCmd.Flags().StringVar(&competitorsName, "name", "", "company name (required)")
	competitorsCmd.Flags().StringVar(&competitorsDetails, "details", "", "company description")
	_ = competitorsCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(competitorsCmd)
}
