package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adbuddy-ai/backend/internal/model"
)

var (
	campaignName       string
	campaignDetails    string
	campaignTranscript string
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Generate an ad campaign plan for a business",
	Long:  "Derives a campaign title and insight query from a conversation transcript, runs the insight pipeline, and generates a full campaign plan.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var transcript model.Transcript
		if campaignTranscript != "" {
			data, err := os.ReadFile(campaignTranscript)
			if err != nil {
				return eris.Wrap(err, "read transcript file")
			}
			if err := json.Unmarshal(data, &transcript); err != nil {
				return eris.Wrap(err, "parse transcript file")
			}
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		company := model.Company{
			Name:    campaignName,
			Details: campaignDetails,
		}

		run := &model.CampaignRun{
			Company:    company,
			Status:     model.RunStatusProcessing,
			Transcript: transcript,
		}
		if err := env.Store.CreateCampaignRun(ctx, run); err != nil {
			return err
		}

		result, err := env.Pipeline.GenerateCampaign(ctx, company, transcript)
		if err != nil {
			run.Status = model.RunStatusError
			run.ErrorMessage = err.Error()
			if uerr := env.Store.UpdateCampaignRun(ctx, run); uerr != nil {
				zap.L().Error("persist failed run", zap.Error(uerr))
			}
			return err
		}

		run.Status = model.RunStatusProcessed
		run.Title = result.Title
		run.Plan = result.Plan
		if err := env.Store.UpdateCampaignRun(ctx, run); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	campaignCmd.Flags().StringVar(&campaignName, "name", "", "company name (required)")
	campaignCmd.Flags().StringVar(&campaignDetails, "details", "", "company description")
	campaignCmd.Flags().StringVar(&campaignTranscript, "transcript", "", "path to a JSON transcript file")
	_ = campaignCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(campaignCmd)
}
