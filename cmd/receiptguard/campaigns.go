package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wunderfauks/receiptguard/internal/campaign"
	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/model"
)

func campaignsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Manage and evaluate reward campaigns",
	}

	cmd.AddCommand(campaignsEvaluateCmd())
	cmd.AddCommand(campaignsSeedCmd())
	cmd.AddCommand(campaignsListCmd())

	return cmd
}

func campaignsEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [receipt.json]",
		Short: "Evaluate campaign rules against a parsed receipt",
		Long: `Run every active campaign's rules against a parsed receipt document and
print the resulting point suggestions. The receipt file uses the parsed
receipt shape: store_name, purchase_date, total_amount, currency, items.`,
		Args: cobra.ExactArgs(1),
		RunE: runCampaignsEvaluate,
	}

	cmd.Flags().String("user", "", "Submitter identifier (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runCampaignsEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return common.NewUserError(fmt.Sprintf("could not read receipt file %s", args[0]), err)
	}

	var parsed model.ParsedReceipt
	if err := json.Unmarshal(data, &parsed); err != nil {
		return common.NewUserError(fmt.Sprintf("%s is not a valid receipt document", args[0]), err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	engine := campaign.NewEngine(store, store)
	payload, err := engine.EvaluateCampaigns(ctx, model.NewReceiptContext(parsed), userID)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Printf("Matched: %v  Total suggested points: %d\n\n",
		payload.Matched, payload.TotalSuggestedPoints)
	for _, s := range payload.Suggestions {
		status := "no match"
		if s.Matched && s.SlotAvailable {
			status = fmt.Sprintf("%d points", s.SuggestedPoints)
		} else if s.Matched {
			status = "matched, slot unavailable"
		}
		fmt.Printf("  [%d] %s / %s: %s", s.CampaignPostID, s.CampaignTitle, s.RuleLabel, status)
		if s.Note != "" {
			fmt.Printf(" (%s)", s.Note)
		}
		fmt.Println()
	}

	return nil
}

func campaignsSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [campaign.json]",
		Short: "Load a campaign definition into the local catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("could not read campaign file %s", args[0]), err)
			}

			var doc struct {
				model.Campaign
				MaxRedemptions int `json:"max_redemptions"`
			}
			if err := json.Unmarshal(data, &doc); err != nil {
				return common.NewUserError(fmt.Sprintf("%s is not a valid campaign document", args[0]), err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			id, err := store.SaveCampaign(ctx, doc.Campaign, doc.MaxRedemptions)
			if err != nil {
				return fmt.Errorf("failed to save campaign: %w", err)
			}

			fmt.Printf("Saved campaign %d: %s (%d rules)\n", id, doc.Title, len(doc.Rules))
			return nil
		},
	}
}

func campaignsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active campaigns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			campaigns, err := store.FetchActiveCampaigns(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch campaigns: %w", err)
			}

			if len(campaigns) == 0 {
				fmt.Println("No active campaigns.")
				return nil
			}
			for _, c := range campaigns {
				fmt.Printf("  [%d] %s (brand %s, %d rules)\n",
					c.CampaignPostID, c.Title, c.BrandID, len(c.Rules))
			}
			return nil
		},
	}
}
