package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/config"
	"github.com/wunderfauks/receiptguard/internal/forensic"
	"github.com/wunderfauks/receiptguard/internal/fraud"
	"github.com/wunderfauks/receiptguard/internal/merchant"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [image files...]",
		Short: "Score receipt images for fraud signals",
		Long: `Run the full fraud pipeline over one or more receipt images sent as a
single submission: image forensics, merchant template matching, semantic
validation and duplicate detection, aggregated into a score and decision.

OCR text is read from a sidecar file next to each image (image.jpg.txt);
images without a sidecar contribute forensic signals only.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().String("country", "", "Expected country of purchase (SG, TH); defaults to the configured market")
	cmd.Flags().Bool("record", false, "Record image hashes for future duplicate detection")
	cmd.Flags().Bool("json", false, "Print the full analysis as JSON")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	country, _ := cmd.Flags().GetString("country")
	if country == "" {
		country = config.CountryHint()
	}
	record, _ := cmd.Flags().GetBool("record")
	asJSON, _ := cmd.Flags().GetBool("json")

	images := make([][]byte, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("could not read image %s", path), err)
		}
		images = append(images, data)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	pipeline := fraud.NewPipeline(
		forensic.NewExtractor(),
		merchant.NewMatcher(),
		initValidator(),
		newSidecarOCR(args, images),
		store,
	)

	analysis, err := pipeline.AnalyzeSubmission(ctx, images, country)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if record {
		receiptID := uuid.New().String()
		pipeline.RecordHashes(ctx, analysis.ImageAnalyses, receiptID)
		if err := store.PersistFraudResult(ctx, receiptID, analysis.Result); err != nil {
			return fmt.Errorf("failed to persist result: %w", err)
		}
		fmt.Printf("Recorded as receipt %s\n", receiptID)
	}

	if asJSON {
		out, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode analysis: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printResult(analysis)
	return nil
}

func printResult(analysis fraud.SubmissionAnalysis) {
	fmt.Printf("Score:    %d / 100\n", analysis.Result.Score)
	fmt.Printf("Decision: %s\n", analysis.Result.Decision)

	if analysis.TemplateCheck.Matched {
		fmt.Printf("Merchant: %s (score %d)\n",
			analysis.TemplateCheck.Template.DisplayName, analysis.TemplateCheck.Score)
	} else {
		fmt.Println("Merchant: no template match")
	}

	if len(analysis.Result.Reasons) > 0 {
		fmt.Println("Reasons:")
		for _, reason := range analysis.Result.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
	}

	if viper.GetBool("verbose") {
		for _, img := range analysis.ImageAnalyses {
			fmt.Printf("Image %d: hash=%s tooPerfect=%v redFlags=%v\n",
				img.Index, img.ContentHash[:12], img.Quality.TooPerfect,
				img.MetaSignals.RedFlags)
		}
	}
}
