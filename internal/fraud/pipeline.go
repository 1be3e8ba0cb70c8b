package fraud

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/forensic"
	"github.com/wunderfauks/receiptguard/internal/merchant"
	"github.com/wunderfauks/receiptguard/internal/model"
	"github.com/wunderfauks/receiptguard/internal/semantic"
	"github.com/wunderfauks/receiptguard/internal/service"
)

// SubmissionAnalysis is the full output of AnalyzeSubmission for one batch.
type SubmissionAnalysis struct {
	OCRText       string                   `json:"ocr_text"`
	ImageAnalyses []model.ImageAnalysis    `json:"image_analyses"`
	ImageSummary  model.ImageFraudSummary  `json:"image_fraud_summary"`
	TemplateCheck merchant.MatchResult     `json:"template_check"`
	Assessment    model.SemanticAssessment `json:"semantic_assessment"`
	Result        model.FraudResult        `json:"fraud_result"`
}

// Pipeline orchestrates the fraud analysis of one submission: per-image
// forensics fan out, OCR text merges, and the merchant matcher, semantic
// validator and score aggregator run over the merged view.
type Pipeline struct {
	extractor *forensic.Extractor
	matcher   *merchant.Matcher
	validator semantic.Validator
	ocr       service.OCRClient
	dupes     service.DuplicateIndex
	now       func() time.Time
}

// NewPipeline creates a fraud pipeline from its collaborators.
func NewPipeline(
	extractor *forensic.Extractor,
	matcher *merchant.Matcher,
	validator semantic.Validator,
	ocr service.OCRClient,
	dupes service.DuplicateIndex,
) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		matcher:   matcher,
		validator: validator,
		ocr:       ocr,
		dupes:     dupes,
		now:       time.Now,
	}
}

// WithClock overrides the pipeline clock for recency checks. Used in tests.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// AnalyzeSubmission runs the full fraud analysis over a batch of images.
// Per-image forensic analysis and OCR run concurrently, bounded by batch
// size; the merge step waits for every image before scoring. Every degraded
// external signal (OCR failure, duplicate-index failure, oracle failure)
// lowers precision but never fails the submission.
func (p *Pipeline) AnalyzeSubmission(ctx context.Context, images [][]byte, countryHint string) (SubmissionAnalysis, error) {
	if len(images) == 0 {
		return SubmissionAnalysis{}, common.ErrNoImages
	}

	analyses := make([]model.ImageAnalysis, len(images))
	texts := make([]string, len(images))

	// Fan out per-image work; the group wait is the fan-in barrier.
	g, groupCtx := errgroup.WithContext(ctx)
	for i := range images {
		i := i
		g.Go(func() error {
			analyses[i] = p.extractor.Analyze(images[i], i)

			text, err := p.ocr.ExtractText(groupCtx, images[i])
			if err != nil {
				slog.Warn("OCR extraction failed, continuing without text",
					"image_index", i,
					"error", err)
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SubmissionAnalysis{}, err
	}

	summary := forensic.Summarize(analyses)
	summary.DuplicateInSystem = p.anyKnownHash(ctx, analyses)

	ocrText := mergeTexts(texts)

	templateCheck := p.matcher.Match(ocrText, countryHint)

	var candidates []string
	if templateCheck.Template != nil {
		candidates = append(candidates, templateCheck.Template.DisplayName)
	}
	assessment := p.validator.Validate(ctx, ocrText, countryHint, candidates)

	receiptSignals := ComputeReceiptSignals(ocrText, countryHint, assessment.Extracted, p.now())

	result := Score(summary, templateCheck, assessment, receiptSignals)

	slog.Info("submission analyzed",
		"images", len(images),
		"score", result.Score,
		"decision", result.Decision,
		"template_matched", templateCheck.Matched)

	return SubmissionAnalysis{
		OCRText:       ocrText,
		ImageAnalyses: analyses,
		ImageSummary:  summary,
		TemplateCheck: templateCheck,
		Assessment:    assessment,
		Result:        result,
	}, nil
}

// RecordHashes stores every image hash of an analyzed submission in the
// duplicate index so future submissions can be matched against it. Failures
// are logged and ignored.
func (p *Pipeline) RecordHashes(ctx context.Context, analyses []model.ImageAnalysis, submissionID string) {
	for _, analysis := range analyses {
		if err := p.dupes.RecordHash(ctx, analysis.ContentHash, submissionID); err != nil {
			slog.Warn("failed to record image hash",
				"submission_id", submissionID,
				"error", err)
		}
	}
}

// anyKnownHash consults the duplicate index for every image hash, failing
// open (not a duplicate) on lookup errors.
func (p *Pipeline) anyKnownHash(ctx context.Context, analyses []model.ImageAnalysis) bool {
	for _, analysis := range analyses {
		known, err := p.dupes.CheckDuplicateHash(ctx, analysis.ContentHash)
		if err != nil {
			slog.Warn("duplicate hash lookup failed, assuming not duplicate", "error", err)
			continue
		}
		if known {
			return true
		}
	}
	return false
}

func mergeTexts(texts []string) string {
	var nonEmpty []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
