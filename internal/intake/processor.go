package intake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wunderfauks/receiptguard/internal/campaign"
	"github.com/wunderfauks/receiptguard/internal/fraud"
	"github.com/wunderfauks/receiptguard/internal/model"
	"github.com/wunderfauks/receiptguard/internal/service"
)

// MediaFetcher downloads the bytes behind an inbound media reference. The
// chat channel implementation lives outside the core.
type MediaFetcher interface {
	Fetch(ctx context.Context, mediaRef string) ([]byte, error)
}

// OutcomeNotifier reports the final verdict of a batch back to the
// submitter. Optional; delivery failures are logged and ignored.
type OutcomeNotifier interface {
	NotifyOutcome(ctx context.Context, conversationID string, result model.FraudResult, points int) error
}

// Processor is the downstream half of the intake flow: it turns a dispatched
// media batch into a scored, campaign-evaluated, persisted submission.
type Processor struct {
	media    MediaFetcher
	pipeline *fraud.Pipeline
	parser   service.ReceiptParser
	engine   *campaign.Engine
	sink     service.ResultSink
	outcome  OutcomeNotifier
	country  string
}

// NewProcessor creates a batch processor. countryHint seeds the merchant and
// currency heuristics and is typically the deployment market ("SG", "TH").
func NewProcessor(
	media MediaFetcher,
	pipeline *fraud.Pipeline,
	parser service.ReceiptParser,
	engine *campaign.Engine,
	sink service.ResultSink,
	countryHint string,
) *Processor {
	return &Processor{
		media:    media,
		pipeline: pipeline,
		parser:   parser,
		engine:   engine,
		sink:     sink,
		country:  countryHint,
	}
}

// WithOutcomeNotifier attaches an optional outcome notifier.
func (p *Processor) WithOutcomeNotifier(n OutcomeNotifier) *Processor {
	p.outcome = n
	return p
}

// ProcessBatch runs one dispatched batch end to end: fetch media, score the
// submission, persist the fraud result, then evaluate campaigns on anything
// not rejected outright. Individual media fetch failures are skipped; the
// batch fails only when nothing could be fetched.
func (p *Processor) ProcessBatch(ctx context.Context, conversationID string, mediaRefs []string) error {
	images := p.fetchAll(ctx, mediaRefs)
	if len(images) == 0 {
		return fmt.Errorf("fetching batch media for %s: no retrievable images", conversationID)
	}

	receiptID := uuid.New().String()

	analysis, err := p.pipeline.AnalyzeSubmission(ctx, images, p.country)
	if err != nil {
		return fmt.Errorf("analyzing submission %s: %w", receiptID, err)
	}
	p.pipeline.RecordHashes(ctx, analysis.ImageAnalyses, receiptID)

	if err := p.sink.PersistFraudResult(ctx, receiptID, analysis.Result); err != nil {
		slog.Warn("failed to persist fraud result",
			"receipt_id", receiptID,
			"error", err)
	}

	points := 0
	if analysis.Result.Decision != model.DecisionReject {
		payload, err := p.evaluateCampaigns(ctx, conversationID, analysis)
		if err != nil {
			return fmt.Errorf("evaluating campaigns for %s: %w", receiptID, err)
		}
		points = payload.TotalSuggestedPoints

		if err := p.sink.PersistCampaignSuggestion(ctx, receiptID, payload); err != nil {
			slog.Warn("failed to persist campaign suggestion",
				"receipt_id", receiptID,
				"error", err)
		}
	}

	if p.outcome != nil {
		if err := p.outcome.NotifyOutcome(ctx, conversationID, analysis.Result, points); err != nil {
			slog.Warn("failed to deliver outcome message",
				"conversation_id", conversationID,
				"error", err)
		}
	}

	slog.Info("batch processed",
		"receipt_id", receiptID,
		"conversation_id", conversationID,
		"decision", analysis.Result.Decision,
		"suggested_points", points)
	return nil
}

func (p *Processor) fetchAll(ctx context.Context, mediaRefs []string) [][]byte {
	images := make([][]byte, 0, len(mediaRefs))
	for _, ref := range mediaRefs {
		data, err := p.media.Fetch(ctx, ref)
		if err != nil {
			slog.Warn("failed to fetch media, skipping image",
				"media_ref", ref,
				"error", err)
			continue
		}
		images = append(images, data)
	}
	return images
}

// evaluateCampaigns builds the receipt context and runs the rule engine.
// When the structured parser fails, the context falls back to the oracle's
// extracted fields so campaign evaluation still sees store, total and
// currency.
func (p *Processor) evaluateCampaigns(ctx context.Context, conversationID string, analysis fraud.SubmissionAnalysis) (model.SuggestionPayload, error) {
	var parsed model.ParsedReceipt

	if p.parser != nil {
		var err error
		parsed, err = p.parser.Parse(ctx, analysis.OCRText)
		if err != nil {
			slog.Warn("receipt parsing failed, falling back to oracle extraction",
				"error", err)
			parsed = receiptFromAssessment(analysis.Assessment)
		}
	} else {
		parsed = receiptFromAssessment(analysis.Assessment)
	}

	rctx := model.NewReceiptContext(parsed)
	return p.engine.EvaluateCampaigns(ctx, rctx, conversationID)
}

func receiptFromAssessment(assessment model.SemanticAssessment) model.ParsedReceipt {
	parsed := model.ParsedReceipt{
		ReceiptID:    assessment.Extracted.ReceiptID,
		StoreName:    assessment.Merchant.Name,
		PurchaseDate: assessment.Extracted.Date,
		Currency:     assessment.Extracted.Currency,
	}
	if assessment.Extracted.Total != nil {
		parsed.TotalAmount = *assessment.Extracted.Total
	}
	return parsed
}
