// Package forensic extracts per-image fraud signals: EXIF metadata checks,
// pixel-noise statistics, and a content hash for duplicate detection. The
// extractor never fails upward; every parse error degrades to "signal absent".
package forensic

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"

	// Registered for image.Decode / image.DecodeConfig.
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/wunderfauks/receiptguard/internal/model"
)

// Software tags that mark known generative-model output. Matched as lowercase
// substrings of the EXIF Software field.
var aiSoftwareKeywords = []string{
	"stable diffusion",
	"stable-diffusion",
	"dall-e",
	"dalle",
	"midjourney",
	"adobe firefly",
	"ai generated",
	"artificial intelligence",
	"pytorch",
	"tensorflow",
}

// DefaultLowNoiseThreshold is the average per-channel standard deviation
// below which an image is flagged as unnaturally clean.
const DefaultLowNoiseThreshold = 5.0

// Extractor analyzes raw image bytes for forensic signals.
type Extractor struct {
	lowNoiseThreshold float64
}

// NewExtractor creates an extractor with the default low-noise threshold.
func NewExtractor() *Extractor {
	return &Extractor{lowNoiseThreshold: DefaultLowNoiseThreshold}
}

// NewExtractorWithThreshold creates an extractor with a custom low-noise
// threshold. Values <= 0 fall back to the default.
func NewExtractorWithThreshold(threshold float64) *Extractor {
	if threshold <= 0 {
		threshold = DefaultLowNoiseThreshold
	}
	return &Extractor{lowNoiseThreshold: threshold}
}

// Analyze produces the full forensic record for one image of a submission.
// Index 0 is the primary image of the batch.
func (e *Extractor) Analyze(data []byte, index int) model.ImageAnalysis {
	return model.ImageAnalysis{
		Index:       index,
		IsPrimary:   index == 0,
		ContentHash: ContentHash(data),
		MetaSignals: e.analyzeMetadata(data),
		Quality:     e.checkQuality(data),
	}
}

// ContentHash returns the hex SHA-256 digest of the raw image bytes.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// analyzeMetadata inspects EXIF data and pixel dimensions. Absence of EXIF is
// a soft signal only; messaging apps routinely strip metadata on recompression.
func (e *Extractor) analyzeMetadata(data []byte) model.MetaSignals {
	signals := model.MetaSignals{RedFlags: []string{}}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		signals.StrippedExif = true
		signals.RedFlags = append(signals.RedFlags, "No EXIF metadata (messaging app may have stripped it)")
	} else {
		signals.ExifPresent = true

		software := exifString(x, exif.Software)
		signals.SoftwareName = software

		lowered := strings.ToLower(software)
		for _, keyword := range aiSoftwareKeywords {
			if strings.Contains(lowered, keyword) {
				signals.AISoftwareTag = true
				signals.RedFlags = append(signals.RedFlags, fmt.Sprintf("AI software detected: %s", software))
				break
			}
		}

		cameraMake := exifString(x, exif.Make)
		cameraModel := exifString(x, exif.Model)
		if cameraMake != "" || cameraModel != "" {
			signals.CameraInfo = &model.CameraInfo{Make: cameraMake, Model: cameraModel}
		} else {
			signals.RedFlags = append(signals.RedFlags, "No camera make/model in EXIF")
		}
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if cfg.Width > 0 && cfg.Height > 0 && cfg.Width%64 == 0 && cfg.Height%64 == 0 {
			signals.RedFlags = append(signals.RedFlags, "Perfect 64-pixel alignment (AI generation pattern)")
		}
	} else {
		slog.Debug("image dimension probe failed", "error", err)
	}

	return signals
}

// checkQuality computes the average per-channel standard deviation of pixel
// intensity. Real photos carry sensor noise; a near-zero deviation marks a
// synthetic or heavily processed image.
func (e *Extractor) checkQuality(data []byte) model.QualityCheck {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("quality check decode failed", "error", err)
		return model.QualityCheck{}
	}

	variance := averageChannelStddev(img)

	return model.QualityCheck{
		VarianceScore: variance,
		TooPerfect:    variance < e.lowNoiseThreshold,
	}
}

func averageChannelStddev(img image.Image) float64 {
	bounds := img.Bounds()
	count := float64(bounds.Dx() * bounds.Dy())
	if count == 0 {
		return 0
	}

	var sum, sumSq [3]float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// 16-bit channels scaled to 0-255.
			ch := [3]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
			for i, v := range ch {
				sum[i] += v
				sumSq[i] += v * v
			}
		}
	}

	var total float64
	for i := 0; i < 3; i++ {
		mean := sum[i] / count
		variance := sumSq[i]/count - mean*mean
		if variance < 0 {
			variance = 0
		}
		total += math.Sqrt(variance)
	}
	return total / 3
}

func exifString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	val, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(val)
}

// Summarize aggregates the per-image analyses of a submission. Duplicate
// detection within the batch is by exact content hash; red flags are
// deduplicated preserving first-seen order. DuplicateInSystem is filled in
// later by the pipeline after consulting the duplicate index.
func Summarize(analyses []model.ImageAnalysis) model.ImageFraudSummary {
	summary := model.ImageFraudSummary{
		ImageCount: len(analyses),
		RedFlags:   []string{},
	}

	seenHashes := make(map[string]bool, len(analyses))
	seenFlags := make(map[string]bool)

	for _, analysis := range analyses {
		if analysis.MetaSignals.AISoftwareTag {
			summary.AnyAIDetected = true
		}
		if analysis.Quality.TooPerfect {
			summary.AnyTooPerfect = true
		}
		if seenHashes[analysis.ContentHash] {
			summary.DuplicateImages = true
		}
		seenHashes[analysis.ContentHash] = true

		for _, flag := range analysis.MetaSignals.RedFlags {
			if !seenFlags[flag] {
				seenFlags[flag] = true
				summary.RedFlags = append(summary.RedFlags, flag)
			}
		}
	}

	return summary
}
