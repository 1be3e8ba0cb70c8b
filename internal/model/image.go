package model

// CameraInfo holds the camera make/model found in EXIF data, when present.
type CameraInfo struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
}

// MetaSignals are the metadata-level fraud signals extracted from a single
// image. Parsing failures degrade to zero values; they never abort analysis.
type MetaSignals struct {
	CameraInfo    *CameraInfo `json:"camera_info,omitempty"`
	SoftwareName  string      `json:"software_name,omitempty"`
	RedFlags      []string    `json:"red_flags"`
	ExifPresent   bool        `json:"exif_present"`
	AISoftwareTag bool        `json:"ai_software_tag"`
	StrippedExif  bool        `json:"stripped_exif"`
}

// QualityCheck is the pixel-statistics check for a single image. Images whose
// average per-channel standard deviation falls below the low-noise threshold
// are flagged TooPerfect.
type QualityCheck struct {
	VarianceScore float64 `json:"variance_score"`
	TooPerfect    bool    `json:"too_perfect"`
}

// ImageAnalysis is the per-image forensic record. One instance is created per
// submitted image and never mutated afterwards.
type ImageAnalysis struct {
	ContentHash string       `json:"content_hash"`
	MetaSignals MetaSignals  `json:"meta_signals"`
	Quality     QualityCheck `json:"quality_check"`
	Index       int          `json:"index"`
	IsPrimary   bool         `json:"is_primary"`
}

// ImageFraudSummary aggregates the per-image analyses of one submission.
// It is derived data, recomputed for every submission.
type ImageFraudSummary struct {
	RedFlags          []string `json:"red_flags"`
	ImageCount        int      `json:"image_count"`
	AnyAIDetected     bool     `json:"any_ai_detected"`
	AnyTooPerfect     bool     `json:"any_too_perfect"`
	DuplicateImages   bool     `json:"duplicate_images"`
	DuplicateInSystem bool     `json:"duplicate_in_system"`
}
