package merchant

import (
	"fmt"
	"strings"
)

// MatchThreshold is the minimum candidate score considered a match.
const MatchThreshold = 20

// MatchResult is the outcome of scoring OCR text against the catalog.
// Template is nil when no candidate survived the keyword filter.
type MatchResult struct {
	Template        *Template `json:"template"`
	MismatchReasons []string  `json:"mismatch_reasons"`
	Score           int       `json:"score"`
	Matched         bool      `json:"matched"`
}

// Matcher scores OCR text against a merchant template catalog.
type Matcher struct {
	templates []Template
}

// NewMatcher creates a matcher over the built-in catalog.
func NewMatcher() *Matcher {
	return &Matcher{templates: Catalog()}
}

// NewMatcherWithTemplates creates a matcher over a custom catalog.
func NewMatcherWithTemplates(templates []Template) *Matcher {
	return &Matcher{templates: templates}
}

// Match filters the catalog by country hint and keyword presence, scores the
// survivors, and returns the best candidate. Score is 10 per required pattern
// found plus 10 when any receipt-id pattern matches; matched means the best
// score reached MatchThreshold. Results are never cached: merchant text
// varies per submission.
func (m *Matcher) Match(ocrText, countryHint string) MatchResult {
	lowered := strings.ToLower(ocrText)

	var candidates []Template
	for _, tmpl := range m.templates {
		if tmpl.Country != "" && countryHint != "" && tmpl.Country != countryHint {
			continue
		}
		for _, keyword := range tmpl.Keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				candidates = append(candidates, tmpl)
				break
			}
		}
	}

	if len(candidates) == 0 {
		return MatchResult{
			MismatchReasons: []string{"No merchant keyword match"},
		}
	}

	best := MatchResult{Score: -1}
	for i := range candidates {
		tmpl := candidates[i]

		missing := 0
		for _, pattern := range tmpl.RequiredPatterns {
			if !pattern.MatchString(ocrText) {
				missing++
			}
		}

		hasReceiptID := false
		for _, pattern := range tmpl.ReceiptIDPatterns {
			if pattern.MatchString(ocrText) {
				hasReceiptID = true
				break
			}
		}

		score := 10 * (len(tmpl.RequiredPatterns) - missing)
		if hasReceiptID {
			score += 10
		}

		// Strict greater-than keeps catalog order as the tie-break.
		if score > best.Score {
			var reasons []string
			if missing > 0 {
				reasons = append(reasons, fmt.Sprintf("Missing %d required patterns", missing))
			}
			if !hasReceiptID {
				reasons = append(reasons, "No receipt ID found")
			}
			best = MatchResult{
				Template:        &candidates[i],
				Score:           score,
				MismatchReasons: reasons,
			}
		}
	}

	best.Matched = best.Score >= MatchThreshold
	if best.Matched {
		best.MismatchReasons = nil
	}
	return best
}
