package model

import "time"

// Operator is a closed set of leaf condition operators. Unknown legacy values
// parse to OpUnknown, which evaluates to false with a logged warning instead
// of failing the rule.
type Operator string

// Supported condition operators.
const (
	OpEq          Operator = "eq"
	OpNeq         Operator = "neq"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpContains    Operator = "contains"
	OpContainsAny Operator = "contains_any"
	OpContainsAll Operator = "contains_all"
	OpUnknown     Operator = ""
)

// ParseOperator maps a raw operator string onto the closed Operator set.
func ParseOperator(raw string) Operator {
	switch Operator(raw) {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpContains, OpContainsAny, OpContainsAll:
		return Operator(raw)
	default:
		return OpUnknown
	}
}

// PointsMode selects how an award action computes points.
type PointsMode string

// Supported points calculation modes.
const (
	ModePerDollar    PointsMode = "per_dollar"
	ModeFlat         PointsMode = "flat"
	ModeFlatPerMatch PointsMode = "flat_per_match"
	ModeTiered       PointsMode = "tiered"
	ModeUnknown      PointsMode = ""
)

// ParsePointsMode maps a raw mode string onto the closed PointsMode set.
// An empty mode defaults to per_dollar; anything unrecognized is ModeUnknown.
func ParsePointsMode(raw string) PointsMode {
	if raw == "" {
		return ModePerDollar
	}
	switch PointsMode(raw) {
	case ModePerDollar, ModeFlat, ModeFlatPerMatch, ModeTiered:
		return PointsMode(raw)
	default:
		return ModeUnknown
	}
}

// RoundMode selects the rounding applied by per_dollar awards.
type RoundMode string

// Supported rounding modes; floor is the default.
const (
	RoundFloor RoundMode = "floor"
	RoundCeil  RoundMode = "ceil"
	RoundHalf  RoundMode = "round"
)

// Condition is a leaf rule condition: a dot-path field, an operator and a
// comparison value. Value may be a scalar or a list for the contains_* ops.
type Condition struct {
	Value any    `json:"value"`
	Field string `json:"field"`
	Op    string `json:"op"`
}

// ConditionGroup is the rule condition tree: a conjunction (All) or a
// disjunction (Any) of leaf conditions. A nil group matches everything.
type ConditionGroup struct {
	All []Condition `json:"all,omitempty"`
	Any []Condition `json:"any,omitempty"`
}

// Tier is one spend threshold of a tiered award.
type Tier struct {
	MinSpend float64 `json:"min_spend"`
	Points   int     `json:"points"`
}

// AwardAction is a single "then" entry of a campaign rule. Rate and
// Multiplier are pointers so an absent value can default to 1.
type AwardAction struct {
	Rate          *float64 `json:"rate,omitempty"`
	Multiplier    *float64 `json:"multiplier,omitempty"`
	Action        string   `json:"action"`
	Mode          string   `json:"mode,omitempty"`
	Round         string   `json:"round,omitempty"`
	Label         string   `json:"label,omitempty"`
	MatchKeywords []string `json:"match_keywords,omitempty"`
	Tiers         []Tier   `json:"tiers,omitempty"`
	Bonus         int      `json:"bonus,omitempty"`
}

// ActionAwardPoints is the only action type the evaluator executes.
const ActionAwardPoints = "award_points"

// RuleLimit bounds how often a rule may be redeemed. PerUser is a pointer so
// an absent value defaults to 1 while an explicit 0 disables the per-user cap.
type RuleLimit struct {
	PerUser *int `json:"per_user,omitempty"`
	Max     int  `json:"max"`
}

// CampaignRule is one declarative rule of a campaign. Higher priority rules
// are evaluated first; unset priority is 0.
type CampaignRule struct {
	When     *ConditionGroup `json:"when,omitempty"`
	Limit    *RuleLimit      `json:"limit,omitempty"`
	ID       string          `json:"id"`
	Label    string          `json:"label,omitempty"`
	Then     []AwardAction   `json:"then"`
	Priority int             `json:"priority"`
}

// Campaign is a marketable reward campaign with an ordered rule list.
type Campaign struct {
	Title          string         `json:"title"`
	BrandID        string         `json:"brand_id"`
	Rules          []CampaignRule `json:"rules"`
	CampaignPostID int64          `json:"campaign_post_id"`
}

// SlotInfo is the availability of a limited redemption slot, derived from
// external ledger reads. Degraded marks fail-open results where the lookup
// itself failed and availability was assumed.
type SlotInfo struct {
	Remaining *int `json:"remaining"`
	Available bool `json:"available"`
	Degraded  bool `json:"degraded"`
}

// RuleSuggestion is the evaluation outcome for one (campaign, rule) pair.
// It is a suggestion only; no points are awarded by the engine.
type RuleSuggestion struct {
	SlotsRemaining  *int            `json:"slots_remaining"`
	RuleID          string          `json:"rule_id"`
	RuleLabel       string          `json:"rule_label"`
	CampaignTitle   string          `json:"campaign_title"`
	BrandID         string          `json:"brand_id"`
	Note            string          `json:"note"`
	ReceiptSnapshot ReceiptSnapshot `json:"receipt_snapshot"`
	CampaignPostID  int64           `json:"campaign_post_id"`
	SuggestedPoints int             `json:"suggested_points"`
	Matched         bool            `json:"matched"`
	SlotAvailable   bool            `json:"slot_available"`
}

// SuggestionPayload is the full campaign evaluation result persisted for
// human review. TotalSuggestedPoints sums only matched suggestions whose
// slot is available.
type SuggestionPayload struct {
	EvaluatedAt          time.Time        `json:"evaluated_at"`
	Suggestions          []RuleSuggestion `json:"suggestions"`
	TotalSuggestedPoints int              `json:"total_suggested_points"`
	Matched              bool             `json:"matched"`
}
