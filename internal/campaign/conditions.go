package campaign

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/wunderfauks/receiptguard/internal/model"
)

// evaluateWhen evaluates a rule's condition tree. A nil group matches
// everything; All is a conjunction, Any a disjunction. All wins when both
// are set.
func evaluateWhen(when *model.ConditionGroup, ctx model.ReceiptContext) bool {
	if when == nil {
		return true
	}
	if len(when.All) > 0 {
		for _, cond := range when.All {
			if !evaluateCondition(cond, ctx) {
				return false
			}
		}
		return true
	}
	if len(when.Any) > 0 {
		for _, cond := range when.Any {
			if evaluateCondition(cond, ctx) {
				return true
			}
		}
		return false
	}
	return true
}

// evaluateCondition evaluates one leaf condition. Unknown operators evaluate
// to false with a logged warning; they never abort evaluation.
func evaluateCondition(cond model.Condition, ctx model.ReceiptContext) bool {
	actual := resolveField(ctx, cond.Field)

	switch model.ParseOperator(cond.Op) {
	case model.OpEq:
		return strings.EqualFold(coerceString(actual), coerceString(cond.Value))
	case model.OpNeq:
		return !strings.EqualFold(coerceString(actual), coerceString(cond.Value))
	case model.OpGt:
		a, b, ok := coerceNumbers(actual, cond.Value)
		return ok && a > b
	case model.OpGte:
		a, b, ok := coerceNumbers(actual, cond.Value)
		return ok && a >= b
	case model.OpLt:
		a, b, ok := coerceNumbers(actual, cond.Value)
		return ok && a < b
	case model.OpLte:
		a, b, ok := coerceNumbers(actual, cond.Value)
		return ok && a <= b
	case model.OpContains:
		return containsFold(coerceString(actual), coerceString(cond.Value))
	case model.OpContainsAny:
		return containsKeywords(actual, keywordList(cond.Value), false)
	case model.OpContainsAll:
		return containsKeywords(actual, keywordList(cond.Value), true)
	default:
		slog.Warn("unknown rule operator, treating as non-match",
			"op", cond.Op,
			"field", cond.Field)
		return false
	}
}

// containsKeywords broadcasts substring tests over list-valued fields. With
// requireAll every keyword must appear in some element; otherwise any one
// keyword suffices.
func containsKeywords(actual any, keywords []string, requireAll bool) bool {
	if len(keywords) == 0 {
		return false
	}

	matchesKeyword := func(keyword string) bool {
		if list, ok := actual.([]any); ok {
			for _, el := range list {
				if containsFold(coerceString(el), keyword) {
					return true
				}
			}
			return false
		}
		return containsFold(coerceString(actual), keyword)
	}

	if requireAll {
		for _, kw := range keywords {
			if !matchesKeyword(kw) {
				return false
			}
		}
		return true
	}
	for _, kw := range keywords {
		if matchesKeyword(kw) {
			return true
		}
	}
	return false
}

func keywordList(value any) []string {
	if list, ok := value.([]any); ok {
		keywords := make([]string, 0, len(list))
		for _, el := range list {
			keywords = append(keywords, coerceString(el))
		}
		return keywords
	}
	if list, ok := value.([]string); ok {
		return list
	}
	return []string{coerceString(value)}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// coerceNumbers best-effort converts both operands to float64. A failed
// conversion on either side makes the comparison false.
func coerceNumbers(a, b any) (float64, float64, bool) {
	av, ok := coerceNumber(a)
	if !ok {
		return 0, 0, false
	}
	bv, ok := coerceNumber(b)
	if !ok {
		return 0, 0, false
	}
	return av, bv, true
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
