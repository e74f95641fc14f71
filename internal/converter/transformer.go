// =============================================================================
// ProcessAutomate - Cleaning Rule Engine
// =============================================================================
//
// This module applies ordered string-cleaning rules to cell values. Each
// vendor declares its identifier and amount cleaning as a rule list; the
// engine applies the rules in sequence.
//
// RULE TYPES:
//   - strip_prefix  remove Value once from the start
//   - strip_suffix  remove Value once from the end
//   - replace       replace every Find with Value
//   - split_take    split on Find, keep part Index (unchanged if absent)
//   - trim          remove surrounding whitespace
//
// EXAMPLE (DPD identifier):
//   "text:'ABC123 / 2024-01-05'"
//     strip_prefix "text:'"    -> "ABC123 / 2024-01-05'"
//     split_take " / " index 0 -> "ABC123"
//
// =============================================================================

package converter

import (
	"fmt"
	"strings"
)

// RuleType names one cleaning operation.
type RuleType string

const (
	RuleStripPrefix RuleType = "strip_prefix"
	RuleStripSuffix RuleType = "strip_suffix"
	RuleReplace     RuleType = "replace"
	RuleSplitTake   RuleType = "split_take"
	RuleTrim        RuleType = "trim"
)

// Rule is one cleaning step.
type Rule struct {
	Type  RuleType
	Find  string
	Value string
	Index int
}

// ApplyRules applies rules to value in order.
//
// RETURNS:
//   - The cleaned value.
//   - An error naming the first rule that could not be applied.
func ApplyRules(value string, rules []Rule) (string, error) {
	result := value
	for _, rule := range rules {
		var err error
		result, err = ApplyRule(result, rule)
		if err != nil {
			return "", fmt.Errorf("rule '%s' failed: %w", rule.Type, err)
		}
	}
	return result, nil
}

// ApplyRule applies a single cleaning rule.
func ApplyRule(value string, rule Rule) (string, error) {
	switch rule.Type {

	case RuleStripPrefix:
		return strings.TrimPrefix(value, rule.Value), nil

	case RuleStripSuffix:
		return strings.TrimSuffix(value, rule.Value), nil

	case RuleReplace:
		if rule.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, rule.Find, rule.Value), nil

	case RuleSplitTake:
		// EXAMPLE:
		//   Input: "2024T000123T9"
		//   Action: split_take with find "T" and index 1
		//   Output: "000123"
		if rule.Find == "" || rule.Index < 0 {
			return "", fmt.Errorf("split_take needs a separator and a non-negative index")
		}
		parts := strings.Split(value, rule.Find)
		if rule.Index >= len(parts) {
			return value, nil
		}
		return parts[rule.Index], nil

	case RuleTrim:
		return strings.TrimSpace(value), nil

	default:
		return "", fmt.Errorf("unknown rule type")
	}
}
