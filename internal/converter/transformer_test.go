package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRule(t *testing.T) {
	tests := []struct {
		name  string
		value string
		rule  Rule
		want  string
	}{
		{"strip prefix", "text:'ABC", Rule{Type: RuleStripPrefix, Value: "text:'"}, "ABC"},
		{"strip prefix once", "aab", Rule{Type: RuleStripPrefix, Value: "a"}, "ab"},
		{"strip suffix", "1500,00", Rule{Type: RuleStripSuffix, Value: ",00"}, "1500"},
		{"strip suffix absent", "1500", Rule{Type: RuleStripSuffix, Value: ".0"}, "1500"},
		{"replace all", `="1"2"`, Rule{Type: RuleReplace, Find: `"`, Value: ""}, "=12"},
		{"replace empty find", "x", Rule{Type: RuleReplace}, "x"},
		{"split take first", "A / B / C", Rule{Type: RuleSplitTake, Find: " / ", Index: 0}, "A"},
		{"split take second", "2024T1001T9", Rule{Type: RuleSplitTake, Find: "T", Index: 1}, "1001"},
		{"split take missing part", "1001", Rule{Type: RuleSplitTake, Find: "T", Index: 1}, "1001"},
		{"trim", "  7 ", Rule{Type: RuleTrim}, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyRule(tt.value, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyRuleErrors(t *testing.T) {
	_, err := ApplyRule("x", Rule{Type: "uppercase"})
	assert.Error(t, err)

	_, err = ApplyRules("x", []Rule{{Type: RuleTrim}, {Type: RuleSplitTake}})
	assert.ErrorContains(t, err, "split_take")
}
