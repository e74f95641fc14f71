package validation

import (
	"errors"
	"testing"

	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireColumns(t *testing.T) {
	table := &types.Table{Header: []string{"Tranzakció összege", "Vásárló"}}

	assert.NoError(t, RequireColumns(table, "Vásárló"))

	err := RequireColumns(table, "Tranzakciós jutalék", "Vásárló", "E-mail cím")
	require.Error(t, err)
	assert.Equal(t, "Missing required columns: Tranzakciós jutalék, E-mail cím", err.Error())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required_columns", verr.Rule)
}

func TestRequireWidth(t *testing.T) {
	table := &types.Table{Rows: [][]string{{"a", "b"}, {"a", "b", "c"}}}

	assert.NoError(t, RequireWidth(table, 3))
	assert.ErrorContains(t, RequireWidth(table, 6), "expected at least 6 columns, found 3")
	assert.NoError(t, RequireWidth(&types.Table{}, 6))
}

func TestParseStrictInt(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		rule  string
	}{
		{"1500", 1500, ""},
		{" -30 ", -30, ""},
		{"", 0, "integer"},
		{"12,50", 0, "decimal_format"},
		{"12.5", 0, "decimal_format"},
		{"12abc", 0, "integer"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseStrictInt("amount", tt.value, 4)
			if tt.rule == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.rule, verr.Rule)
			assert.Equal(t, 4, verr.RowNumber)
		})
	}
}

func TestParseStrictIntMessage(t *testing.T) {
	_, err := ParseStrictInt("Tranzakció összege", "1500,50", 2)
	assert.EqualError(t, err, "row 2: field 'Tranzakció összege': unsupported decimal format (value: '1500,50')")
}

func TestParseTruncatedInt(t *testing.T) {
	tests := map[string]int64{
		"1500":    1500,
		"1500.99": 1500,
		"-12.9":   -12,
		"1e3":     1000,
	}

	for in, want := range tests {
		got, err := ParseTruncatedInt("amount", in, 1)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTruncatedInt("amount", "abc", 1)
	assert.Error(t, err)

	_, err = ParseTruncatedInt("amount", " ", 1)
	assert.Error(t, err)
}
