package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		notation Notation
		none     bool
	}{
		{
			name:     "ten-thousand unit with space",
			input:    "8 만원",
			expected: 80000,
			notation: NotationTenThousand,
		},
		{
			name:     "ten-thousand unit after label",
			input:    "교습비: 25만원",
			expected: 250000,
			notation: NotationTenThousand,
		},
		{
			name:     "comma grouped with won suffix",
			input:    "250,000원",
			expected: 250000,
			notation: NotationGrouped,
		},
		{
			name:     "grouped beats plain on the same line",
			input:    "2025 입금 140,000",
			expected: 140000,
			notation: NotationGrouped,
		},
		{
			name:     "plain digits",
			input:    "입금 80000",
			expected: 80000,
			notation: NotationPlain,
		},
		{
			name:     "full-width digits are folded",
			input:    NormalizeText("２５０，０００원"),
			expected: 250000,
			notation: NotationGrouped,
		},
		{
			name:     "first in-window plain value wins",
			input:    "2025-10-18 입금 250000",
			expected: 250000,
			notation: NotationPlain,
		},
		{
			name:     "zero fraction dropped",
			input:    "250000.00원",
			expected: 250000,
			notation: NotationPlain,
		},
		{
			name:     "cents after a five-digit amount dropped",
			input:    "입금액 80000.50",
			expected: 80000,
			notation: NotationPlain,
		},
		{
			name:     "grouped amount with fraction",
			input:    "250,000.00원",
			expected: 250000,
			notation: NotationGrouped,
		},
		{
			name:  "dotted date is not a fraction",
			input: "2025.10.18 수강료",
			none:  true,
		},
		{
			name:  "short comma list ignored",
			input: "3,4교시",
			none:  true,
		},
		{
			name:  "phone number is out of window",
			input: "010-1234-5678",
			none:  true,
		},
		{
			name:  "too small",
			input: "3월 5일",
			none:  true,
		},
		{
			name:  "ten-thousand above max",
			input: "1,200만원",
			none:  true,
		},
		{
			name:  "no digits",
			input: "감사합니다",
			none:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractAmount(Line{Number: 1, Text: tt.input}, DefaultWindow())
			assert.Empty(t, result.Anomalies)
			if tt.none {
				assert.Nil(t, result.Amount)
				return
			}
			require.NotNil(t, result.Amount)
			assert.Equal(t, tt.expected, result.Amount.Value)
			assert.Equal(t, tt.notation, result.Amount.Notation)
			assert.Equal(t, tt.input, result.Amount.Fragment)
		})
	}
}

func TestExtractAmount_WindowBoundaries(t *testing.T) {
	w := DefaultWindow()

	assert.NotNil(t, ExtractAmount(Line{Text: "1,000"}, w).Amount)
	assert.Nil(t, ExtractAmount(Line{Text: "999"}, w).Amount)
	assert.NotNil(t, ExtractAmount(Line{Text: "5,000,000"}, w).Amount)
	assert.Nil(t, ExtractAmount(Line{Text: "5,000,001"}, w).Amount)
}

func TestExtractAmount_Anomaly(t *testing.T) {
	t.Run("plain digits overflow", func(t *testing.T) {
		result := ExtractAmount(Line{Number: 3, Text: "승인 99999999999999999999999"}, DefaultWindow())
		assert.Nil(t, result.Amount)
		require.Len(t, result.Anomalies, 1)
		assert.Equal(t, 3, result.Anomalies[0].Line)
		assert.Equal(t, "99999999999999999999999", result.Anomalies[0].Raw)
		assert.Error(t, result.Anomalies[0].Err)
	})

	t.Run("malformed grouping", func(t *testing.T) {
		result := ExtractAmount(Line{Number: 2, Text: "1234,567원"}, DefaultWindow())
		assert.Nil(t, result.Amount, "must not fall back to reading 1234")
		require.Len(t, result.Anomalies, 1)
		assert.Equal(t, "1234,567", result.Anomalies[0].Raw)
		assert.Equal(t, 2, result.Anomalies[0].Line)
	})

	t.Run("malformed grouping beside a valid one", func(t *testing.T) {
		result := ExtractAmount(Line{Text: "12,34,5 / 80,000원"}, DefaultWindow())
		require.NotNil(t, result.Amount)
		assert.Equal(t, int64(80000), result.Amount.Value)
		assert.Len(t, result.Anomalies, 1)
	})

	t.Run("unit conversion overflow", func(t *testing.T) {
		result := ExtractAmount(Line{Text: "9223372036854775만원"}, DefaultWindow())
		assert.Nil(t, result.Amount)
		assert.Len(t, result.Anomalies, 1)
	})

	t.Run("anomaly does not hide a later valid value", func(t *testing.T) {
		result := ExtractAmount(Line{Text: "99999999999999999999999 80000"}, DefaultWindow())
		require.NotNil(t, result.Amount)
		assert.Equal(t, int64(80000), result.Amount.Value)
		assert.Len(t, result.Anomalies, 1)
	})
}

func TestWindow_Custom(t *testing.T) {
	w := Window{Min: 10, Max: 100}
	result := ExtractAmount(Line{Text: "50"}, w)
	require.NotNil(t, result.Amount)
	assert.Equal(t, int64(50), result.Amount.Value)
}
