package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	lines := SplitLines("[입금] 250,000원\r\n\r\n   노하연   \r")

	assert.Equal(t, []Line{
		{Number: 1, Text: "[입금] 250,000원"},
		{Number: 3, Text: "노하연"},
	}, lines)
}

func TestSplitLines_Empty(t *testing.T) {
	assert.Empty(t, SplitLines(""))
	assert.Empty(t, SplitLines("\n \n\t\n"))
}

func TestNormalizeText_FullWidth(t *testing.T) {
	assert.Equal(t, "250,000원", NormalizeText("２５０，０００원"))
}

func TestStripAnnotations(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"노하연 (중등수학)", "노하연"},
		{"노하연[월수금]", "노하연"},
		{"노하연 (중등", "노하연"},
		{"노하연", "노하연"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripAnnotations(tt.input))
		})
	}
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "노하연", CanonicalName(" 노 하연 (중2) "))
	assert.Equal(t, "kimminsu", CanonicalName("Kim Min Su"))
}
