package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Fees(t *testing.T) {
	e := Entry{ID: 1, Name: "노하연", Fees: []int64{250000, 0, 32000}}

	assert.Equal(t, int64(250000), e.PrimaryFee())
	assert.Equal(t, []int64{250000, 32000}, e.PositiveFees())
	assert.True(t, e.HasFeeWithin(31000, 1000))
	assert.False(t, e.HasFeeWithin(30999, 1000))
	assert.False(t, e.HasFeeWithin(0, 0), "zero fees never match")

	assert.Equal(t, int64(0), Entry{}.PrimaryFee())
}

func TestIsMask(t *testing.T) {
	assert.True(t, IsMask('*'))
	assert.True(t, IsMask('○'))
	assert.False(t, IsMask('하'))
}

func TestParseBatch(t *testing.T) {
	text := "노*연 250000\n\n이*창 250,000 교재비 32,000 월수금반\r\n박*재 80000"

	rows, err := ParseBatch(text)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, BatchRow{Line: 1, Name: "노*연", BaseFee: 250000}, rows[0])
	assert.Equal(t, "이*창", rows[1].Name)
	assert.Equal(t, int64(250000), rows[1].BaseFee)
	assert.Equal(t, int64(32000), rows[1].BookFee)
	assert.Equal(t, "월수금반", rows[1].Notes)
	assert.Equal(t, 4, rows[2].Line)
	assert.Equal(t, int64(80000), rows[2].BaseFee)
}

func TestParseBatch_SpacedName(t *testing.T) {
	rows, err := ParseBatch("Kim Min Su 180000")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kim Min Su", rows[0].Name)
}

func TestParseBatch_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no fee", input: "노하연"},
		{name: "fee first", input: "250000 노하연"},
		{name: "empty", input: "  \n "},
		{name: "overflowing fee", input: "노하연 99999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBatch(tt.input)
			assert.Error(t, err)
		})
	}
}
