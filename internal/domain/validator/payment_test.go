package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPayment(t *testing.T) {
	tests := []struct {
		name     string
		paid     int64
		fees     []int64
		valid    bool
		expected int64
		diff     int64
	}{
		{name: "primary fee", paid: 250000, fees: []int64{250000, 32000}, valid: true, expected: 250000},
		{name: "book fee alone", paid: 32000, fees: []int64{250000, 32000}, valid: true, expected: 32000},
		{name: "fee total", paid: 282000, fees: []int64{250000, 32000}, valid: true, expected: 282000},
		{name: "short payment", paid: 79500, fees: []int64{80000}, valid: false, expected: 80000, diff: -500},
		{name: "overpayment", paid: 141000, fees: []int64{140000}, valid: false, expected: 140000, diff: 1000},
		{name: "zero book fee ignored", paid: 80000, fees: []int64{80000, 0}, valid: true, expected: 80000},
		{name: "no fees", paid: 5000, fees: nil, valid: true, expected: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := CheckPayment(tt.paid, tt.fees)

			assert.Equal(t, tt.valid, check.Valid)
			assert.Equal(t, tt.expected, check.Expected)
			assert.Equal(t, tt.diff, check.Difference)
			if tt.valid {
				assert.Empty(t, check.Reason)
			} else {
				assert.NotEmpty(t, check.Reason)
			}
		})
	}
}

func TestCheckPayment_ReasonDirection(t *testing.T) {
	assert.Contains(t, CheckPayment(79500, []int64{80000}).Reason, "short")
	assert.Contains(t, CheckPayment(81000, []int64{80000}).Reason, "exceeds")
}
