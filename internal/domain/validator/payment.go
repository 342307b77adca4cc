// Package validator checks confirmed payments against what a student owes.
//
// A share is valid when it equals one of the student's fees or the sum of
// all of them. Anything else (a tolerance match, the remainder of a
// combined deposit) is recorded, but flagged for follow-up.
package validator

import (
	"fmt"
)

// PaymentCheck contains the result of validating one payment.
type PaymentCheck struct {
	// Valid is true if the amount equals an expected charge
	Valid bool

	// Paid is the amount being recorded
	Paid int64

	// Expected is the closest expected charge
	Expected int64

	// Difference is Paid - Expected
	Difference int64

	// Reason explains why validation failed (empty if valid)
	Reason string
}

// CheckPayment compares paid with the charges implied by fees: each
// positive fee on its own and, when there are several, their total.
// With no positive fee there is nothing to compare against and the
// payment is accepted.
func CheckPayment(paid int64, fees []int64) *PaymentCheck {
	expected := expectedCharges(fees)
	if len(expected) == 0 {
		return &PaymentCheck{Valid: true, Paid: paid, Expected: paid}
	}

	closest := expected[0]
	for _, e := range expected {
		if e == paid {
			return &PaymentCheck{Valid: true, Paid: paid, Expected: e}
		}
		if abs(paid-e) < abs(paid-closest) {
			closest = e
		}
	}

	diff := paid - closest
	var reason string
	if diff < 0 {
		reason = fmt.Sprintf("paid %d is %d short of expected %d", paid, -diff, closest)
	} else {
		reason = fmt.Sprintf("paid %d exceeds expected %d by %d", paid, closest, diff)
	}

	return &PaymentCheck{
		Valid:      false,
		Paid:       paid,
		Expected:   closest,
		Difference: diff,
		Reason:     reason,
	}
}

func expectedCharges(fees []int64) []int64 {
	var out []int64
	var total int64
	for _, f := range fees {
		if f <= 0 {
			continue
		}
		out = append(out, f)
		total += f
	}
	if len(out) > 1 {
		out = append(out, total)
	}
	return out
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
