package evidence

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Notation tags how an amount was written.
type Notation string

const (
	// NotationTenThousand is "<digits>만(원)", worth digits × 10,000.
	NotationTenThousand Notation = "ten_thousand"
	// NotationGrouped is comma-grouped digits such as "250,000".
	NotationGrouped Notation = "comma_grouped"
	// NotationPlain is a bare digit run.
	NotationPlain Notation = "plain"
)

// Acceptance window defaults, in the smallest currency unit.
const (
	DefaultMinAmount int64 = 1000
	DefaultMaxAmount int64 = 5_000_000
)

const tenThousand = 10000

// Window bounds the amounts worth considering. Anything outside it is an
// incidental number (phone number, date, approval code).
type Window struct {
	Min int64
	Max int64
}

// DefaultWindow returns the 1,000 - 5,000,000 window.
func DefaultWindow() Window {
	return Window{Min: DefaultMinAmount, Max: DefaultMaxAmount}
}

// Contains reports whether v lies inside the window, bounds included.
func (w Window) Contains(v int64) bool {
	return v >= w.Min && v <= w.Max
}

// Amount is a parsed candidate amount.
type Amount struct {
	Value    int64
	Raw      string
	Notation Notation
	Line     int
	Fragment string
}

// Anomaly is a numeric token that matched a pattern but could not be
// converted to an integer.
type Anomaly struct {
	Raw      string
	Line     int
	Fragment string
	Err      error
}

// LineAmount is the result of scanning one line: at most one accepted
// amount, plus any malformed tokens seen on the way.
type LineAmount struct {
	Amount    *Amount
	Anomalies []Anomaly
}

var (
	tenThousandPattern = regexp.MustCompile(`(\d[\d,]*)\s*만`)
	commaRunPattern    = regexp.MustCompile(`\d+(?:,\d+)+`)
	groupedPattern     = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
	plainPattern       = regexp.MustCompile(`\d+(?:[-./]\d+)*`)
	fractionPattern    = regexp.MustCompile(`^(\d+)\.(\d{1,2})$`)
)

// minMalformedDigits keeps short comma lists such as "3,4" from being
// reported as broken amounts.
const minMalformedDigits = 4

type token struct {
	raw    string
	digits string
	err    error // set when the token looks like an amount but is malformed
}

type tier struct {
	notation   Notation
	find       func(line string) []token
	multiplier int64
}

// tiers are tried in priority order; the first tier with any syntactic
// match owns the line.
var tiers = []tier{
	{notation: NotationTenThousand, find: findTenThousand, multiplier: tenThousand},
	{notation: NotationGrouped, find: findGrouped, multiplier: 1},
	{notation: NotationPlain, find: findPlain, multiplier: 1},
}

// ExtractAmount scans a single line. Only the highest-priority notation
// present on the line is considered, and within it the first value inside
// the window is taken, so a line yields at most one amount.
func ExtractAmount(line Line, w Window) LineAmount {
	var result LineAmount

	for _, t := range tiers {
		tokens := t.find(line.Text)
		if len(tokens) == 0 {
			continue
		}

		for _, tok := range tokens {
			var value int64
			err := tok.err
			if err == nil {
				value, err = toValue(tok.digits, t.multiplier)
			}
			if err != nil {
				result.Anomalies = append(result.Anomalies, Anomaly{
					Raw:      tok.raw,
					Line:     line.Number,
					Fragment: line.Text,
					Err:      err,
				})
				continue
			}

			if !w.Contains(value) {
				continue
			}

			result.Amount = &Amount{
				Value:    value,
				Raw:      tok.raw,
				Notation: t.notation,
				Line:     line.Number,
				Fragment: line.Text,
			}
			return result
		}

		return result
	}

	return result
}

func toValue(digits string, multiplier int64) (int64, error) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", digits, err)
	}
	if multiplier > 1 && n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("number %q overflows after unit conversion", digits)
	}
	return n * multiplier, nil
}

func findTenThousand(line string) []token {
	var tokens []token
	for _, m := range tenThousandPattern.FindAllStringSubmatch(line, -1) {
		tokens = append(tokens, token{
			raw:    strings.TrimSpace(m[0]),
			digits: strings.ReplaceAll(m[1], ",", ""),
		})
	}
	return tokens
}

// findGrouped reads maximal runs of digits and commas. A run grouped in
// threes is an amount; any other run with enough digits, such as
// "1234,567", is a malformed amount rather than two small numbers.
func findGrouped(line string) []token {
	var tokens []token
	for _, raw := range commaRunPattern.FindAllString(line, -1) {
		digits := strings.ReplaceAll(raw, ",", "")
		if groupedPattern.MatchString(raw) {
			tokens = append(tokens, token{raw: raw, digits: digits})
			continue
		}
		if len(digits) < minMalformedDigits {
			continue
		}
		tokens = append(tokens, token{
			raw:    raw,
			digits: digits,
			err:    fmt.Errorf("malformed digit grouping %q", raw),
		})
	}
	return tokens
}

// findPlain joins digit groups separated by '-', '.' or '/' into one token,
// so "010-1234-5678" is read as a single oversized number rather than as
// three small ones. A one- or two-digit fraction ("250000.00") is dropped
// when it is zero or follows at least five integer digits; the currency
// has no minor unit, and "2025.10" stays a date.
func findPlain(line string) []token {
	var tokens []token
	for _, raw := range plainPattern.FindAllString(line, -1) {
		if m := fractionPattern.FindStringSubmatch(raw); m != nil {
			if len(m[1]) >= 5 || strings.Trim(m[2], "0") == "" {
				tokens = append(tokens, token{raw: raw, digits: m[1]})
				continue
			}
		}
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, raw)
		tokens = append(tokens, token{raw: raw, digits: digits})
	}
	return tokens
}
