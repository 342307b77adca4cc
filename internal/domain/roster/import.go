package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BatchRow is one parsed line of a pasted roster block.
type BatchRow struct {
	Line    int
	Name    string
	BaseFee int64
	BookFee int64
	Notes   string
}

// batchLinePattern accepts "<name> <base fee>[ 교재비 <book fee>][ notes]".
// The name runs up to the first digit so redacted and spaced names survive.
var batchLinePattern = regexp.MustCompile(`^\s*([^\d\s][^\d]*?)\s+([\d,]+)\s*(?:교재비\s*([\d,]+))?\s*(.*)$`)

// ParseBatch parses a block of roster lines pasted by an operator, e.g.
//
//	노*연 250000
//	이*창 250,000 교재비 32,000 월수금반
//	박*재 80000
//
// Blank lines are skipped. A line that does not fit the format fails the
// whole batch so that a half-imported roster never reaches storage.
func ParseBatch(text string) ([]BatchRow, error) {
	var rows []BatchRow

	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := batchLinePattern.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: %q is not in \"name fee\" format", i+1, line)
		}

		base, err := parseFee(m[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid fee %q: %w", i+1, m[2], err)
		}

		var book int64
		if m[3] != "" {
			book, err = parseFee(m[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid book fee %q: %w", i+1, m[3], err)
			}
		}

		rows = append(rows, BatchRow{
			Line:    i + 1,
			Name:    strings.TrimSpace(m[1]),
			BaseFee: base,
			BookFee: book,
			Notes:   strings.TrimSpace(m[4]),
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no roster lines found")
	}

	return rows, nil
}

func parseFee(s string) (int64, error) {
	cleaned := strings.ReplaceAll(s, ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty fee")
	}
	return strconv.ParseInt(cleaned, 10, 64)
}
