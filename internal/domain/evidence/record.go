package evidence

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is the structured form a document-understanding model may return
// instead of plain text.
type Record struct {
	Name   string
	Amount string
	Date   string
	Items  []RecordItem
}

// RecordItem is one receipt line item.
type RecordItem struct {
	Description string
	Amount      string
}

// ParseRecord decodes a model's JSON output. Field names vary between model
// versions, so the common aliases are accepted: name/student,
// amount/total/price, items/menu with nm/description and price/amount.
func ParseRecord(data []byte) (*Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	// Some models wrap the payload: {"receipts": [{...}]}
	if list, ok := raw["receipts"].([]any); ok && len(list) > 0 {
		if inner, ok := list[0].(map[string]any); ok {
			raw = inner
		}
	}

	rec := &Record{
		Name:   firstString(raw, "name", "student", "student_name"),
		Amount: firstString(raw, "amount", "total", "total_price", "price"),
		Date:   firstString(raw, "date"),
	}

	for _, key := range []string{"items", "menu", "line_items"} {
		list, ok := raw[key].([]any)
		if !ok {
			continue
		}
		for _, v := range list {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			rec.Items = append(rec.Items, RecordItem{
				Description: firstString(m, "description", "nm", "name"),
				Amount:      firstString(m, "amount", "price", "total"),
			})
		}
		break
	}

	return rec, nil
}

// Flatten renders a record as text lines for the parser: a labelled name
// line, one "description amount" line per item, then the total. The date is
// left out because its digits would only compete with the real amount.
func (r Record) Flatten() string {
	var lines []string
	if r.Name != "" {
		lines = append(lines, "성명: "+r.Name)
	}
	for _, item := range r.Items {
		line := strings.TrimSpace(item.Description + " " + item.Amount)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if r.Amount != "" {
		lines = append(lines, "합계 "+r.Amount)
	}
	return strings.Join(lines, "\n")
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}
