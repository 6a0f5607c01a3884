package receipt

import (
	"strconv"
	"strings"
)

// ParseText parses the line-oriented text format the extraction service
// emits:
//
//	RESTAURANT: Pasta Palace
//	DATE: May 6, 2025
//	ITEMS:
//	Spaghetti Carbonara | $16.99
//	Margherita Pizza | $14.99
//	END_ITEMS
//	SUBTOTAL: $31.98
//	TAX: $5.39
//	TIP: $10.00
//	TOTAL: $47.37
//
// The parser is lenient: unrecognized lines and unparseable amounts are
// skipped, and missing sections leave the corresponding fields unset.
func ParseText(text string) *Receipt {
	rcpt := &Receipt{}

	inItems := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "RESTAURANT:"):
			rcpt.Restaurant = fieldValue(line)
		case strings.HasPrefix(line, "DATE:"):
			rcpt.Date = fieldValue(line)
		case strings.HasPrefix(line, "TIME:"):
			rcpt.Time = fieldValue(line)
		case strings.HasPrefix(line, "ITEMS:"):
			inItems = true
		case strings.HasPrefix(line, "END_ITEMS"):
			inItems = false
		case strings.HasPrefix(line, "SUBTOTAL:"):
			rcpt.Subtotal = parseAmount(fieldValue(line))
		case strings.HasPrefix(line, "TAX:"):
			rcpt.Tax = parseAmount(fieldValue(line))
		case strings.HasPrefix(line, "TIP:"):
			rcpt.Tip = parseAmount(fieldValue(line))
		case strings.HasPrefix(line, "TOTAL:"):
			rcpt.Total = parseAmount(fieldValue(line))
		case inItems && line != "":
			if item, ok := parseItemLine(line); ok {
				rcpt.Items = append(rcpt.Items, item)
			}
		}
	}
	return rcpt
}

// fieldValue returns the text after the first colon, trimmed.
func fieldValue(line string) string {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// parseItemLine parses "name | $price" item lines.
func parseItemLine(line string) (Item, bool) {
	name, price, ok := strings.Cut(line, "|")
	if !ok {
		return Item{}, false
	}
	amount := parseAmount(strings.TrimSpace(price))
	if amount == nil {
		return Item{}, false
	}
	return Item{Name: strings.TrimSpace(name), Price: *amount}, true
}

// parseAmount parses a dollar amount like "$16.99" or "16.99". Returns nil
// when the value is not a number.
func parseAmount(s string) *float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
