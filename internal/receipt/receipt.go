// Package receipt holds the structured result of receipt extraction and the
// line-oriented text format it is delivered in.
//
// Extraction itself (image OCR and model calls) is an external service; the
// core only consumes its final structured output to seed a bill's items and
// tax/tip fields.
package receipt

import "context"

// Item is one priced line recognized on a receipt.
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Receipt is the structured result of extracting one receipt. Every field
// is optional: extraction may recognize only part of the receipt. Amount
// fields are nil when the value was not found.
type Receipt struct {
	Restaurant string   `json:"restaurant,omitempty"`
	Date       string   `json:"date,omitempty"`
	Time       string   `json:"time,omitempty"`
	Items      []Item   `json:"items,omitempty"`
	Subtotal   *float64 `json:"subtotal,omitempty"`
	Tax        *float64 `json:"tax,omitempty"`
	Tip        *float64 `json:"tip,omitempty"`
	Total      *float64 `json:"total,omitempty"`
}

// Extractor turns a receipt image into a structured Receipt. Implementations
// call an external extraction service and block until its asynchronous run
// completes or the context is done.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (*Receipt, error)
}
