// Package calc computes line-item totals and document-level amounts.
package calc

import (
	"errors"
	"math"
	"strings"

	"github.com/smallbiznis/faktura/internal/billing/money"
)

const (
	KindService = "service"
	KindProduct = "product"
)

var (
	ErrInvalidKind        = errors.New("invalid_item_kind")
	ErrInvalidDescription = errors.New("invalid_item_description")
	ErrInvalidQuantity    = errors.New("invalid_item_quantity")
	ErrInvalidUnitPrice   = errors.New("invalid_item_unit_price")
	ErrInvalidTaxRate     = errors.New("invalid_tax_rate")
	ErrTotalsDrift        = errors.New("totals_drift")
)

// ItemInput is a raw line item as submitted by a caller.
type ItemInput struct {
	Kind        string  `json:"type"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Line is a finalized line item with its computed total.
type Line struct {
	Kind        string
	Description string
	Unit        string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

// TaxPolicy controls document-level tax computation.
type TaxPolicy struct {
	RatePercent float64
	Enabled     bool
}

// Totals are the document-level amounts derived from the lines.
type Totals struct {
	Subtotal    float64
	TaxRate     float64
	TaxApplied  bool
	TaxAmount   float64
	TotalAmount float64
}

// Build validates the inputs and produces finalized lines plus totals.
// Line totals are quantity times unit price with no mid-computation rounding;
// document amounts are rounded to 2 decimals.
func Build(items []ItemInput, tax TaxPolicy) ([]Line, Totals, error) {
	if tax.RatePercent < 0 || !isFinite(tax.RatePercent) {
		return nil, Totals{}, ErrInvalidTaxRate
	}

	lines := make([]Line, 0, len(items))
	var subtotal float64
	for _, item := range items {
		line, err := buildLine(item)
		if err != nil {
			return nil, Totals{}, err
		}
		lines = append(lines, line)
		subtotal += line.Total
	}

	return lines, totalsFor(subtotal, tax), nil
}

func buildLine(item ItemInput) (Line, error) {
	kind := strings.TrimSpace(strings.ToLower(item.Kind))
	if kind != KindService && kind != KindProduct {
		return Line{}, ErrInvalidKind
	}
	description := strings.TrimSpace(item.Description)
	if description == "" {
		return Line{}, ErrInvalidDescription
	}
	if item.Quantity < 0 || !isFinite(item.Quantity) {
		return Line{}, ErrInvalidQuantity
	}
	if item.UnitPrice < 0 || !isFinite(item.UnitPrice) {
		return Line{}, ErrInvalidUnitPrice
	}

	return Line{
		Kind:        kind,
		Description: description,
		Unit:        strings.TrimSpace(item.Unit),
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Total:       item.Quantity * item.UnitPrice,
	}, nil
}

func totalsFor(subtotal float64, tax TaxPolicy) Totals {
	subtotal = money.Round(subtotal)
	var taxAmount float64
	if tax.Enabled {
		taxAmount = money.Round(subtotal * tax.RatePercent / 100)
	}
	return Totals{
		Subtotal:    subtotal,
		TaxRate:     tax.RatePercent,
		TaxApplied:  tax.Enabled,
		TaxAmount:   taxAmount,
		TotalAmount: money.Round(subtotal + taxAmount),
	}
}

// Verify re-derives the document amounts from stored lines and reports drift
// beyond floating rounding tolerance.
func Verify(lines []Line, totals Totals) error {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.Total
	}
	derived := totalsFor(subtotal, TaxPolicy{RatePercent: totals.TaxRate, Enabled: totals.TaxApplied})

	const tolerance = 1e-2
	if math.Abs(derived.Subtotal-totals.Subtotal) > tolerance ||
		math.Abs(derived.TaxAmount-totals.TaxAmount) > tolerance ||
		math.Abs(derived.TotalAmount-totals.TotalAmount) > tolerance {
		return ErrTotalsDrift
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
