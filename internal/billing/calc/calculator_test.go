package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTotals(t *testing.T) {
	items := []ItemInput{
		{Kind: "service", Description: "Beratung", Unit: "h", Quantity: 10, UnitPrice: 85},
		{Kind: "product", Description: "Versand", Quantity: 1, UnitPrice: 15},
	}

	lines, totals, err := Build(items, TaxPolicy{RatePercent: 19, Enabled: true})
	assert.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Equal(t, 850.0, lines[0].Total)
	assert.Equal(t, 15.0, lines[1].Total)

	assert.Equal(t, 865.00, totals.Subtotal)
	assert.Equal(t, 164.35, totals.TaxAmount)
	assert.Equal(t, 1029.35, totals.TotalAmount)
	assert.True(t, totals.TaxApplied)
}

func TestBuildTaxDisabled(t *testing.T) {
	items := []ItemInput{
		{Kind: "service", Description: "Wartung", Quantity: 2, UnitPrice: 50},
	}

	_, totals, err := Build(items, TaxPolicy{RatePercent: 19, Enabled: false})
	assert.NoError(t, err)
	assert.Equal(t, 100.00, totals.Subtotal)
	assert.Equal(t, 0.00, totals.TaxAmount)
	assert.Equal(t, 100.00, totals.TotalAmount)
	assert.False(t, totals.TaxApplied)
}

func TestBuildRoundsFractionalQuantities(t *testing.T) {
	items := []ItemInput{
		{Kind: "service", Description: "Support", Quantity: 1.5, UnitPrice: 40},
	}

	_, totals, err := Build(items, TaxPolicy{RatePercent: 19, Enabled: true})
	assert.NoError(t, err)
	assert.Equal(t, 60.00, totals.Subtotal)
	assert.Equal(t, 11.40, totals.TaxAmount)
	assert.Equal(t, 71.40, totals.TotalAmount)
}

func TestBuildValidation(t *testing.T) {
	cases := []struct {
		name string
		item ItemInput
		tax  TaxPolicy
		want error
	}{
		{"unknown kind", ItemInput{Kind: "labor", Description: "x", Quantity: 1, UnitPrice: 1}, TaxPolicy{RatePercent: 19}, ErrInvalidKind},
		{"empty description", ItemInput{Kind: "service", Description: "  ", Quantity: 1, UnitPrice: 1}, TaxPolicy{RatePercent: 19}, ErrInvalidDescription},
		{"negative quantity", ItemInput{Kind: "service", Description: "x", Quantity: -1, UnitPrice: 1}, TaxPolicy{RatePercent: 19}, ErrInvalidQuantity},
		{"negative price", ItemInput{Kind: "service", Description: "x", Quantity: 1, UnitPrice: -1}, TaxPolicy{RatePercent: 19}, ErrInvalidUnitPrice},
		{"negative tax rate", ItemInput{Kind: "service", Description: "x", Quantity: 1, UnitPrice: 1}, TaxPolicy{RatePercent: -5}, ErrInvalidTaxRate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Build([]ItemInput{tc.item}, tc.tax)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBuildNormalizesKindAndDescription(t *testing.T) {
	lines, _, err := Build([]ItemInput{
		{Kind: " Service ", Description: "  Einrichtung  ", Quantity: 1, UnitPrice: 10},
	}, TaxPolicy{RatePercent: 19, Enabled: true})
	assert.NoError(t, err)
	assert.Equal(t, KindService, lines[0].Kind)
	assert.Equal(t, "Einrichtung", lines[0].Description)
}

func TestVerify(t *testing.T) {
	items := []ItemInput{
		{Kind: "service", Description: "Beratung", Quantity: 10, UnitPrice: 85},
		{Kind: "product", Description: "Versand", Quantity: 1, UnitPrice: 15},
	}
	lines, totals, err := Build(items, TaxPolicy{RatePercent: 19, Enabled: true})
	assert.NoError(t, err)

	assert.NoError(t, Verify(lines, totals))

	tampered := totals
	tampered.TotalAmount += 10
	assert.ErrorIs(t, Verify(lines, tampered), ErrTotalsDrift)
}
