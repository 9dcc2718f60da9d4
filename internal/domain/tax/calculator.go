package tax

import (
	"github.com/shopspring/decimal"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// Default statutory rates. Overridable through configuration.
var (
	DefaultVATRate              = decimal.NewFromFloat(0.14)
	DefaultManufacturingTaxRate = decimal.NewFromFloat(0.01)
)

// LineTax holds the computed tax breakdown for a single line.
// Total always equals Subtotal + VAT - ManufacturingTax: VAT is added on top of
// the net price while manufacturing tax is a credit subtracted from it.
type LineTax struct {
	Subtotal         decimal.Decimal
	VAT              decimal.Decimal
	ManufacturingTax decimal.Decimal
	Total            decimal.Decimal
}

// Rates bundles the applicable tax rates for a computation.
type Rates struct {
	VAT              decimal.Decimal
	ManufacturingTax decimal.Decimal
}

// DefaultRates returns the default statutory rates
func DefaultRates() Rates {
	return Rates{
		VAT:              DefaultVATRate,
		ManufacturingTax: DefaultManufacturingTaxRate,
	}
}

// Flags selects which tax components apply to a line and whether the quoted
// unit price already includes tax.
type Flags struct {
	Inclusive             bool
	ApplyVAT              bool
	ApplyManufacturingTax bool
}

// Compute calculates the tax breakdown for one line.
//
// Exclusive mode: subtotal = unitPrice * quantity, each applied tax is rounded
// from the subtotal, and total = subtotal + vat - manufacturingTax.
//
// Inclusive mode: the gross unitPrice * quantity is divided by
// 1 + vatRate - manufacturingTaxRate (only applied components), the subtotal is
// rounded, taxes are recomputed from the rounded subtotal, and the total is
// rebuilt from those parts. The rebuilt total can drift from the quoted gross
// amount by a few cents under compounding rounding. That drift matches the
// established ledger behavior and is kept as is.
//
// All rounding is half away from zero at 2 decimal places.
func Compute(unitPrice, quantity decimal.Decimal, flags Flags, rates Rates) (LineTax, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return LineTax{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return LineTax{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if rates.VAT.IsNegative() || rates.ManufacturingTax.IsNegative() {
		return LineTax{}, shared.NewDomainError("INVALID_RATE", "Tax rates cannot be negative")
	}

	gross := unitPrice.Mul(quantity)

	vatRate := decimal.Zero
	if flags.ApplyVAT {
		vatRate = rates.VAT
	}
	manRate := decimal.Zero
	if flags.ApplyManufacturingTax {
		manRate = rates.ManufacturingTax
	}

	var subtotal decimal.Decimal
	if flags.Inclusive {
		divisor := decimal.NewFromInt(1).Add(vatRate).Sub(manRate)
		if divisor.LessThanOrEqual(decimal.Zero) {
			return LineTax{}, shared.NewDomainError("INVALID_RATE", "Combined tax rates leave no taxable base")
		}
		subtotal = gross.Div(divisor).Round(2)
	} else {
		subtotal = gross
	}

	vat := decimal.Zero
	if flags.ApplyVAT {
		vat = subtotal.Mul(rates.VAT).Round(2)
	}
	manufacturingTax := decimal.Zero
	if flags.ApplyManufacturingTax {
		manufacturingTax = subtotal.Mul(rates.ManufacturingTax).Round(2)
	}

	return LineTax{
		Subtotal:         subtotal,
		VAT:              vat,
		ManufacturingTax: manufacturingTax,
		Total:            subtotal.Add(vat).Sub(manufacturingTax),
	}, nil
}

// Add returns the field-wise sum of two breakdowns. Order totals are the sum
// of their line breakdowns.
func (t LineTax) Add(other LineTax) LineTax {
	return LineTax{
		Subtotal:         t.Subtotal.Add(other.Subtotal),
		VAT:              t.VAT.Add(other.VAT),
		ManufacturingTax: t.ManufacturingTax.Add(other.ManufacturingTax),
		Total:            t.Total.Add(other.Total),
	}
}
