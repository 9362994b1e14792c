// Package pricing пересчитывает биржевые котировки кофе в цену мешка.
package pricing

import "github.com/shopspring/decimal"

//nolint:gochecknoglobals
var (
	// LbsIn60KgBag фунтов в мешке 60 кг.
	LbsIn60KgBag = decimal.RequireFromString("132.2762")

	cents = decimal.NewFromInt(100)
)

// CoffeeBagPrice цена мешка 60 кг в BRL: (цент/фунт / 100 * фунтов в мешке * курс + базис) * коэффициент.
// Неположительная котировка или курс дают 0.
func CoffeeBagPrice(priceNYCents, dollarRate, basis, adjustment decimal.Decimal) decimal.Decimal {
	if !priceNYCents.IsPositive() || !dollarRate.IsPositive() {
		return decimal.Zero
	}

	perBag := priceNYCents.Div(cents).Mul(LbsIn60KgBag).Mul(dollarRate)

	return perBag.Add(basis).Mul(adjustment).Round(2) //nolint:mnd
}

// WithServiceFee добавляет комиссию сервиса в процентах.
func WithServiceFee(price, feePercentage decimal.Decimal) decimal.Decimal {
	if !feePercentage.IsPositive() {
		return price
	}

	return price.Add(price.Mul(feePercentage).Div(cents)).Round(2) //nolint:mnd
}
