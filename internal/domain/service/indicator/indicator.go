// Package indicator содержит чистые функции технического анализа над рядом цен.
package indicator

import "github.com/shopspring/decimal"

const DefaultRSIPeriod = 14

var (
	hundred = decimal.NewFromInt(100) //nolint:gochecknoglobals
	one     = decimal.NewFromInt(1)   //nolint:gochecknoglobals
)

// SMA простое скользящее среднее. Для i < period-1 возвращается 0.
func SMA(prices []decimal.Decimal, period int) []decimal.Decimal {
	out := make([]decimal.Decimal, len(prices))
	if period <= 0 {
		return out
	}

	p := decimal.NewFromInt(int64(period))
	sum := decimal.Zero

	for i, price := range prices {
		sum = sum.Add(price)

		if i >= period {
			sum = sum.Sub(prices[i-period])
		}

		if i >= period-1 {
			out[i] = sum.Div(p)
		}
	}

	return out
}

// RSI индекс относительной силы со сглаживанием Уайлдера.
// Первые period значений равны 0, длина результата равна длине входа.
func RSI(prices []decimal.Decimal, period int) []decimal.Decimal {
	out := make([]decimal.Decimal, len(prices))
	if period <= 0 || len(prices) <= period {
		return out
	}

	p := decimal.NewFromInt(int64(period))
	prev := decimal.NewFromInt(int64(period - 1))

	avgGain, avgLoss := decimal.Zero, decimal.Zero

	for i := 1; i <= period; i++ {
		gain, loss := delta(prices[i-1], prices[i])
		avgGain = avgGain.Add(gain)
		avgLoss = avgLoss.Add(loss)
	}

	avgGain = avgGain.Div(p)
	avgLoss = avgLoss.Div(p)
	out[period] = rsi(avgGain, avgLoss)

	for i := period + 1; i < len(prices); i++ {
		gain, loss := delta(prices[i-1], prices[i])
		avgGain = avgGain.Mul(prev).Add(gain).Div(p)
		avgLoss = avgLoss.Mul(prev).Add(loss).Div(p)
		out[i] = rsi(avgGain, avgLoss)
	}

	return out
}

// LastRSI возвращает последнее значение RSI и false, если данных недостаточно.
func LastRSI(prices []decimal.Decimal, period int) (decimal.Decimal, bool) {
	if period <= 0 || len(prices) <= period {
		return decimal.Zero, false
	}

	values := RSI(prices, period)

	return values[len(values)-1], true
}

// SupportResistance возвращает минимум и максимум окна; меньше двух точек дают (0, 0).
func SupportResistance(prices []decimal.Decimal) (support, resistance decimal.Decimal) {
	if len(prices) < 2 { //nolint:mnd
		return decimal.Zero, decimal.Zero
	}

	return decimal.Min(prices[0], prices[1:]...), decimal.Max(prices[0], prices[1:]...)
}

func delta(from, to decimal.Decimal) (gain, loss decimal.Decimal) {
	change := to.Sub(from)

	switch {
	case change.IsPositive():
		return change, decimal.Zero
	case change.IsNegative():
		return decimal.Zero, change.Neg()
	default:
		return decimal.Zero, decimal.Zero
	}
}

func rsi(avgGain, avgLoss decimal.Decimal) decimal.Decimal {
	if avgLoss.IsZero() {
		if avgGain.IsPositive() {
			return hundred
		}

		// Плоский ряд: RS = 100, как в исходных расчётах (RSI ≈ 99.0099).
		return hundred.Sub(hundred.Div(one.Add(hundred)))
	}

	rs := avgGain.Div(avgLoss)

	return hundred.Sub(hundred.Div(one.Add(rs)))
}
