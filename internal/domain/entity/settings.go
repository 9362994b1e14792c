package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketSettings глобальные настройки рынка. Нулевые пороги RSI означают значения по умолчанию.
type MarketSettings struct {
	CoffeeBasis          decimal.Decimal `json:"coffeeBasis"`
	ServiceFeePercentage decimal.Decimal `json:"serviceFeePercentage"`
	RSIOverbought        decimal.Decimal `json:"rsiOverbought"`
	RSIOversold          decimal.Decimal `json:"rsiOversold"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// Thresholds возвращает пороги RSI, подставляя значения по умолчанию вместо нулевых.
func (s MarketSettings) Thresholds(defOverbought, defOversold decimal.Decimal) (overbought, oversold decimal.Decimal) {
	overbought, oversold = s.RSIOverbought, s.RSIOversold

	if !overbought.IsPositive() {
		overbought = defOverbought
	}

	if !oversold.IsPositive() {
		oversold = defOversold
	}

	return overbought, oversold
}
