package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opportunity вход RSI инструмента в зону перекупленности или перепроданности.
type Opportunity struct {
	Ticker   string
	Zone     string
	Price    decimal.Decimal
	RSI      decimal.Decimal
	BagPrice *decimal.Decimal
	Text     string
	At       time.Time
}
