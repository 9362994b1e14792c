package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote одно наблюдение цены инструмента. После создания не изменяется.
type Quote struct {
	Ticker        string          `json:"ticker"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Timestamp     time.Time       `json:"timestamp"`
}

// HistoryPoint точка исторического ряда поставщика котировок.
type HistoryPoint struct {
	Time  int64           `json:"time"`
	Value decimal.Decimal `json:"value"`
}
