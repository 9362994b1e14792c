package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert одноразовое ценовое оповещение пользователя.
// Переходит из active в inactive ровно один раз и обратно не возвращается.
type Alert struct {
	ID            int64           `json:"id"`
	OwnerID       int64           `json:"ownerId"`
	CommodityID   int64           `json:"commodityId"`
	Ticker        string          `json:"ticker"`
	CommodityName string          `json:"commodityName"`
	TargetPrice   decimal.Decimal `json:"targetPrice"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
	Version       int64           `json:"-"`
}

// Matches сообщает, попадает ли цена в относительную окрестность целевой цены.
func (a Alert) Matches(price, band decimal.Decimal) bool {
	if !a.TargetPrice.IsPositive() {
		return false
	}

	diff := price.Sub(a.TargetPrice).Abs().Div(a.TargetPrice)

	return diff.LessThanOrEqual(band)
}
