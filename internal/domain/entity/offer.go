package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain/value"
)

// Offer предложение покупателя по лоту продавца.
// LastModifiedBy хранит сторону, сделавшую последний ход; следующий ход за другой стороной.
type Offer struct {
	ID             int64             `json:"id"`
	LotID          int64             `json:"lotId"`
	BuyerID        int64             `json:"buyerId"`
	SellerID       int64             `json:"sellerId"`
	CommodityName  string            `json:"commodityName"`
	PricePerBag    decimal.Decimal   `json:"pricePerBag"`
	Quantity       int               `json:"quantity"`
	Status         value.OfferStatus `json:"status"`
	Remarks        string            `json:"remarks,omitempty"`
	LastModifiedBy int64             `json:"lastModifiedBy"`
	CreatedAt      time.Time         `json:"createdAt"`
	RespondedAt    *time.Time        `json:"respondedAt,omitempty"`
	Version        int64             `json:"-"`
}

func (o Offer) IsParty(userID int64) bool {
	return userID == o.BuyerID || userID == o.SellerID
}

// Counterparty возвращает другую сторону сделки относительно userID.
func (o Offer) Counterparty(userID int64) int64 {
	if userID == o.BuyerID {
		return o.SellerID
	}

	return o.BuyerID
}
