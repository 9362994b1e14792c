package entity

import "agromarket/internal/domain/value"

type Lot struct {
	ID            int64           `json:"id"`
	OwnerID       int64           `json:"ownerId"`
	CommodityID   int64           `json:"commodityId"`
	CommodityName string          `json:"commodityName"`
	Quantity      int             `json:"quantity"`
	Status        value.LotStatus `json:"status"`
}
