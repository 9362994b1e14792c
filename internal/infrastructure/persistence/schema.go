package persistence

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/value"
)

// alertSchema строка price_alerts вместе с данными инструмента.
type alertSchema struct {
	ID            int64           `db:"id"`
	OwnerID       int64           `db:"owner_id"`
	CommodityID   int64           `db:"commodity_id"`
	Ticker        string          `db:"ticker"`
	CommodityName string          `db:"commodity_name"`
	TargetPrice   decimal.Decimal `db:"target_price"`
	Active        bool            `db:"active"`
	CreatedAt     time.Time       `db:"created_at"`
	Version       int64           `db:"version"`
}

func (s alertSchema) toDomain() entity.Alert {
	return entity.Alert{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		CommodityID:   s.CommodityID,
		Ticker:        s.Ticker,
		CommodityName: s.CommodityName,
		TargetPrice:   s.TargetPrice,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt,
		Version:       s.Version,
	}
}

// offerSchema строка offers вместе с продавцом лота.
type offerSchema struct {
	ID             int64           `db:"id"`
	LotID          int64           `db:"lot_id"`
	BuyerID        int64           `db:"buyer_id"`
	SellerID       int64           `db:"seller_id"`
	CommodityName  string          `db:"commodity_name"`
	PricePerBag    decimal.Decimal `db:"price_per_bag"`
	Quantity       int             `db:"quantity"`
	Status         string          `db:"status"`
	Remarks        string          `db:"remarks"`
	LastModifiedBy int64           `db:"last_modified_by"`
	CreatedAt      time.Time       `db:"created_at"`
	RespondedAt    sql.NullTime    `db:"responded_at"`
	Version        int64           `db:"version"`
}

func (s offerSchema) toDomain() (entity.Offer, error) {
	status, err := value.ParseOfferStatus(s.Status)
	if err != nil {
		return entity.Offer{}, err
	}

	offer := entity.Offer{
		ID:             s.ID,
		LotID:          s.LotID,
		BuyerID:        s.BuyerID,
		SellerID:       s.SellerID,
		CommodityName:  s.CommodityName,
		PricePerBag:    s.PricePerBag,
		Quantity:       s.Quantity,
		Status:         status,
		Remarks:        s.Remarks,
		LastModifiedBy: s.LastModifiedBy,
		CreatedAt:      s.CreatedAt,
		Version:        s.Version,
	}

	if s.RespondedAt.Valid {
		respondedAt := s.RespondedAt.Time
		offer.RespondedAt = &respondedAt
	}

	return offer, nil
}

type lotSchema struct {
	ID            int64  `db:"id"`
	OwnerID       int64  `db:"owner_id"`
	CommodityID   int64  `db:"commodity_id"`
	CommodityName string `db:"commodity_name"`
	Quantity      int    `db:"quantity"`
	Status        string `db:"status"`
}

func (s lotSchema) toDomain() entity.Lot {
	return entity.Lot{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		CommodityID:   s.CommodityID,
		CommodityName: s.CommodityName,
		Quantity:      s.Quantity,
		Status:        value.LotStatus(s.Status),
	}
}

type userSchema struct {
	ID       int64  `db:"id"`
	FullName string `db:"full_name"`
	Email    string `db:"email"`
	Role     string `db:"role"`
}

func (s userSchema) toDomain() entity.User {
	return entity.User{
		ID:       s.ID,
		FullName: s.FullName,
		Email:    s.Email,
		Role:     value.UserRole(s.Role),
	}
}

type settingsSchema struct {
	CoffeeBasis          decimal.Decimal `db:"coffee_basis"`
	ServiceFeePercentage decimal.Decimal `db:"service_fee_percentage"`
	RSIOverbought        decimal.Decimal `db:"rsi_overbought"`
	RSIOversold          decimal.Decimal `db:"rsi_oversold"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (s settingsSchema) toDomain() entity.MarketSettings {
	return entity.MarketSettings{
		CoffeeBasis:          s.CoffeeBasis,
		ServiceFeePercentage: s.ServiceFeePercentage,
		RSIOverbought:        s.RSIOverbought,
		RSIOversold:          s.RSIOversold,
		UpdatedAt:            s.UpdatedAt,
	}
}
