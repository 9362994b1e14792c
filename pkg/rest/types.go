// Модели HTTP API и push-канала рынка.
package rest

import (
	"time"

	"github.com/shopspring/decimal"
)

type Offer struct {
	ID             int64           `json:"id"`
	LotID          int64           `json:"lotId"`
	BuyerID        int64           `json:"buyerId"`
	SellerID       int64           `json:"sellerId"`
	CommodityName  string          `json:"commodityName"`
	PricePerBag    decimal.Decimal `json:"pricePerBag"`
	Quantity       int             `json:"quantity"`
	Status         string          `json:"status"`
	Remarks        string          `json:"remarks,omitempty"`
	LastModifiedBy int64           `json:"lastModifiedBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	RespondedAt    *time.Time      `json:"respondedAt,omitempty"`
}

type CreateOfferRequest struct {
	LotID       int64           `json:"lotId" validate:"required,gt=0"`
	PricePerBag decimal.Decimal `json:"pricePerBag"`
	Remarks     string          `json:"remarks" validate:"max=1000"`
}

type RespondOfferRequest struct {
	Decision     string           `json:"decision" validate:"required"`
	CounterPrice *decimal.Decimal `json:"counterPrice,omitempty"`
	Remarks      *string          `json:"remarks,omitempty" validate:"omitempty,max=1000"`
}

type Alert struct {
	ID            int64           `json:"id"`
	CommodityID   int64           `json:"commodityId"`
	Ticker        string          `json:"ticker"`
	CommodityName string          `json:"commodityName"`
	TargetPrice   decimal.Decimal `json:"targetPrice"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type CreateAlertRequest struct {
	CommodityID int64           `json:"commodityId" validate:"required,gt=0"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
}

type Commodity struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Ticker        string `json:"ticker"`
	UnitOfMeasure string `json:"unitOfMeasure"`
}

type Quote struct {
	Ticker        string          `json:"ticker"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Timestamp     time.Time       `json:"timestamp"`
}

type HistoryPoint struct {
	Time  int64           `json:"time"`
	Value decimal.Decimal `json:"value"`
}

type Recommendation struct {
	Signal  string          `json:"signal"`
	Message string          `json:"message"`
	RSI     decimal.Decimal `json:"rsi"`
	Color   string          `json:"color"`
}

// Indicators индикаторы по окну цен движка. Поля RSI и SMA пусты, пока окно короче периода.
type Indicators struct {
	Ticker         string           `json:"ticker"`
	Depth          int              `json:"depth"`
	Period         int              `json:"period"`
	RSI            *decimal.Decimal `json:"rsi,omitempty"`
	SMA            *decimal.Decimal `json:"sma,omitempty"`
	Support        decimal.Decimal  `json:"support"`
	Resistance     decimal.Decimal  `json:"resistance"`
	Zone           string           `json:"zone,omitempty"`
	Recommendation *Recommendation  `json:"recommendation,omitempty"`
}

type MarketSettings struct {
	CoffeeBasis          decimal.Decimal `json:"coffeeBasis"`
	ServiceFeePercentage decimal.Decimal `json:"serviceFeePercentage"`
	RSIOverbought        decimal.Decimal `json:"rsiOverbought"`
	RSIOversold          decimal.Decimal `json:"rsiOversold"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// PushCommand сообщение клиента в push-канал.
type PushCommand struct {
	Action string `json:"action"`
	Group  string `json:"group"`
}

// PushMessage сообщение сервера в push-канал: type priceUpdate несёт Quote, alert несёт AlertText.
type PushMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type AlertText struct {
	Text string `json:"text"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string
