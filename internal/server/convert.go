package server

import (
	"github.com/samber/lo"

	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/service/indicator"
	"agromarket/internal/domain/value"
	"agromarket/pkg/rest"
)

func newRESTOffer(o entity.Offer) rest.Offer {
	return rest.Offer{
		ID:             o.ID,
		LotID:          o.LotID,
		BuyerID:        o.BuyerID,
		SellerID:       o.SellerID,
		CommodityName:  o.CommodityName,
		PricePerBag:    o.PricePerBag,
		Quantity:       o.Quantity,
		Status:         o.Status.String(),
		Remarks:        o.Remarks,
		LastModifiedBy: o.LastModifiedBy,
		CreatedAt:      o.CreatedAt,
		RespondedAt:    o.RespondedAt,
	}
}

func newRESTOffers(offers []entity.Offer) []rest.Offer {
	return lo.Map(offers, func(o entity.Offer, _ int) rest.Offer { return newRESTOffer(o) })
}

func newRESTAlert(a entity.Alert) rest.Alert {
	return rest.Alert{
		ID:            a.ID,
		CommodityID:   a.CommodityID,
		Ticker:        a.Ticker,
		CommodityName: a.CommodityName,
		TargetPrice:   a.TargetPrice,
		Active:        a.Active,
		CreatedAt:     a.CreatedAt,
	}
}

func newRESTCommodity(c entity.Commodity) rest.Commodity {
	return rest.Commodity{
		ID:            c.ID,
		Name:          c.Name,
		Ticker:        c.Ticker,
		UnitOfMeasure: c.UnitOfMeasure,
	}
}

func newRESTQuote(q entity.Quote) rest.Quote {
	return rest.Quote{
		Ticker:        q.Ticker,
		Price:         q.Price,
		ChangePercent: q.ChangePercent,
		Timestamp:     q.Timestamp,
	}
}

func newRESTHistoryPoint(p entity.HistoryPoint) rest.HistoryPoint {
	return rest.HistoryPoint{Time: p.Time, Value: p.Value}
}

func newRESTRecommendation(r indicator.Recommendation) *rest.Recommendation {
	return &rest.Recommendation{
		Signal:  string(r.Signal),
		Message: r.Message,
		RSI:     r.RSI,
		Color:   r.Color,
	}
}

func newRESTSettings(s entity.MarketSettings) rest.MarketSettings {
	return rest.MarketSettings{
		CoffeeBasis:          s.CoffeeBasis,
		ServiceFeePercentage: s.ServiceFeePercentage,
		RSIOverbought:        s.RSIOverbought,
		RSIOversold:          s.RSIOversold,
		UpdatedAt:            s.UpdatedAt,
	}
}

func newDomainSettings(s rest.MarketSettings) entity.MarketSettings {
	return entity.MarketSettings{
		CoffeeBasis:          s.CoffeeBasis,
		ServiceFeePercentage: s.ServiceFeePercentage,
		RSIOverbought:        s.RSIOverbought,
		RSIOversold:          s.RSIOversold,
	}
}

// newPushMessage кадр push-канала для события хаба.
func newPushMessage(e entity.Event) rest.PushMessage {
	if e.Kind == value.EventKindPriceUpdate {
		return rest.PushMessage{Type: string(e.Kind), Data: newRESTQuote(e.Quote)}
	}

	return rest.PushMessage{Type: string(e.Kind), Data: rest.AlertText{Text: e.Text}}
}
