package server

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/service/negotiation"
	"agromarket/pkg/errcodes"
)

type fakeNegotiation struct {
	mu         sync.Mutex
	created    []entity.Offer
	responds   []negotiation.RespondRequest
	respondErr error
	cancelErr  error
	sent       []entity.Offer
	received   []entity.Offer
}

func (f *fakeNegotiation) CreateOffer(_ context.Context, lotID, buyerID int64, price decimal.Decimal, remarks string) (*entity.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if buyerID == 2 {
		return nil, domain.NewError(errcodes.SelfTrade, "cannot make an offer on your own lot")
	}

	offer := entity.Offer{
		ID:             int64(len(f.created) + 1),
		LotID:          lotID,
		BuyerID:        buyerID,
		SellerID:       2,
		PricePerBag:    price,
		Quantity:       100,
		Status:         "Pending",
		Remarks:        remarks,
		LastModifiedBy: buyerID,
	}
	f.created = append(f.created, offer)

	return &offer, nil
}

func (f *fakeNegotiation) Respond(_ context.Context, req negotiation.RespondRequest) (*entity.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responds = append(f.responds, req)
	if f.respondErr != nil {
		return nil, f.respondErr
	}

	return &entity.Offer{ID: req.OfferID, Status: req.Decision.Status(), LastModifiedBy: req.ActorID}, nil
}

func (f *fakeNegotiation) Cancel(_ context.Context, offerID, actorID int64) (*entity.Offer, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}

	return &entity.Offer{ID: offerID, Status: "Cancelled", LastModifiedBy: actorID}, nil
}

func (f *fakeNegotiation) ListSent(context.Context, int64) ([]entity.Offer, error) {
	return f.sent, nil
}

func (f *fakeNegotiation) ListReceived(context.Context, int64) ([]entity.Offer, error) {
	return f.received, nil
}

type fakeAlerts struct {
	alerts []entity.Alert
}

func (f *fakeAlerts) Create(_ context.Context, ownerID, commodityID int64, target decimal.Decimal) (*entity.Alert, error) {
	if !target.IsPositive() {
		return nil, domain.NewError(errcodes.ValidationError, "target price must be positive")
	}

	a := entity.Alert{ID: int64(len(f.alerts) + 1), OwnerID: ownerID, CommodityID: commodityID, Ticker: "KC", TargetPrice: target, Active: true}
	f.alerts = append(f.alerts, a)

	return &a, nil
}

func (f *fakeAlerts) List(_ context.Context, ownerID int64) ([]entity.Alert, error) {
	var out []entity.Alert
	for _, a := range f.alerts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}

	return out, nil
}

func (f *fakeAlerts) Delete(_ context.Context, ownerID, alertID int64) error {
	for _, a := range f.alerts {
		if a.ID == alertID {
			if a.OwnerID != ownerID {
				return domain.NewError(errcodes.Forbidden, "alert belongs to another user")
			}
			return nil
		}
	}

	return domain.NewError(errcodes.NotFound, "alert not found")
}

func (f *fakeAlerts) ListCommodities(context.Context) ([]entity.Commodity, error) {
	return []entity.Commodity{{ID: 1, Name: "Café Arábica", Ticker: "KC", UnitOfMeasure: "Saca 60kg"}}, nil
}

type fakeQuotes map[string]entity.Quote

func (f fakeQuotes) All(context.Context) (map[string]entity.Quote, error) {
	return f, nil
}

type fakeHistory struct {
	gotInterval string
	gotRange    string
}

func (f *fakeHistory) GetHistory(_ context.Context, ticker, interval, rng string) ([]entity.HistoryPoint, error) {
	f.gotInterval, f.gotRange = interval, rng

	if ticker != "KC" {
		return nil, domain.NewError(errcodes.InvalidTicker, "unknown ticker")
	}

	return []entity.HistoryPoint{{Time: 100, Value: decimal.NewFromInt(180)}}, nil
}

type fakeWindow map[string][]decimal.Decimal

func (f fakeWindow) Snapshot(ticker string) []decimal.Decimal {
	return f[ticker]
}

type fakeSettings struct {
	current entity.MarketSettings
}

func (f *fakeSettings) Get(context.Context) (*entity.MarketSettings, error) {
	s := f.current
	return &s, nil
}

func (f *fakeSettings) Update(_ context.Context, actorID int64, update entity.MarketSettings) (*entity.MarketSettings, error) {
	if actorID != 1 {
		return nil, domain.NewError(errcodes.Forbidden, "only administrators may change market settings")
	}

	f.current = update

	return &update, nil
}
