package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/value"
	"agromarket/internal/infrastructure/broadcast"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/middlewarex"
	"agromarket/pkg/rest"
	"agromarket/pkg/tests"
)

type testEnv struct {
	client      tests.APIClient
	negotiation *fakeNegotiation
	alerts      *fakeAlerts
	history     *fakeHistory
	settings    *fakeSettings
	hub         *broadcast.Hub
	url         string
}

func newTestEnv(t *testing.T, window fakeWindow) testEnv {
	t.Helper()

	env := testEnv{
		negotiation: &fakeNegotiation{},
		alerts:      &fakeAlerts{},
		history:     &fakeHistory{},
		settings:    &fakeSettings{},
		hub:         broadcast.NewHub(8),
	}

	quotes := fakeQuotes{
		"USDBRL": {Ticker: "USDBRL", Price: decimal.RequireFromString("5.10")},
		"KC":     {Ticker: "KC", Price: decimal.NewFromInt(180)},
		"C8":     {Ticker: "C8", Price: decimal.NewFromInt(60)},
	}

	s := NewServer(
		NewOfferServer(env.negotiation),
		NewAlertServer(env.alerts),
		NewMarketServer(quotes, env.history, window, env.settings, 14),
		NewPushServer(env.hub, nil),
	)

	srv := httptest.NewServer(NewHandler(s, 10000))
	t.Cleanup(srv.Close)

	env.url = srv.URL
	env.client = tests.NewAPIClient(srv.URL, srv.Client())

	return env
}

func asUser(id string) http.Header {
	return http.Header{middlewarex.HeaderNameUserID: {id}}
}

func TestCallerIdentityRequired(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t, nil)

	var errResp rest.Error
	resp, err := env.client.Get(context.Background(), "/v1/offers/sent", nil, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusUnauthorized, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.Unauthorized), errResp.Code)

	resp, err = env.client.Get(context.Background(), "/v1/offers/sent", asUser("abc"), nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateOffer(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t, nil)
	ctx := context.Background()

	var offer rest.Offer
	resp, err := env.client.Post(ctx, "/v1/offers", asUser("7"), rest.CreateOfferRequest{
		LotID:       3,
		PricePerBag: decimal.NewFromInt(1500),
		Remarks:     "FOB Santos",
	}, &offer, nil)
	rq.NoError(err)
	rq.Equal(http.StatusCreated, resp.StatusCode)
	rq.Equal(int64(3), offer.LotID)
	rq.Equal(int64(7), offer.BuyerID)
	rq.Equal(int64(7), offer.LastModifiedBy)
	rq.Equal("Pending", offer.Status)
	rq.True(decimal.NewFromInt(1500).Equal(offer.PricePerBag))

	var errResp rest.Error
	resp, err = env.client.Post(ctx, "/v1/offers", asUser("2"), rest.CreateOfferRequest{
		LotID:       3,
		PricePerBag: decimal.NewFromInt(1500),
	}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.SelfTrade), errResp.Code)

	resp, err = env.client.PostJSON(ctx, "/v1/offers", asUser("7"), `{"lotId":`, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.ValidationError), errResp.Code)

	resp, err = env.client.PostJSON(ctx, "/v1/offers", asUser("7"), `{"pricePerBag":"10"}`, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestRespondErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   rest.ErrorCode
	}{
		{
			name:       "out of turn",
			err:        domain.NewError(errcodes.OutOfTurn, "waiting for the other party"),
			wantStatus: http.StatusConflict,
			wantCode:   rest.ErrorCode(errcodes.OutOfTurn),
		},
		{
			name:       "already closed",
			err:        domain.NewError(errcodes.AlreadyClosed, "offer is closed"),
			wantStatus: http.StatusConflict,
			wantCode:   rest.ErrorCode(errcodes.AlreadyClosed),
		},
		{
			name:       "invalid counter",
			err:        domain.NewError(errcodes.InvalidCounter, "counter price must be positive"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   rest.ErrorCode(errcodes.InvalidCounter),
		},
		{
			name:       "forbidden",
			err:        domain.NewError(errcodes.Forbidden, "not a party"),
			wantStatus: http.StatusForbidden,
			wantCode:   rest.ErrorCode(errcodes.Forbidden),
		},
		{
			name:       "not found",
			err:        domain.NewError(errcodes.NotFound, "offer not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   rest.ErrorCode(errcodes.NotFound),
		},
		{
			name:       "conflict",
			err:        domain.NewError(errcodes.Conflict, "offer modified concurrently"),
			wantStatus: http.StatusConflict,
			wantCode:   rest.ErrorCode(errcodes.Conflict),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			env := newTestEnv(t, nil)
			env.negotiation.respondErr = tc.err

			var errResp rest.Error
			resp, err := env.client.Post(context.Background(), "/v1/offers/5/respond", asUser("2"),
				rest.RespondOfferRequest{Decision: "Rejected"}, nil, &errResp)
			rq.NoError(err)
			rq.Equal(tc.wantStatus, resp.StatusCode)
			rq.Equal(tc.wantCode, errResp.Code)
			rq.NotEmpty(errResp.Message)
		})
	}
}

func TestRespondPassesDecision(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t, nil)
	ctx := context.Background()

	counter := decimal.NewFromInt(1550)
	remarks := "meet halfway"

	var offer rest.Offer
	resp, err := env.client.Post(ctx, "/v1/offers/5/respond", asUser("2"), rest.RespondOfferRequest{
		Decision:     "countered",
		CounterPrice: &counter,
		Remarks:      &remarks,
	}, &offer, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("Countered", offer.Status)

	resp, err = env.client.Post(ctx, "/v1/offers/5/respond", asUser("2"),
		rest.RespondOfferRequest{Decision: "Maybe"}, nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.Len(env.negotiation.responds, 2)

	first := env.negotiation.responds[0]
	rq.Equal(int64(5), first.OfferID)
	rq.Equal(int64(2), first.ActorID)
	rq.Equal(value.DecisionCounter, first.Decision)
	rq.True(counter.Equal(*first.CounterPrice))
	rq.Equal(remarks, *first.Remarks)

	rq.Equal(value.Decision("Maybe"), env.negotiation.responds[1].Decision)

	var errResp rest.Error
	resp, err = env.client.Post(ctx, "/v1/offers/abc/respond", asUser("2"),
		rest.RespondOfferRequest{Decision: "Accepted"}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestCancelOffer(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t, nil)
	ctx := context.Background()

	var offer rest.Offer
	resp, err := env.client.Delete(ctx, "/v1/offers/9", asUser("7"), &offer, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("Cancelled", offer.Status)
	rq.Equal(int64(7), offer.LastModifiedBy)

	env.negotiation.cancelErr = domain.NewError(errcodes.AlreadyClosed, "offer is closed")

	var errResp rest.Error
	resp, err = env.client.Delete(ctx, "/v1/offers/9", asUser("7"), nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusConflict, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.AlreadyClosed), errResp.Code)
}

func TestListOffers(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t, nil)
	env.negotiation.sent = []entity.Offer{{ID: 1, BuyerID: 7, Status: value.OfferStatusPending}}
	env.negotiation.received = []entity.Offer{
		{ID: 2, SellerID: 7, Status: value.OfferStatusCountered},
		{ID: 3, SellerID: 7, Status: value.OfferStatusAccepted},
	}

	var sent, received []rest.Offer
	_, err := env.client.Get(context.Background(), "/v1/offers/sent", asUser("7"), &sent, nil)
	rq.NoError(err)
	_, err = env.client.Get(context.Background(), "/v1/offers/received", asUser("7"), &received, nil)
	rq.NoError(err)

	rq.Len(sent, 1)
	rq.Len(received, 2)
	rq.Equal("Countered", received[0].Status)
}

func TestAlertsEndpoints(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t, nil)
	ctx := context.Background()

	var created rest.Alert
	resp, err := env.client.Post(ctx, "/v1/alerts", asUser("7"), rest.CreateAlertRequest{
		CommodityID: 1,
		TargetPrice: decimal.NewFromInt(200),
	}, &created, nil)
	rq.NoError(err)
	rq.Equal(http.StatusCreated, resp.StatusCode)
	rq.True(created.Active)
	rq.Equal("KC", created.Ticker)

	var errResp rest.Error
	resp, err = env.client.Post(ctx, "/v1/alerts", asUser("7"), rest.CreateAlertRequest{
		CommodityID: 1,
		TargetPrice: decimal.Zero,
	}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)

	var list []rest.Alert
	_, err = env.client.Get(ctx, "/v1/alerts", asUser("7"), &list, nil)
	rq.NoError(err)
	rq.Len(list, 1)

	_, err = env.client.Get(ctx, "/v1/alerts", asUser("8"), &list, nil)
	rq.NoError(err)
	rq.Empty(list)

	resp, err = env.client.Delete(ctx, "/v1/alerts/1", asUser("8"), nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusForbidden, resp.StatusCode)

	resp, err = env.client.Delete(ctx, "/v1/alerts/1", asUser("7"), nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusNoContent, resp.StatusCode)

	resp, err = env.client.Delete(ctx, "/v1/alerts/42", asUser("7"), nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)

	var commodities []rest.Commodity
	_, err = env.client.Get(ctx, "/v1/alerts/commodities", asUser("7"), &commodities, nil)
	rq.NoError(err)
	rq.Len(commodities, 1)
	rq.Equal("Saca 60kg", commodities[0].UnitOfMeasure)
}

func TestMarketQuotesSorted(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t, nil)

	var quotes []rest.Quote
	resp, err := env.client.Get(context.Background(), "/v1/market/quotes", asUser("7"), &quotes, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(quotes, 3)
	rq.Equal([]string{"C8", "KC", "USDBRL"}, []string{quotes[0].Ticker, quotes[1].Ticker, quotes[2].Ticker})
}

func TestMarketHistory(t *testing.T) {
	testCases := []struct {
		name         string
		endpoint     string
		wantStatus   int
		wantInterval string
		wantRange    string
	}{
		{
			name:         "defaults",
			endpoint:     "/v1/market/history/KC",
			wantStatus:   http.StatusOK,
			wantInterval: "1h",
			wantRange:    "1d",
		},
		{
			name:         "explicit",
			endpoint:     "/v1/market/history/KC?interval=1d&range=3mo",
			wantStatus:   http.StatusOK,
			wantInterval: "1d",
			wantRange:    "3mo",
		},
		{
			name:       "bad range",
			endpoint:   "/v1/market/history/KC?range=forever",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown ticker",
			endpoint:   "/v1/market/history/XX",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			env := newTestEnv(t, nil)

			var points []rest.HistoryPoint
			resp, err := env.client.Get(context.Background(), tc.endpoint, asUser("7"), &points, nil)
			rq.NoError(err)
			rq.Equal(tc.wantStatus, resp.StatusCode)

			if tc.wantStatus == http.StatusOK {
				rq.Len(points, 1)
				rq.Equal(tc.wantInterval, env.history.gotInterval)
				rq.Equal(tc.wantRange, env.history.gotRange)
			}
		})
	}
}

func TestMarketIndicators(t *testing.T) {
	rq := require.New(t)

	rising := make([]decimal.Decimal, 0, 15)
	for i := range 15 {
		rising = append(rising, decimal.NewFromInt(int64(180+i)))
	}

	env := newTestEnv(t, fakeWindow{
		"KC": rising,
		"C8": rising[:5],
	})
	ctx := context.Background()

	var ind rest.Indicators
	resp, err := env.client.Get(ctx, "/v1/market/indicators/KC", asUser("7"), &ind, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(15, ind.Depth)
	rq.Equal(14, ind.Period)
	rq.NotNil(ind.RSI)
	rq.True(decimal.NewFromInt(100).Equal(*ind.RSI))
	rq.NotNil(ind.SMA)
	rq.Equal("overbought", ind.Zone)
	rq.NotNil(ind.Recommendation)
	rq.Equal("StrongSell", ind.Recommendation.Signal)
	rq.True(decimal.NewFromInt(180).Equal(ind.Support))
	rq.True(decimal.NewFromInt(194).Equal(ind.Resistance))

	var short rest.Indicators
	resp, err = env.client.Get(ctx, "/v1/market/indicators/C8", asUser("7"), &short, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(5, short.Depth)
	rq.Nil(short.RSI)
	rq.Nil(short.SMA)
	rq.Nil(short.Recommendation)

	var errResp rest.Error
	resp, err = env.client.Get(ctx, "/v1/market/indicators/B3", asUser("7"), nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestMarketSettings(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t, nil)
	ctx := context.Background()

	update := rest.MarketSettings{
		CoffeeBasis:          decimal.NewFromInt(-15),
		ServiceFeePercentage: decimal.RequireFromString("1.5"),
		RSIOverbought:        decimal.NewFromInt(75),
		RSIOversold:          decimal.NewFromInt(25),
	}

	var errResp rest.Error
	resp, err := env.client.Put(ctx, "/v1/market/settings", asUser("7"), update, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusForbidden, resp.StatusCode)

	var updated rest.MarketSettings
	resp, err = env.client.Put(ctx, "/v1/market/settings", asUser("1"), update, &updated, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(decimal.NewFromInt(75).Equal(updated.RSIOverbought))

	var current rest.MarketSettings
	_, err = env.client.Get(ctx, "/v1/market/settings", asUser("7"), &current, nil)
	rq.NoError(err)
	rq.True(decimal.NewFromInt(-15).Equal(current.CoffeeBasis))
	rq.True(decimal.NewFromInt(25).Equal(current.RSIOversold))
}
