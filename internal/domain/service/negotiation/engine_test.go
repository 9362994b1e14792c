package negotiation

import (
	"context"
	"sync"
	"testing"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/value"
	"agromarket/pkg/errcodes"
)

const (
	buyerA  int64 = 1
	sellerB int64 = 2
	outside int64 = 3
	lotID   int64 = 100
)

func newTestEngine() (*Engine, *memoryStore, *recordingPusher) {
	store := newMemoryStore(entity.Lot{
		ID:            lotID,
		OwnerID:       sellerB,
		CommodityID:   1,
		CommodityName: "Café Arábica",
		Quantity:      250,
		Status:        value.LotStatusPublished,
	})
	pusher := &recordingPusher{}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	engine := NewEngine(store, lotReader{store: store}, pusher).
		WithClock(func() time.Time { return clock })

	return engine, store, pusher
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func requireCode(t *testing.T, err error, code failure.ErrorCode) {
	t.Helper()

	got, ok := domain.GetCode(err)
	require.Truef(t, ok, "expected app error %s, got %v", code, err)
	require.Equal(t, code, got)
}

func TestEngineFullNegotiation(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	engine, store, pusher := newTestEngine()

	offer, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.NewFromInt(10), "first bid")
	rq.NoError(err)
	rq.Equal(value.OfferStatusPending, offer.Status)
	rq.Equal(buyerA, offer.LastModifiedBy)
	rq.Equal(250, offer.Quantity)
	rq.Equal(sellerB, offer.SellerID)

	offer, err = engine.Respond(ctx, RespondRequest{
		OfferID:      offer.ID,
		ActorID:      sellerB,
		Decision:     value.DecisionCounter,
		CounterPrice: price(12),
	})
	rq.NoError(err)
	rq.Equal(value.OfferStatusCountered, offer.Status)
	rq.Equal(sellerB, offer.LastModifiedBy)
	rq.True(offer.PricePerBag.Equal(decimal.NewFromInt(12)))
	rq.NotNil(offer.RespondedAt)

	offer, err = engine.Respond(ctx, RespondRequest{OfferID: offer.ID, ActorID: buyerA, Decision: value.DecisionAccept})
	rq.NoError(err)
	rq.Equal(value.OfferStatusAccepted, offer.Status)
	rq.Equal(buyerA, offer.LastModifiedBy)
	rq.Equal(value.LotStatusUnderOffer, store.lot(lotID).Status)

	for _, actor := range []int64{buyerA, sellerB} {
		_, err = engine.Respond(ctx, RespondRequest{OfferID: offer.ID, ActorID: actor, Decision: value.DecisionReject})
		requireCode(t, err, errcodes.AlreadyClosed)
	}

	pushes := pusher.all()
	rq.Len(pushes, 3)
	rq.Equal(sellerB, pushes[0].userID)
	rq.Equal(buyerA, pushes[1].userID)
	rq.Contains(pushes[1].text, "COUNTERED")
	rq.Equal(sellerB, pushes[2].userID)
	rq.Contains(pushes[2].text, "ACCEPTED")
}

func TestEngineOutOfTurn(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	engine, _, _ := newTestEngine()

	offer, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.NewFromInt(10), "")
	rq.NoError(err)

	_, err = engine.Respond(ctx, RespondRequest{OfferID: offer.ID, ActorID: buyerA, Decision: value.DecisionAccept})
	requireCode(t, err, errcodes.OutOfTurn)

	_, err = engine.Respond(ctx, RespondRequest{
		OfferID: offer.ID, ActorID: sellerB, Decision: value.DecisionCounter, CounterPrice: price(12),
	})
	rq.NoError(err)

	_, err = engine.Respond(ctx, RespondRequest{
		OfferID: offer.ID, ActorID: sellerB, Decision: value.DecisionCounter, CounterPrice: price(13),
	})
	requireCode(t, err, errcodes.OutOfTurn)
}

func TestEngineRespondValidation(t *testing.T) {
	testCases := []struct {
		name     string
		offerID  int64
		actor    int64
		decision value.Decision
		counter  *decimal.Decimal
		code     failure.ErrorCode
	}{
		{name: "Missing offer", offerID: 999, actor: sellerB, decision: value.DecisionAccept, code: errcodes.NotFound},
		{name: "Outsider", actor: outside, decision: value.DecisionAccept, code: errcodes.Forbidden},
		{name: "Counter without price", actor: sellerB, decision: value.DecisionCounter, code: errcodes.InvalidCounter},
		{name: "Counter with zero price", actor: sellerB, decision: value.DecisionCounter, counter: price(0), code: errcodes.InvalidCounter},
		{name: "Counter rounding to zero", actor: sellerB, decision: value.DecisionCounter, counter: amount("0.004"), code: errcodes.InvalidCounter},
		{name: "Unknown decision", actor: sellerB, decision: value.Decision("Pending"), code: errcodes.ValidationError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			ctx := context.Background()

			engine, _, pusher := newTestEngine()

			offer, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.NewFromInt(10), "")
			rq.NoError(err)

			offerID := offer.ID
			if tc.offerID != 0 {
				offerID = tc.offerID
			}

			_, err = engine.Respond(ctx, RespondRequest{
				OfferID: offerID, ActorID: tc.actor, Decision: tc.decision, CounterPrice: tc.counter,
			})
			requireCode(t, err, tc.code)
			rq.Len(pusher.all(), 1)
		})
	}
}

func TestEngineRejectKeepsLot(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	engine, store, _ := newTestEngine()

	offer, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.NewFromInt(10), "")
	rq.NoError(err)

	remarks := "too low"
	offer, err = engine.Respond(ctx, RespondRequest{
		OfferID: offer.ID, ActorID: sellerB, Decision: value.DecisionReject, Remarks: &remarks,
	})
	rq.NoError(err)
	rq.Equal(value.OfferStatusRejected, offer.Status)
	rq.Equal("too low", offer.Remarks)
	rq.Equal(value.LotStatusPublished, store.lot(lotID).Status)
}

func TestEngineCreateOfferValidation(t *testing.T) {
	testCases := []struct {
		name  string
		lotID int64
		buyer int64
		price int64
		code  failure.ErrorCode
	}{
		{name: "Missing lot", lotID: 5, buyer: buyerA, price: 10, code: errcodes.InvalidLot},
		{name: "Own lot", lotID: lotID, buyer: sellerB, price: 10, code: errcodes.SelfTrade},
		{name: "Non-positive price", lotID: lotID, buyer: buyerA, price: 0, code: errcodes.ValidationError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, _, pusher := newTestEngine()

			_, err := engine.CreateOffer(context.Background(), tc.lotID, tc.buyer, decimal.NewFromInt(tc.price), "")
			requireCode(t, err, tc.code)
			require.Empty(t, pusher.all())
		})
	}
}

func TestEnginePricesMatchStoredScale(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	engine, store, _ := newTestEngine()

	offer, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.RequireFromString("10.005"), "")
	rq.NoError(err)
	rq.Equal("10.01", offer.PricePerBag.String())

	offer, err = engine.Respond(ctx, RespondRequest{
		OfferID: offer.ID, ActorID: sellerB, Decision: value.DecisionCounter, CounterPrice: amount("12.345"),
	})
	rq.NoError(err)
	rq.Equal("12.35", offer.PricePerBag.String())

	stored, err := store.GetByID(ctx, offer.ID)
	rq.NoError(err)
	rq.True(stored.PricePerBag.Equal(offer.PricePerBag))

	_, err = engine.CreateOffer(ctx, lotID, buyerA, decimal.RequireFromString("0.001"), "")
	requireCode(t, err, errcodes.ValidationError)
}

func TestEngineCancel(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	engine, _, pusher := newTestEngine()

	offer, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.NewFromInt(10), "")
	rq.NoError(err)

	_, err = engine.Cancel(ctx, offer.ID, sellerB)
	requireCode(t, err, errcodes.Forbidden)

	cancelled, err := engine.Cancel(ctx, offer.ID, buyerA)
	rq.NoError(err)
	rq.Equal(value.OfferStatusCancelled, cancelled.Status)
	rq.Equal(buyerA, cancelled.LastModifiedBy)
	rq.NotNil(cancelled.RespondedAt)

	_, err = engine.Cancel(ctx, offer.ID, buyerA)
	requireCode(t, err, errcodes.AlreadyClosed)

	_, err = engine.Cancel(ctx, 999, buyerA)
	requireCode(t, err, errcodes.NotFound)

	pushes := pusher.all()
	rq.Len(pushes, 2)
	rq.Equal(sellerB, pushes[1].userID)
	rq.Contains(pushes[1].text, "CANCELLED")
}

func TestEngineRespondCancelRace(t *testing.T) {
	for range 50 {
		rq := require.New(t)
		ctx := context.Background()

		engine, _, pusher := newTestEngine()

		offer, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.NewFromInt(10), "")
		rq.NoError(err)

		var (
			wg                  sync.WaitGroup
			acceptErr, cancelErr error
		)

		wg.Add(2)

		go func() {
			defer wg.Done()
			_, acceptErr = engine.Respond(ctx, RespondRequest{OfferID: offer.ID, ActorID: sellerB, Decision: value.DecisionAccept})
		}()

		go func() {
			defer wg.Done()
			_, cancelErr = engine.Cancel(ctx, offer.ID, buyerA)
		}()

		wg.Wait()

		if acceptErr == nil {
			requireCode(t, cancelErr, errcodes.AlreadyClosed)
		} else {
			rq.NoError(cancelErr)
			requireCode(t, acceptErr, errcodes.AlreadyClosed)
		}

		rq.Len(pusher.all(), 2)
	}
}

func TestEnginePersistentConflict(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	engine, store, pusher := newTestEngine()

	offer, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.NewFromInt(10), "")
	rq.NoError(err)

	store.forceConflict = true

	_, err = engine.Respond(ctx, RespondRequest{OfferID: offer.ID, ActorID: sellerB, Decision: value.DecisionReject})
	requireCode(t, err, errcodes.Conflict)
	rq.Len(pusher.all(), 1)
}

func TestEngineListings(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	engine, _, _ := newTestEngine()

	first, err := engine.CreateOffer(ctx, lotID, buyerA, decimal.NewFromInt(10), "")
	rq.NoError(err)
	second, err := engine.CreateOffer(ctx, lotID, outside, decimal.NewFromInt(11), "")
	rq.NoError(err)

	sent, err := engine.ListSent(ctx, buyerA)
	rq.NoError(err)
	rq.Len(sent, 1)
	rq.Equal(first.ID, sent[0].ID)

	received, err := engine.ListReceived(ctx, sellerB)
	rq.NoError(err)
	rq.Len(received, 2)
	rq.Equal(second.ID, received[0].ID)
}
