// Package negotiation реализует пошаговый торг покупателя и продавца по лоту.
package negotiation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/value"
	"agromarket/internal/metrics"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/logx"
)

// maxAttempts число попыток при конфликте версий предложения.
const maxAttempts = 3

// priceScale знаков после запятой у цены за мешок, как в колонке price_per_bag.
const priceScale = 2

type OfferRepository interface {
	Create(ctx context.Context, offer *entity.Offer) error
	// GetByID возвращает предложение вместе с продавцом лота.
	GetByID(ctx context.Context, id int64) (*entity.Offer, error)
	// Update сохраняет предложение, если версия не изменилась, иначе Conflict.
	Update(ctx context.Context, offer *entity.Offer) error
	// Accept как Update, но вместе с переводом лота в under_offer в одной транзакции.
	Accept(ctx context.Context, offer *entity.Offer) error
	ListByBuyer(ctx context.Context, buyerID int64) ([]entity.Offer, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]entity.Offer, error)
}

type LotRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Lot, error)
}

type Pusher interface {
	Push(ctx context.Context, userID int64, text string)
}

// RespondRequest ход стороны по предложению.
type RespondRequest struct {
	OfferID      int64
	ActorID      int64
	Decision     value.Decision
	CounterPrice *decimal.Decimal
	Remarks      *string
}

type Engine struct {
	offers   OfferRepository
	lots     LotRepository
	notifier Pusher
	now      func() time.Time
}

func NewEngine(offers OfferRepository, lots LotRepository, notifier Pusher) *Engine {
	return &Engine{
		offers:   offers,
		lots:     lots,
		notifier: notifier,
		now:      time.Now,
	}
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CreateOffer открывает торг: предложение в Pending, ход за продавцом.
func (e *Engine) CreateOffer(
	ctx context.Context,
	lotID, buyerID int64,
	pricePerBag decimal.Decimal,
	remarks string,
) (*entity.Offer, error) {
	pricePerBag = pricePerBag.Round(priceScale)
	if !pricePerBag.IsPositive() {
		return nil, domain.NewError(errcodes.ValidationError, "price per bag must be positive")
	}

	lot, err := e.lots.GetByID(ctx, lotID)
	if err != nil {
		if domain.HasCode(err, errcodes.NotFound) {
			return nil, domain.WrapError(err, errcodes.InvalidLot, "lot does not exist")
		}

		return nil, fmt.Errorf("lots.GetByID: %w", err)
	}

	if lot.OwnerID == buyerID {
		return nil, domain.NewError(errcodes.SelfTrade, "cannot make an offer on your own lot")
	}

	offer := &entity.Offer{
		LotID:          lot.ID,
		BuyerID:        buyerID,
		SellerID:       lot.OwnerID,
		CommodityName:  lot.CommodityName,
		PricePerBag:    pricePerBag,
		Quantity:       lot.Quantity,
		Status:         value.OfferStatusPending,
		Remarks:        remarks,
		LastModifiedBy: buyerID,
		CreatedAt:      e.now(),
	}

	if err := e.offers.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("offers.Create: %w", err)
	}

	metrics.OfferTransitions.WithLabelValues(offer.Status.String()).Inc()
	logger(ctx).Info("offer created",
		slog.Int64(logx.FieldOfferID, offer.ID),
		slog.Int64(logx.FieldLotID, lot.ID),
		slog.Int64(logx.FieldUserID, buyerID),
	)

	e.notifier.Push(ctx, lot.OwnerID, fmt.Sprintf(
		"New offer received for your lot of %s: %s per bag",
		commodityName(offer), offer.PricePerBag.StringFixed(2),
	))

	return offer, nil
}

// Respond применяет ход стороны. Порядок проверок: NotFound, Forbidden, AlreadyClosed,
// OutOfTurn, затем корректность решения.
func (e *Engine) Respond(ctx context.Context, req RespondRequest) (*entity.Offer, error) {
	return e.mutate(ctx, req.OfferID, func(offer *entity.Offer) (saver, error) {
		if !offer.IsParty(req.ActorID) {
			return nil, domain.NewError(errcodes.Forbidden, "only the buyer or the seller may respond")
		}

		if offer.Status.IsTerminal() {
			return nil, domain.NewError(errcodes.AlreadyClosed, "negotiation is already closed")
		}

		if offer.LastModifiedBy == req.ActorID {
			return nil, domain.NewError(errcodes.OutOfTurn, "waiting for the other party to respond")
		}

		now := e.now()

		switch req.Decision {
		case value.DecisionAccept:
			offer.Status = value.OfferStatusAccepted
		case value.DecisionReject:
			offer.Status = value.OfferStatusRejected
		case value.DecisionCounter:
			if req.CounterPrice == nil {
				return nil, domain.NewError(errcodes.InvalidCounter, "counter price must be positive")
			}

			counter := req.CounterPrice.Round(priceScale)
			if !counter.IsPositive() {
				return nil, domain.NewError(errcodes.InvalidCounter, "counter price must be positive")
			}

			offer.Status = value.OfferStatusCountered
			offer.PricePerBag = counter
		default:
			return nil, domain.NewError(errcodes.ValidationError, fmt.Sprintf("unknown decision %q", req.Decision))
		}

		offer.LastModifiedBy = req.ActorID
		offer.RespondedAt = &now

		if req.Remarks != nil {
			offer.Remarks = *req.Remarks
		}

		if offer.Status == value.OfferStatusAccepted {
			return e.offers.Accept, nil
		}

		return e.offers.Update, nil
	}, func(offer *entity.Offer) (int64, string) {
		return offer.Counterparty(req.ActorID), respondMessage(offer)
	})
}

// Cancel отзывает предложение. Доступно только покупателю и только до закрытия торга.
func (e *Engine) Cancel(ctx context.Context, offerID, actorID int64) (*entity.Offer, error) {
	return e.mutate(ctx, offerID, func(offer *entity.Offer) (saver, error) {
		if offer.BuyerID != actorID {
			return nil, domain.NewError(errcodes.Forbidden, "only the buyer may cancel the offer")
		}

		if offer.Status.IsTerminal() {
			return nil, domain.NewError(errcodes.AlreadyClosed, "negotiation is already closed")
		}

		now := e.now()
		offer.Status = value.OfferStatusCancelled
		offer.LastModifiedBy = actorID
		offer.RespondedAt = &now

		return e.offers.Update, nil
	}, func(offer *entity.Offer) (int64, string) {
		return offer.SellerID, fmt.Sprintf(
			"The offer for your lot of %s was CANCELLED by the buyer", commodityName(offer),
		)
	})
}

func (e *Engine) ListSent(ctx context.Context, buyerID int64) ([]entity.Offer, error) {
	offers, err := e.offers.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("offers.ListByBuyer: %w", err)
	}

	return offers, nil
}

func (e *Engine) ListReceived(ctx context.Context, sellerID int64) ([]entity.Offer, error) {
	offers, err := e.offers.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("offers.ListBySeller: %w", err)
	}

	return offers, nil
}

type saver func(ctx context.Context, offer *entity.Offer) error

// mutate перечитывает предложение и повторяет переход при конфликте версий,
// так что проигравший гонку получает AlreadyClosed или OutOfTurn по свежему состоянию.
func (e *Engine) mutate(
	ctx context.Context,
	offerID int64,
	apply func(offer *entity.Offer) (saver, error),
	message func(offer *entity.Offer) (int64, string),
) (*entity.Offer, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		offer, err := e.offers.GetByID(ctx, offerID)
		if err != nil {
			return nil, fmt.Errorf("offers.GetByID: %w", err)
		}

		save, err := apply(offer)
		if err != nil {
			return nil, err
		}

		if err := save(ctx, offer); err != nil {
			if domain.HasCode(err, errcodes.Conflict) {
				metrics.OfferConflicts.Inc()
				logger(ctx).Warn("offer version conflict, retrying",
					slog.Int64(logx.FieldOfferID, offerID),
					slog.Int("attempt", attempt),
				)

				continue
			}

			return nil, fmt.Errorf("save offer: %w", err)
		}

		metrics.OfferTransitions.WithLabelValues(offer.Status.String()).Inc()
		logger(ctx).Info("offer updated",
			slog.Int64(logx.FieldOfferID, offer.ID),
			slog.String("status", offer.Status.String()),
			slog.Int64(logx.FieldUserID, offer.LastModifiedBy),
		)

		recipient, text := message(offer)
		e.notifier.Push(ctx, recipient, text)

		return offer, nil
	}

	return nil, domain.NewError(errcodes.Conflict, "offer was modified concurrently, try again")
}

func respondMessage(offer *entity.Offer) string {
	switch offer.Status {
	case value.OfferStatusAccepted:
		return fmt.Sprintf("Your offer for the lot of %s was ACCEPTED", commodityName(offer))
	case value.OfferStatusRejected:
		return fmt.Sprintf("Your offer for the lot of %s was REJECTED", commodityName(offer))
	case value.OfferStatusCountered:
		return fmt.Sprintf("Your offer for the lot of %s was COUNTERED at %s per bag",
			commodityName(offer), offer.PricePerBag.StringFixed(2))
	default:
		return fmt.Sprintf("Your offer for the lot of %s is now %s", commodityName(offer), offer.Status)
	}
}

func commodityName(offer *entity.Offer) string {
	if offer.CommodityName != "" {
		return offer.CommodityName
	}

	return fmt.Sprintf("#%d", offer.LotID)
}
