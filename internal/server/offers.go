package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/service/negotiation"
	"agromarket/internal/domain/value"
	"agromarket/pkg/httpx/reply"
	"agromarket/pkg/httpx/req"
	"agromarket/pkg/rest"
)

type negotiationService interface {
	CreateOffer(ctx context.Context, lotID, buyerID int64, pricePerBag decimal.Decimal, remarks string) (*entity.Offer, error)
	Respond(ctx context.Context, req negotiation.RespondRequest) (*entity.Offer, error)
	Cancel(ctx context.Context, offerID, actorID int64) (*entity.Offer, error)
	ListSent(ctx context.Context, buyerID int64) ([]entity.Offer, error)
	ListReceived(ctx context.Context, sellerID int64) ([]entity.Offer, error)
}

type OfferServer struct {
	negotiation negotiationService
}

func NewOfferServer(negotiation negotiationService) OfferServer {
	return OfferServer{negotiation: negotiation}
}

func (s OfferServer) postV1Offer(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	buyerID, err := callerID(ctx)
	if err != nil {
		return err
	}

	var request rest.CreateOfferRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	offer, err := s.negotiation.CreateOffer(ctx, request.LotID, buyerID, request.PricePerBag, request.Remarks)
	if err != nil {
		return fmt.Errorf("negotiation.CreateOffer: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTOffer(*offer))

	return nil
}

func (s OfferServer) getV1OffersSent(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	buyerID, err := callerID(ctx)
	if err != nil {
		return err
	}

	offers, err := s.negotiation.ListSent(ctx, buyerID)
	if err != nil {
		return fmt.Errorf("negotiation.ListSent: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOffers(offers))

	return nil
}

func (s OfferServer) getV1OffersReceived(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	sellerID, err := callerID(ctx)
	if err != nil {
		return err
	}

	offers, err := s.negotiation.ListReceived(ctx, sellerID)
	if err != nil {
		return fmt.Errorf("negotiation.ListReceived: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOffers(offers))

	return nil
}

func (s OfferServer) postV1OfferRespond(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	actorID, err := callerID(ctx)
	if err != nil {
		return err
	}

	offerID, err := pathID(r, "id")
	if err != nil {
		return err
	}

	var request rest.RespondOfferRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	// Неизвестное решение передаётся как есть: движок проверяет его после прав и очерёдности.
	decision, ok := value.ParseDecision(request.Decision)
	if !ok {
		decision = value.Decision(request.Decision)
	}

	offer, err := s.negotiation.Respond(ctx, negotiation.RespondRequest{
		OfferID:      offerID,
		ActorID:      actorID,
		Decision:     decision,
		CounterPrice: request.CounterPrice,
		Remarks:      request.Remarks,
	})
	if err != nil {
		return fmt.Errorf("negotiation.Respond: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOffer(*offer))

	return nil
}

func (s OfferServer) deleteV1Offer(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	actorID, err := callerID(ctx)
	if err != nil {
		return err
	}

	offerID, err := pathID(r, "id")
	if err != nil {
		return err
	}

	offer, err := s.negotiation.Cancel(ctx, offerID, actorID)
	if err != nil {
		return fmt.Errorf("negotiation.Cancel: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOffer(*offer))

	return nil
}
