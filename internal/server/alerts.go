package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"agromarket/internal/domain/entity"
	"agromarket/pkg/httpx/reply"
	"agromarket/pkg/httpx/req"
	"agromarket/pkg/rest"
)

type alertService interface {
	Create(ctx context.Context, ownerID, commodityID int64, target decimal.Decimal) (*entity.Alert, error)
	List(ctx context.Context, ownerID int64) ([]entity.Alert, error)
	Delete(ctx context.Context, ownerID, alertID int64) error
	ListCommodities(ctx context.Context) ([]entity.Commodity, error)
}

type AlertServer struct {
	alerts alertService
}

func NewAlertServer(alerts alertService) AlertServer {
	return AlertServer{alerts: alerts}
}

func (s AlertServer) getV1Alerts(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	ownerID, err := callerID(ctx)
	if err != nil {
		return err
	}

	alerts, err := s.alerts.List(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("alerts.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, lo.Map(alerts, func(a entity.Alert, _ int) rest.Alert { return newRESTAlert(a) }))

	return nil
}

func (s AlertServer) postV1Alert(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	ownerID, err := callerID(ctx)
	if err != nil {
		return err
	}

	var request rest.CreateAlertRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	alert, err := s.alerts.Create(ctx, ownerID, request.CommodityID, request.TargetPrice)
	if err != nil {
		return fmt.Errorf("alerts.Create: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTAlert(*alert))

	return nil
}

func (s AlertServer) deleteV1Alert(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	ownerID, err := callerID(ctx)
	if err != nil {
		return err
	}

	alertID, err := pathID(r, "id")
	if err != nil {
		return err
	}

	if err := s.alerts.Delete(ctx, ownerID, alertID); err != nil {
		return fmt.Errorf("alerts.Delete: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

func (s AlertServer) getV1AlertCommodities(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	commodities, err := s.alerts.ListCommodities(ctx)
	if err != nil {
		return fmt.Errorf("alerts.ListCommodities: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, lo.Map(commodities, func(c entity.Commodity, _ int) rest.Commodity { return newRESTCommodity(c) }))

	return nil
}
