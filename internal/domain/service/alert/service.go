package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/logx"
)

type Repository interface {
	Create(ctx context.Context, alert *entity.Alert) error
	GetByID(ctx context.Context, id int64) (*entity.Alert, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]entity.Alert, error)
	Delete(ctx context.Context, id int64) error
}

type CommodityRepository interface {
	List(ctx context.Context) ([]entity.Commodity, error)
	GetByID(ctx context.Context, id int64) (*entity.Commodity, error)
}

// Service операции пользователя над собственными оповещениями.
type Service struct {
	repo        Repository
	commodities CommodityRepository
}

func NewService(repo Repository, commodities CommodityRepository) *Service {
	return &Service{
		repo:        repo,
		commodities: commodities,
	}
}

func (s *Service) Create(ctx context.Context, ownerID, commodityID int64, target decimal.Decimal) (*entity.Alert, error) {
	if !target.IsPositive() {
		return nil, domain.NewError(errcodes.ValidationError, "target price must be positive")
	}

	commodity, err := s.commodities.GetByID(ctx, commodityID)
	if err != nil {
		return nil, fmt.Errorf("commodities.GetByID: %w", err)
	}

	alert := &entity.Alert{
		OwnerID:       ownerID,
		CommodityID:   commodity.ID,
		Ticker:        commodity.Ticker,
		CommodityName: commodity.Name,
		TargetPrice:   target,
		Active:        true,
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("repo.Create: %w", err)
	}

	logger(ctx).Info("price alert created",
		slog.Int64(logx.FieldAlertID, alert.ID),
		slog.String(logx.FieldTicker, alert.Ticker),
	)

	return alert, nil
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]entity.Alert, error) {
	alerts, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("repo.ListByOwner: %w", err)
	}

	return alerts, nil
}

// Delete удаляет оповещение владельца. Чужое оповещение даёт Forbidden.
func (s *Service) Delete(ctx context.Context, ownerID, alertID int64) error {
	alert, err := s.repo.GetByID(ctx, alertID)
	if err != nil {
		return fmt.Errorf("repo.GetByID: %w", err)
	}

	if alert.OwnerID != ownerID {
		return domain.NewError(errcodes.Forbidden, "alert belongs to another user")
	}

	if err := s.repo.Delete(ctx, alertID); err != nil {
		return fmt.Errorf("repo.Delete: %w", err)
	}

	return nil
}

func (s *Service) ListCommodities(ctx context.Context) ([]entity.Commodity, error) {
	commodities, err := s.commodities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("commodities.List: %w", err)
	}

	return commodities, nil
}
