// Package settings глобальные настройки рынка: базис, комиссия и пороги RSI.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/pkg/errcodes"
)

//nolint:gochecknoglobals
var (
	DefaultOverbought = decimal.NewFromInt(70)
	DefaultOversold   = decimal.NewFromInt(30)

	hundred = decimal.NewFromInt(100)
)

type Repository interface {
	Get(ctx context.Context) (*entity.MarketSettings, error)
	Save(ctx context.Context, s *entity.MarketSettings) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

type Service struct {
	repo  Repository
	users UserRepository
}

func NewService(repo Repository, users UserRepository) *Service {
	return &Service{
		repo:  repo,
		users: users,
	}
}

func (s *Service) Get(ctx context.Context) (*entity.MarketSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if domain.HasCode(err, errcodes.NotFound) {
			return &entity.MarketSettings{}, nil
		}

		return nil, fmt.Errorf("repo.Get: %w", err)
	}

	return settings, nil
}

// Update сохраняет настройки. Доступно только администратору.
func (s *Service) Update(ctx context.Context, actorID int64, update entity.MarketSettings) (*entity.MarketSettings, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if domain.HasCode(err, errcodes.NotFound) {
			return nil, domain.WrapError(err, errcodes.Forbidden, "unknown user")
		}

		return nil, fmt.Errorf("users.GetByID: %w", err)
	}

	if !actor.IsAdmin() {
		return nil, domain.NewError(errcodes.Forbidden, "only administrators may change market settings")
	}

	if err := validate(update); err != nil {
		return nil, err
	}

	update.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, &update); err != nil {
		return nil, fmt.Errorf("repo.Save: %w", err)
	}

	return &update, nil
}

func validate(s entity.MarketSettings) error {
	if s.ServiceFeePercentage.IsNegative() || s.ServiceFeePercentage.GreaterThan(hundred) {
		return domain.NewError(errcodes.ValidationError, "service fee must be between 0 and 100")
	}

	for _, v := range []decimal.Decimal{s.RSIOverbought, s.RSIOversold} {
		if v.IsNegative() || v.GreaterThan(hundred) {
			return domain.NewError(errcodes.ValidationError, "RSI thresholds must be between 0 and 100")
		}
	}

	over, under := s.Thresholds(DefaultOverbought, DefaultOversold)
	if !under.LessThan(over) {
		return domain.NewError(errcodes.ValidationError, "oversold threshold must be below overbought")
	}

	return nil
}
