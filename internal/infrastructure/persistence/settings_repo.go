package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/pkg/errcodes"
)

// SettingsRepository единственная строка market_settings.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*entity.MarketSettings, error) {
	query := `
		SELECT coffee_basis, service_fee_percentage, rsi_overbought, rsi_oversold, updated_at
		FROM market_settings
		WHERE id = 1`

	var schema settingsSchema
	if err := r.db.GetContext(ctx, &schema, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.NotFound, "market settings not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get market settings")
	}

	settings := schema.toDomain()

	return &settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *entity.MarketSettings) error {
	query := `
		INSERT INTO market_settings (id, coffee_basis, service_fee_percentage, rsi_overbought, rsi_oversold, updated_at)
		VALUES (1, :coffee_basis, :service_fee_percentage, :rsi_overbought, :rsi_oversold, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			coffee_basis = EXCLUDED.coffee_basis,
			service_fee_percentage = EXCLUDED.service_fee_percentage,
			rsi_overbought = EXCLUDED.rsi_overbought,
			rsi_oversold = EXCLUDED.rsi_oversold,
			updated_at = EXCLUDED.updated_at`

	params := settingsSchema{
		CoffeeBasis:          s.CoffeeBasis,
		ServiceFeePercentage: s.ServiceFeePercentage,
		RSIOverbought:        s.RSIOverbought,
		RSIOversold:          s.RSIOversold,
		UpdatedAt:            s.UpdatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, query, params); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to save market settings")
	}

	return nil
}
