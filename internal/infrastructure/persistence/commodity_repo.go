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

type CommodityRepository struct {
	db *sqlx.DB
}

func NewCommodityRepository(db *sqlx.DB) *CommodityRepository {
	return &CommodityRepository{db: db}
}

func (r *CommodityRepository) List(ctx context.Context) ([]entity.Commodity, error) {
	var commodities []entity.Commodity
	if err := r.db.SelectContext(ctx, &commodities, `SELECT id, name, ticker, unit_of_measure FROM commodities ORDER BY id`); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list commodities")
	}

	return commodities, nil
}

func (r *CommodityRepository) GetByID(ctx context.Context, id int64) (*entity.Commodity, error) {
	return r.get(ctx, `SELECT id, name, ticker, unit_of_measure FROM commodities WHERE id = $1`, id)
}

func (r *CommodityRepository) GetByTicker(ctx context.Context, ticker string) (*entity.Commodity, error) {
	return r.get(ctx, `SELECT id, name, ticker, unit_of_measure FROM commodities WHERE ticker = $1`, ticker)
}

func (r *CommodityRepository) get(ctx context.Context, query string, arg any) (*entity.Commodity, error) {
	var commodity entity.Commodity
	if err := r.db.GetContext(ctx, &commodity, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.NotFound, "commodity not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get commodity")
	}

	return &commodity, nil
}
