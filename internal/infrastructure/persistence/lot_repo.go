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

// LotRepository только чтение лотов; смена статуса идёт через OfferRepository.Accept.
type LotRepository struct {
	db *sqlx.DB
}

func NewLotRepository(db *sqlx.DB) *LotRepository {
	return &LotRepository{db: db}
}

func (r *LotRepository) GetByID(ctx context.Context, id int64) (*entity.Lot, error) {
	query := `
		SELECT l.id, l.owner_id, l.commodity_id, c.name AS commodity_name, l.quantity, l.status
		FROM lots l
		JOIN commodities c ON c.id = l.commodity_id
		WHERE l.id = $1`

	var schema lotSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.NotFound, "lot not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get lot")
	}

	lot := schema.toDomain()

	return &lot, nil
}
