package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/value"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/lox"
)

const offerSelect = `
	SELECT o.id, o.lot_id, o.buyer_id, l.owner_id AS seller_id, c.name AS commodity_name,
	       o.price_per_bag, o.quantity, o.status, o.remarks, o.last_modified_by,
	       o.created_at, o.responded_at, o.version
	FROM offers o
	JOIN lots l ON l.id = o.lot_id
	JOIN commodities c ON c.id = l.commodity_id`

type OfferRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, offer *entity.Offer) error {
	query := `
		INSERT INTO offers (lot_id, buyer_id, price_per_bag, quantity, status, remarks, last_modified_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version`

	row := r.db.QueryRowxContext(ctx, query,
		offer.LotID,
		offer.BuyerID,
		offer.PricePerBag,
		offer.Quantity,
		offer.Status.String(),
		offer.Remarks,
		offer.LastModifiedBy,
		offer.CreatedAt,
	)

	if err := row.Scan(&offer.ID, &offer.Version); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert offer")
	}

	return nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*entity.Offer, error) {
	var schema offerSchema
	if err := r.db.GetContext(ctx, &schema, offerSelect+` WHERE o.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.NotFound, "offer not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get offer")
	}

	offer, err := schema.toDomain()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert offer")
	}

	return &offer, nil
}

// Update сохраняет предложение при совпадении версии, иначе возвращает Conflict.
func (r *OfferRepository) Update(ctx context.Context, offer *entity.Offer) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return r.updateTx(ctx, tx, offer)
	})
}

// Accept сохраняет принятое предложение и переводит лот в under_offer атомарно.
func (r *OfferRepository) Accept(ctx context.Context, offer *entity.Offer) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := r.updateTx(ctx, tx, offer); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `UPDATE lots SET status = $1 WHERE id = $2`, value.LotStatusUnderOffer.String(), offer.LotID)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to update lot status")
		}

		return requireAffected(res, "lot not found")
	})
}

func (r *OfferRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]entity.Offer, error) {
	return r.list(ctx, offerSelect+` WHERE o.buyer_id = $1 ORDER BY o.created_at DESC, o.id DESC`, buyerID)
}

func (r *OfferRepository) ListBySeller(ctx context.Context, sellerID int64) ([]entity.Offer, error) {
	return r.list(ctx, offerSelect+` WHERE l.owner_id = $1 ORDER BY o.created_at DESC, o.id DESC`, sellerID)
}

func (r *OfferRepository) list(ctx context.Context, query string, args ...any) ([]entity.Offer, error) {
	var schemas []offerSchema
	if err := r.db.SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list offers")
	}

	offers, err := lox.MapErr(schemas, offerSchema.toDomain)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert offer")
	}

	return offers, nil
}

func (r *OfferRepository) updateTx(ctx context.Context, tx *sqlx.Tx, offer *entity.Offer) error {
	query := `
		UPDATE offers
		SET price_per_bag = $1, status = $2, remarks = $3, last_modified_by = $4,
		    responded_at = $5, version = version + 1
		WHERE id = $6 AND version = $7`

	res, err := tx.ExecContext(ctx, query,
		offer.PricePerBag,
		offer.Status.String(),
		offer.Remarks,
		offer.LastModifiedBy,
		offer.RespondedAt,
		offer.ID,
		offer.Version,
	)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to update offer")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.Conflict, "offer version mismatch")
	}

	offer.Version++

	return nil
}
