package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/pkg/errcodes"
)

const alertSelect = `
	SELECT a.id, a.owner_id, a.commodity_id, c.ticker, c.name AS commodity_name,
	       a.target_price, a.active, a.created_at, a.version
	FROM price_alerts a
	JOIN commodities c ON c.id = a.commodity_id`

type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// ListActiveByTicker снимок активных оповещений на момент вызова.
func (r *AlertRepository) ListActiveByTicker(ctx context.Context, ticker string) ([]entity.Alert, error) {
	var schemas []alertSchema
	if err := r.db.SelectContext(ctx, &schemas, alertSelect+` WHERE a.active AND c.ticker = $1 ORDER BY a.id`, ticker); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list active alerts")
	}

	return lo.Map(schemas, func(s alertSchema, _ int) entity.Alert { return s.toDomain() }), nil
}

// DeactivateBatch одним условным UPDATE выключает оповещения, которые всё ещё активны
// и не менялись с момента чтения. Возвращает идентификаторы переключённых строк.
func (r *AlertRepository) DeactivateBatch(ctx context.Context, alerts []entity.Alert) ([]int64, error) {
	if len(alerts) == 0 {
		return nil, nil
	}

	ids := lo.Map(alerts, func(a entity.Alert, _ int) int64 { return a.ID })
	versions := lo.Map(alerts, func(a entity.Alert, _ int) int64 { return a.Version })

	query := `
		UPDATE price_alerts p
		SET active = FALSE, version = p.version + 1
		FROM unnest($1::bigint[], $2::bigint[]) AS t(id, version)
		WHERE p.id = t.id AND p.active AND p.version = t.version
		RETURNING p.id`

	var deactivated []int64
	if err := r.db.SelectContext(ctx, &deactivated, query, ids, versions); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to deactivate alerts")
	}

	return deactivated, nil
}

func (r *AlertRepository) Create(ctx context.Context, alert *entity.Alert) error {
	query := `
		INSERT INTO price_alerts (owner_id, commodity_id, target_price, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version`

	row := r.db.QueryRowxContext(ctx, query, alert.OwnerID, alert.CommodityID, alert.TargetPrice, alert.Active)
	if err := row.Scan(&alert.ID, &alert.CreatedAt, &alert.Version); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert alert")
	}

	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*entity.Alert, error) {
	var schema alertSchema
	if err := r.db.GetContext(ctx, &schema, alertSelect+` WHERE a.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.NotFound, "alert not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get alert")
	}

	alert := schema.toDomain()

	return &alert, nil
}

func (r *AlertRepository) ListByOwner(ctx context.Context, ownerID int64) ([]entity.Alert, error) {
	var schemas []alertSchema
	if err := r.db.SelectContext(ctx, &schemas, alertSelect+` WHERE a.owner_id = $1 ORDER BY a.created_at DESC`, ownerID); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list alerts")
	}

	return lo.Map(schemas, func(s alertSchema, _ int) entity.Alert { return s.toDomain() }), nil
}

func (r *AlertRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM price_alerts WHERE id = $1`, id)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to delete alert")
	}

	return requireAffected(res, "alert not found")
}

func requireAffected(res sql.Result, notFound string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.NotFound, notFound)
	}

	return nil
}
