package billing

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediconsult/mediconsult/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type paymentMethodRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentMethodRepoPG(pool *pgxpool.Pool) PaymentMethodRepository {
	return &paymentMethodRepoPG{pool: pool}
}

func (r *paymentMethodRepoPG) conn() queryable { return r.pool }

const pmCols = `id, name, provider, enabled, display_order, created_at, updated_at`

func scanMethod(row pgx.Row) (*PaymentMethod, error) {
	var m PaymentMethod
	err := row.Scan(&m.ID, &m.Name, &m.Provider, &m.Enabled, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *paymentMethodRepoPG) Create(ctx context.Context, m *PaymentMethod) error {
	return r.conn().QueryRow(ctx, `
		INSERT INTO payment_methods (name, provider, enabled, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		m.Name, m.Provider, m.Enabled, m.DisplayOrder,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *paymentMethodRepoPG) GetByID(ctx context.Context, id int64) (*PaymentMethod, error) {
	m, err := scanMethod(r.conn().QueryRow(ctx, `SELECT `+pmCols+` FROM payment_methods WHERE id = $1`, id))
	if db.IsNotFound(err) {
		return nil, ErrPaymentMethodNotFound
	}
	return m, err
}

func (r *paymentMethodRepoPG) Update(ctx context.Context, m *PaymentMethod) error {
	err := r.conn().QueryRow(ctx, `
		UPDATE payment_methods SET name = $2, provider = $3, enabled = $4, display_order = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		m.ID, m.Name, m.Provider, m.Enabled, m.DisplayOrder,
	).Scan(&m.UpdatedAt)
	if db.IsNotFound(err) {
		return ErrPaymentMethodNotFound
	}
	return err
}

func (r *paymentMethodRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn().Exec(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentMethodNotFound
	}
	return nil
}

func (r *paymentMethodRepoPG) List(ctx context.Context, enabledOnly bool) ([]*PaymentMethod, error) {
	rows, err := r.conn().Query(ctx, `SELECT `+pmCols+` FROM payment_methods
		WHERE $1 = FALSE OR enabled
		ORDER BY display_order, id`, enabledOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]*PaymentMethod, 0)
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
