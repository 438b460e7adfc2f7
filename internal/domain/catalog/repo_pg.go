package catalog

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

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, err error, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// =========== Specialty Repository ===========

type specialtyRepoPG struct{ pool *pgxpool.Pool }

func NewSpecialtyRepoPG(pool *pgxpool.Pool) SpecialtyRepository { return &specialtyRepoPG{pool: pool} }

func (r *specialtyRepoPG) conn() queryable { return r.pool }

func (r *specialtyRepoPG) List(ctx context.Context, clinicOnly bool) ([]*Specialty, error) {
	rows, err := r.conn().Query(ctx, `
		SELECT s.id, s.name, s.description, s.icon, s.is_clinic,
			(SELECT COUNT(*) FROM doctors d WHERE d.specialty_id = s.id),
			s.created_at, s.updated_at
		FROM specialties s
		WHERE $1 = FALSE OR s.is_clinic
		ORDER BY s.name`, clinicOnly)
	return collect(rows, err, func(row pgx.Row) (*Specialty, error) {
		var s Specialty
		err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Icon, &s.IsClinic,
			&s.DoctorCount, &s.CreatedAt, &s.UpdatedAt)
		return &s, err
	})
}

// =========== Article Repository ===========

type articleRepoPG struct{ pool *pgxpool.Pool }

func NewArticleRepoPG(pool *pgxpool.Pool) ArticleRepository { return &articleRepoPG{pool: pool} }

func (r *articleRepoPG) conn() queryable { return r.pool }

const articleCols = `a.id, a.title, a.summary, a.content, a.category, a.author_id,
	COALESCE(u.name, u.username), a.image_url, a.published_at, a.created_at, a.updated_at`

const articleFrom = ` FROM articles a LEFT JOIN users u ON u.id = a.author_id`

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Summary, &a.Content, &a.Category, &a.AuthorID,
		&a.AuthorName, &a.ImageURL, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *articleRepoPG) GetByID(ctx context.Context, id int64) (*Article, error) {
	a, err := scanArticle(r.conn().QueryRow(ctx, `SELECT `+articleCols+articleFrom+` WHERE a.id = $1`, id))
	if db.IsNotFound(err) {
		return nil, ErrArticleNotFound
	}
	return a, err
}

func (r *articleRepoPG) List(ctx context.Context, category string) ([]*Article, error) {
	rows, err := r.conn().Query(ctx, `SELECT `+articleCols+articleFrom+`
		WHERE $1::text = '' OR a.category = $1::text
		ORDER BY a.published_at DESC, a.id DESC`, category)
	return collect(rows, err, scanArticle)
}

func (r *articleRepoPG) ListRelated(ctx context.Context, category string, excludeID int64, limit int) ([]*Article, error) {
	rows, err := r.conn().Query(ctx, `SELECT `+articleCols+articleFrom+`
		WHERE a.category = $1 AND a.id <> $2
		ORDER BY a.published_at DESC, a.id DESC
		LIMIT $3`, category, excludeID, limit)
	return collect(rows, err, scanArticle)
}

// =========== Surgery Repository ===========

type surgeryRepoPG struct{ pool *pgxpool.Pool }

func NewSurgeryRepoPG(pool *pgxpool.Pool) SurgeryRepository { return &surgeryRepoPG{pool: pool} }

func (r *surgeryRepoPG) List(ctx context.Context) ([]*Surgery, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, g.name, g.description, g.specialty_id, s.name, g.price_from, g.image_url,
			g.created_at, g.updated_at
		FROM surgeries g LEFT JOIN specialties s ON s.id = g.specialty_id
		ORDER BY g.name`)
	return collect(rows, err, func(row pgx.Row) (*Surgery, error) {
		var g Surgery
		err := row.Scan(&g.ID, &g.Name, &g.Description, &g.SpecialtyID, &g.SpecialtyName,
			&g.PriceFrom, &g.ImageURL, &g.CreatedAt, &g.UpdatedAt)
		return &g, err
	})
}

// =========== Testimonial Repository ===========

type testimonialRepoPG struct{ pool *pgxpool.Pool }

func NewTestimonialRepoPG(pool *pgxpool.Pool) TestimonialRepository {
	return &testimonialRepoPG{pool: pool}
}

func (r *testimonialRepoPG) List(ctx context.Context) ([]*Testimonial, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, location, content, rating, created_at, updated_at
		FROM testimonials ORDER BY created_at DESC`)
	return collect(rows, err, func(row pgx.Row) (*Testimonial, error) {
		var t Testimonial
		err := row.Scan(&t.ID, &t.Name, &t.Location, &t.Content, &t.Rating, &t.CreatedAt, &t.UpdatedAt)
		return &t, err
	})
}

// =========== Lab Test Repository ===========

type labTestRepoPG struct{ pool *pgxpool.Pool }

func NewLabTestRepoPG(pool *pgxpool.Pool) LabTestRepository { return &labTestRepoPG{pool: pool} }

func (r *labTestRepoPG) conn() queryable { return r.pool }

const labTestCols = `id, name, description, category, price, discount_price, preparation,
	turnaround_time, home_collection, created_at, updated_at`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.Price, &t.DiscountPrice,
		&t.Preparation, &t.TurnaroundTime, &t.HomeCollection, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *labTestRepoPG) Create(ctx context.Context, t *LabTest) error {
	return r.conn().QueryRow(ctx, `
		INSERT INTO lab_tests (name, description, category, price, discount_price, preparation,
			turnaround_time, home_collection)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Description, t.Category, t.Price, t.DiscountPrice, t.Preparation,
		t.TurnaroundTime, t.HomeCollection,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *labTestRepoPG) GetByID(ctx context.Context, id int64) (*LabTest, error) {
	t, err := scanLabTest(r.conn().QueryRow(ctx, `SELECT `+labTestCols+` FROM lab_tests WHERE id = $1`, id))
	if db.IsNotFound(err) {
		return nil, ErrLabTestNotFound
	}
	return t, err
}

func (r *labTestRepoPG) List(ctx context.Context) ([]*LabTest, error) {
	rows, err := r.conn().Query(ctx, `SELECT `+labTestCols+` FROM lab_tests ORDER BY name`)
	return collect(rows, err, scanLabTest)
}

func (r *labTestRepoPG) Update(ctx context.Context, t *LabTest) error {
	err := r.conn().QueryRow(ctx, `
		UPDATE lab_tests SET name = $2, description = $3, category = $4, price = $5,
			discount_price = $6, preparation = $7, turnaround_time = $8, home_collection = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		t.ID, t.Name, t.Description, t.Category, t.Price, t.DiscountPrice, t.Preparation,
		t.TurnaroundTime, t.HomeCollection,
	).Scan(&t.UpdatedAt)
	if db.IsNotFound(err) {
		return ErrLabTestNotFound
	}
	return err
}

func (r *labTestRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn().Exec(ctx, `DELETE FROM lab_tests WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrLabTestInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLabTestNotFound
	}
	return nil
}
