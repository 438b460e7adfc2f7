package doctor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

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

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn() queryable { return r.pool }

const doctorCols = `d.id, d.user_id, d.name, d.specialty_id, s.name, d.gender, d.experience,
	d.rating, d.location, d.consultation_fee, d.availability, d.languages, d.education,
	d.image_url, d.video_consult, d.created_at, d.updated_at`

const doctorFrom = ` FROM doctors d LEFT JOIN specialties s ON s.id = d.specialty_id`

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.SpecialtyID, &d.Specialty, &d.Gender,
		&d.Experience, &d.Rating, &d.Location, &d.ConsultationFee, &d.Availability,
		&d.Languages, &d.Education, &d.ImageURL, &d.VideoConsult, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	err := r.conn().QueryRow(ctx, `
		INSERT INTO doctors (user_id, name, specialty_id, gender, experience, rating, location,
			consultation_fee, availability, languages, education, image_url, video_consult)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		d.UserID, d.Name, d.SpecialtyID, d.Gender, d.Experience, d.Rating, d.Location,
		d.ConsultationFee, d.Availability, d.Languages, d.Education, d.ImageURL, d.VideoConsult,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapWriteError(err)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := r.scanDoctor(r.conn().QueryRow(ctx, `SELECT `+doctorCols+doctorFrom+` WHERE d.id = $1`, id))
	if db.IsNotFound(err) {
		return nil, ErrDoctorNotFound
	}
	return d, err
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	err := r.conn().QueryRow(ctx, `
		UPDATE doctors SET user_id = $2, name = $3, specialty_id = $4, gender = $5,
			experience = $6, rating = $7, location = $8, consultation_fee = $9,
			availability = $10, languages = $11, education = $12, image_url = $13,
			video_consult = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.UserID, d.Name, d.SpecialtyID, d.Gender, d.Experience, d.Rating, d.Location,
		d.ConsultationFee, d.Availability, d.Languages, d.Education, d.ImageURL, d.VideoConsult,
	).Scan(&d.UpdatedAt)
	if db.IsNotFound(err) {
		return ErrDoctorNotFound
	}
	return mapWriteError(err)
}

func (r *doctorRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn().Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrDoctorInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *doctorRepoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := r.conn().QueryRow(ctx, `SELECT COUNT(*)`+doctorFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + doctorCols + doctorFrom + where + ` ORDER BY d.rating DESC, d.experience DESC, d.id`
	if limit > 0 {
		idx := len(args) + 1
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
		args = append(args, limit, offset)
	}

	rows, err := r.conn().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]*Doctor, 0)
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// buildWhere turns f into a WHERE clause with positional arguments.
func buildWhere(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	idx := 1
	add := func(cond string, v interface{}) {
		conds = append(conds, fmt.Sprintf(cond, idx))
		args = append(args, v)
		idx++
	}

	if f.Specialty != "" {
		if id, err := strconv.ParseInt(f.Specialty, 10, 64); err == nil {
			add("d.specialty_id = $%d", id)
		} else {
			add("LOWER(s.name) = LOWER($%d)", f.Specialty)
		}
	}
	if f.Location != "" {
		add("d.location ILIKE $%d", "%"+escapeLike(f.Location)+"%")
	}
	if f.Availability != "" {
		add("d.availability ILIKE $%d", "%"+escapeLike(f.Availability)+"%")
	}
	if f.Gender != "" {
		add("LOWER(d.gender) = LOWER($%d)", f.Gender)
	}
	if f.Language != "" {
		add("EXISTS (SELECT 1 FROM unnest(d.languages) l WHERE LOWER(l) = LOWER($%d))", f.Language)
	}
	if f.Experience.Min != nil {
		add("d.experience::numeric >= $%d", *f.Experience.Min)
	}
	if f.Experience.Max != nil {
		add("d.experience::numeric <= $%d", *f.Experience.Max)
	}
	if f.Fee.Min != nil {
		add("d.consultation_fee >= $%d", *f.Fee.Min)
	}
	if f.Fee.Max != nil {
		add("d.consultation_fee <= $%d", *f.Fee.Max)
	}
	if f.MinRating != nil {
		add("d.rating >= $%d", *f.MinRating)
	}
	if f.VideoConsult {
		conds = append(conds, "d.video_consult")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *doctorRepoPG) Suggest(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	pattern := "%" + escapeLike(q) + "%"
	rows, err := r.conn().Query(ctx, `
		(SELECT 'doctor' AS type, id, name FROM doctors WHERE name ILIKE $1 ORDER BY name LIMIT $2)
		UNION ALL
		(SELECT 'specialty' AS type, id, name FROM specialties WHERE name ILIKE $1 ORDER BY name LIMIT $2)
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Suggestion, 0, limit)
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.Type, &s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func mapWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err, "doctors_user_id_key"):
		return ErrDoctorUserTaken
	case db.IsForeignKeyViolation(err):
		return ErrInvalidReference
	}
	return err
}
