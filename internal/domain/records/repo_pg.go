package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediconsult/mediconsult/internal/platform/db"
	"github.com/mediconsult/mediconsult/pkg/civil"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Medical Record Repository ===========

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewMedicalRecordRepoPG(pool *pgxpool.Pool) MedicalRecordRepository {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn() queryable { return r.pool }

func (r *recordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	err := r.conn().QueryRow(ctx, `
		INSERT INTO medical_records (user_id, doctor_id, title, record_type, description, file_url, record_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		m.UserID, m.DoctorID, m.Title, m.RecordType, m.Description, m.FileURL, m.RecordDate.Time(),
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if db.IsForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	return err
}

func (r *recordRepoPG) ListByUser(ctx context.Context, userID int64) ([]*MedicalRecord, error) {
	rows, err := r.conn().Query(ctx, `
		SELECT m.id, m.user_id, m.doctor_id, d.name, m.title, m.record_type, m.description,
			m.file_url, m.record_date, m.created_at, m.updated_at
		FROM medical_records m
		LEFT JOIN doctors d ON d.id = m.doctor_id
		WHERE m.user_id = $1
		ORDER BY m.record_date DESC, m.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*MedicalRecord, 0)
	for rows.Next() {
		var m MedicalRecord
		var date time.Time
		if err := rows.Scan(&m.ID, &m.UserID, &m.DoctorID, &m.DoctorName, &m.Title, &m.RecordType,
			&m.Description, &m.FileURL, &date, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.RecordDate = civil.FromTime(date)
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (r *recordRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn().Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// =========== Lab Booking Repository ===========

type labBookingRepoPG struct{ pool *pgxpool.Pool }

func NewLabBookingRepoPG(pool *pgxpool.Pool) LabBookingRepository {
	return &labBookingRepoPG{pool: pool}
}

func (r *labBookingRepoPG) conn() queryable { return r.pool }

const bookingCols = `b.id, b.user_id, COALESCE(u.name, u.username), u.email, b.lab_test_id, t.name,
	b.collection_date, b.address, b.status, b.created_at, b.updated_at`

const bookingFrom = ` FROM lab_bookings b
	JOIN lab_tests t ON t.id = b.lab_test_id
	JOIN users u ON u.id = b.user_id`

func scanBooking(row pgx.Row) (*LabBooking, error) {
	var b LabBooking
	var date time.Time
	err := row.Scan(&b.ID, &b.UserID, &b.PatientName, &b.PatientEmail, &b.LabTestID, &b.LabTestName,
		&date, &b.Address, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	b.CollectionDate = civil.FromTime(date)
	return &b, err
}

func (r *labBookingRepoPG) Create(ctx context.Context, b *LabBooking) error {
	err := r.conn().QueryRow(ctx, `
		INSERT INTO lab_bookings (user_id, lab_test_id, collection_date, address, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		b.UserID, b.LabTestID, b.CollectionDate.Time(), b.Address, b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if db.IsForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	return err
}

func (r *labBookingRepoPG) GetByID(ctx context.Context, id int64) (*LabBooking, error) {
	b, err := scanBooking(r.conn().QueryRow(ctx, `SELECT `+bookingCols+bookingFrom+` WHERE b.id = $1`, id))
	if db.IsNotFound(err) {
		return nil, ErrLabBookingNotFound
	}
	return b, err
}

func (r *labBookingRepoPG) Update(ctx context.Context, b *LabBooking) error {
	err := r.conn().QueryRow(ctx, `
		UPDATE lab_bookings SET collection_date = $2, address = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		b.ID, b.CollectionDate.Time(), b.Address, b.Status,
	).Scan(&b.UpdatedAt)
	if db.IsNotFound(err) {
		return ErrLabBookingNotFound
	}
	return err
}

func (r *labBookingRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn().Exec(ctx, `DELETE FROM lab_bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLabBookingNotFound
	}
	return nil
}

func (r *labBookingRepoPG) ListByUser(ctx context.Context, userID int64) ([]*LabBooking, error) {
	rows, err := r.conn().Query(ctx, `SELECT `+bookingCols+bookingFrom+`
		WHERE b.user_id = $1
		ORDER BY b.collection_date DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *labBookingRepoPG) Search(ctx context.Context, f LabBookingFilter, limit, offset int) ([]*LabBooking, int, error) {
	var conds []string
	var args []interface{}
	idx := 1
	add := func(cond string, arg interface{}) {
		conds = append(conds, fmt.Sprintf(cond, idx))
		args = append(args, arg)
		idx++
	}
	if f.Status != "" {
		add("b.status = $%d", f.Status)
	}
	if f.UserID != 0 {
		add("b.user_id = $%d", f.UserID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.conn().QueryRow(ctx, `SELECT COUNT(*)`+bookingFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY b.created_at DESC, b.id DESC LIMIT $%d OFFSET $%d`,
		bookingCols, bookingFrom, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectBookings(rows)
	return items, total, err
}

func collectBookings(rows pgx.Rows) ([]*LabBooking, error) {
	defer rows.Close()
	items := make([]*LabBooking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// =========== Lab Test Directory ===========

type labTestDirectoryPG struct{ pool *pgxpool.Pool }

func NewLabTestDirectoryPG(pool *pgxpool.Pool) LabTestDirectory {
	return &labTestDirectoryPG{pool: pool}
}

func (r *labTestDirectoryPG) LabTestName(ctx context.Context, id int64) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM lab_tests WHERE id = $1`, id).Scan(&name)
	if db.IsNotFound(err) {
		return "", ErrLabTestNotFound
	}
	return name, err
}
