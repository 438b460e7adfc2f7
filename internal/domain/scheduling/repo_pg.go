package scheduling

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

// activeSlotConstraint is the partial unique index guarding one active
// booking per doctor, date and slot.
const activeSlotConstraint = "appointments_active_slot_key"

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn() queryable { return r.pool }

const apptCols = `a.id, a.user_id, a.doctor_id, d.name, COALESCE(u.name, u.username),
	a.appointment_date, a.slot_minutes, a.status, a.type, a.notes, a.reason, a.room_id,
	a.created_at, a.updated_at`

const apptFrom = ` FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users u ON u.id = a.user_id`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time
	var slot int
	err := row.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.DoctorName, &a.PatientName,
		&date, &slot, &a.Status, &a.Type, &a.Notes, &a.Reason, &a.RoomID,
		&a.CreatedAt, &a.UpdatedAt)
	a.AppointmentDate = civil.FromTime(date)
	a.Slot = Slot(slot)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn().QueryRow(ctx, `
		INSERT INTO appointments (user_id, doctor_id, appointment_date, slot_minutes, status,
			type, notes, reason, room_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		a.UserID, a.DoctorID, a.AppointmentDate.Time(), int(a.Slot), a.Status,
		a.Type, a.Notes, a.Reason, a.RoomID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapWriteError(err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := r.scanAppt(r.conn().QueryRow(ctx, `SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
	if db.IsNotFound(err) {
		return nil, ErrAppointmentNotFound
	}
	return a, err
}

func (r *appointmentRepoPG) GetParticipants(ctx context.Context, id int64) (*Participants, error) {
	var p Participants
	err := r.conn().QueryRow(ctx, `
		SELECT d.user_id, u.email
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1`, id).Scan(&p.DoctorUserID, &p.PatientEmail)
	if db.IsNotFound(err) {
		return nil, ErrAppointmentNotFound
	}
	return &p, err
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	err := r.conn().QueryRow(ctx, `
		UPDATE appointments SET doctor_id = $2, appointment_date = $3, slot_minutes = $4,
			status = $5, type = $6, notes = $7, reason = $8, room_id = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.DoctorID, a.AppointmentDate.Time(), int(a.Slot), a.Status, a.Type,
		a.Notes, a.Reason, a.RoomID,
	).Scan(&a.UpdatedAt)
	if db.IsNotFound(err) {
		return ErrAppointmentNotFound
	}
	return mapWriteError(err)
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn().Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *appointmentRepoPG) BookedSlots(ctx context.Context, doctorID int64, date civil.Date) ([]Slot, error) {
	rows, err := r.conn().Query(ctx, `
		SELECT slot_minutes FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2
			AND status NOT IN ('cancelled', 'rescheduled')`,
		doctorID, date.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Slot
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, Slot(s))
	}
	return out, rows.Err()
}

func (r *appointmentRepoPG) ListByUser(ctx context.Context, userID int64, apptType string) ([]*Appointment, error) {
	rows, err := r.conn().Query(ctx, `SELECT `+apptCols+apptFrom+`
		WHERE a.user_id = $1 AND ($2::text = '' OR a.type = $2::text)
		ORDER BY a.appointment_date DESC, a.slot_minutes DESC, a.id DESC`, userID, apptType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]*Appointment, 0)
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var conds []string
	var args []interface{}
	idx := 1
	add := func(cond string, v interface{}) {
		conds = append(conds, fmt.Sprintf(cond, idx))
		args = append(args, v)
		idx++
	}
	if f.Status != "" {
		add("a.status = $%d", f.Status)
	}
	if f.Type != "" {
		add("a.type = $%d", f.Type)
	}
	if f.DoctorID != 0 {
		add("a.doctor_id = $%d", f.DoctorID)
	}
	if f.UserID != 0 {
		add("a.user_id = $%d", f.UserID)
	}
	if !f.Date.IsZero() {
		add("a.appointment_date = $%d", f.Date.Time())
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.conn().QueryRow(ctx, `SELECT COUNT(*)`+apptFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY a.appointment_date DESC, a.slot_minutes DESC, a.id DESC LIMIT $%d OFFSET $%d`,
		apptCols, apptFrom, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]*Appointment, 0)
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) MarkJoined(ctx context.Context, id int64, roomID string) (string, string, error) {
	var status, room string
	err := r.conn().QueryRow(ctx, `
		UPDATE appointments SET
			status = CASE WHEN status = 'scheduled' THEN 'in-progress' ELSE status END,
			room_id = COALESCE(NULLIF(room_id, ''), $2),
			updated_at = CASE
				WHEN status = 'scheduled' OR COALESCE(room_id, '') = '' THEN NOW()
				ELSE updated_at END
		WHERE id = $1
		RETURNING status, room_id`, id, roomID).Scan(&status, &room)
	if db.IsNotFound(err) {
		return "", "", ErrAppointmentNotFound
	}
	return status, room, err
}

func mapWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err, activeSlotConstraint):
		return ErrSlotTaken
	case db.IsForeignKeyViolation(err):
		return ErrInvalidReference
	}
	return err
}

// =========== Doctor Directory ===========

type doctorDirectoryPG struct{ pool *pgxpool.Pool }

func NewDoctorDirectoryPG(pool *pgxpool.Pool) DoctorDirectory { return &doctorDirectoryPG{pool: pool} }

func (r *doctorDirectoryPG) GetDoctor(ctx context.Context, id int64) (*DoctorRef, error) {
	var d DoctorRef
	err := r.pool.QueryRow(ctx, `SELECT id, name, user_id FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.UserID)
	if db.IsNotFound(err) {
		return nil, ErrDoctorNotFound
	}
	return &d, err
}
