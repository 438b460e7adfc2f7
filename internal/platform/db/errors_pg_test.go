package db_test

import (
	"context"
	"testing"

	"github.com/mediconsult/mediconsult/internal/platform/db"
	"github.com/mediconsult/mediconsult/internal/platform/db/dbtest"
)

func TestErrorPredicates_Postgres(t *testing.T) {
	pool := dbtest.Open(t)
	ctx := context.Background()
	uid := dbtest.SeedUser(t, pool, "asha", "Asha Rao", "asha@example.com")
	doc := dbtest.SeedDoctor(t, pool, "Dr. Meera Iyer", nil)

	_, err := pool.Exec(ctx, `INSERT INTO users (username, email, password_hash) VALUES ('asha2', 'asha@example.com', 'x')`)
	if !db.IsUniqueViolation(err, "users_email_key") {
		t.Errorf("expected users_email_key violation, got %v", err)
	}
	if db.IsUniqueViolation(err, "appointments_active_slot_key") {
		t.Error("constraint name must be matched exactly")
	}
	if !db.IsUniqueViolation(err, "") {
		t.Error("empty constraint matches any unique violation")
	}

	insert := `INSERT INTO appointments (user_id, doctor_id, appointment_date, slot_minutes, status)
		VALUES ($1, $2, '2025-06-01', 540, $3)`
	if _, err := pool.Exec(ctx, insert, uid, doc, "scheduled"); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err = pool.Exec(ctx, insert, uid, doc, "pending")
	if !db.IsUniqueViolation(err, "appointments_active_slot_key") {
		t.Errorf("expected the partial slot index to reject a second active booking, got %v", err)
	}
	if _, err := pool.Exec(ctx, insert, uid, doc, "cancelled"); err != nil {
		t.Errorf("cancelled rows sit outside the slot index, got %v", err)
	}

	_, err = pool.Exec(ctx, insert, uid, int64(999999), "scheduled")
	if !db.IsForeignKeyViolation(err) || db.IsUniqueViolation(err, "") {
		t.Errorf("expected a foreign key violation, got %v", err)
	}

	_, err = pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, doc)
	if !db.IsForeignKeyViolation(err) {
		t.Errorf("expected RESTRICT on doctors with appointments, got %v", err)
	}

	err = pool.QueryRow(ctx, `SELECT id FROM users WHERE id = -1`).Scan(new(int64))
	if !db.IsNotFound(err) {
		t.Errorf("expected IsNotFound, got %v", err)
	}
}
