package records

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mediconsult/mediconsult/internal/platform/notification"
	"github.com/mediconsult/mediconsult/pkg/civil"
)

// -- Mock Repositories --

type mockStore struct {
	mu       sync.Mutex
	records  map[int64]*MedicalRecord
	bookings map[int64]*LabBooking
	tests    map[int64]string
	users    map[int64][2]string
	doctors  map[int64]string
	nextID   int64
}

func newMockStore() *mockStore {
	return &mockStore{
		records:  make(map[int64]*MedicalRecord),
		bookings: make(map[int64]*LabBooking),
		tests:    map[int64]string{3: "Complete Blood Count", 4: "Lipid Profile"},
		users:    map[int64][2]string{42: {"Asha Rao", "asha@example.com"}, 43: {"Ravi Kumar", "ravi@example.com"}},
		doctors:  map[int64]string{7: "Dr. Meera Iyer"},
	}
}

type mockRecordRepo struct{ *mockStore }

func (m mockRecordRepo) Create(_ context.Context, r *MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[r.UserID]; !ok {
		return ErrInvalidReference
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m mockRecordRepo) ListByUser(_ context.Context, userID int64) ([]*MedicalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MedicalRecord, 0)
	for _, r := range m.records {
		if r.UserID != userID {
			continue
		}
		cp := *r
		if r.DoctorID != nil {
			if name, ok := m.doctors[*r.DoctorID]; ok {
				cp.DoctorName = &name
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].RecordDate.Before(out[i].RecordDate) })
	return out, nil
}

func (m mockRecordRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

type mockBookingRepo struct{ *mockStore }

func (m mockBookingRepo) fill(b *LabBooking) {
	b.LabTestName = m.tests[b.LabTestID]
	b.PatientName = m.users[b.UserID][0]
	b.PatientEmail = m.users[b.UserID][1]
}

func (m mockBookingRepo) Create(_ context.Context, b *LabBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[b.LabTestID]; !ok {
		return ErrInvalidReference
	}
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m mockBookingRepo) GetByID(_ context.Context, id int64) (*LabBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrLabBookingNotFound
	}
	cp := *b
	m.fill(&cp)
	return &cp, nil
}

func (m mockBookingRepo) Update(_ context.Context, b *LabBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		return ErrLabBookingNotFound
	}
	b.UpdatedAt = time.Now()
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m mockBookingRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return ErrLabBookingNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m mockBookingRepo) list(keep func(*LabBooking) bool) []*LabBooking {
	out := make([]*LabBooking, 0)
	for _, b := range m.bookings {
		if keep(b) {
			cp := *b
			m.fill(&cp)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m mockBookingRepo) ListByUser(_ context.Context, userID int64) ([]*LabBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(b *LabBooking) bool { return b.UserID == userID }), nil
}

func (m mockBookingRepo) Search(_ context.Context, f LabBookingFilter, limit, offset int) ([]*LabBooking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.list(func(b *LabBooking) bool {
		return (f.Status == "" || b.Status == f.Status) && (f.UserID == 0 || b.UserID == f.UserID)
	})
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockStore) LabTestName(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.tests[id]
	if !ok {
		return "", ErrLabTestNotFound
	}
	return name, nil
}

func newTestService() (*Service, *mockStore, *notification.Outbox) {
	store := newMockStore()
	email := &notification.Outbox{}
	notifier := notification.NewNotifier(email, &notification.Outbox{},
		notification.NewTemplateEngine(), "https://example.test/app")
	svc := NewService(mockRecordRepo{store}, mockBookingRepo{store}, store, notifier)
	return svc, store, email
}

func strPtr(s string) *string { return &s }

func i64(v int64) *int64 { return &v }

// -- Medical records --

func TestListRecords_OwnOnlyNewestFirst(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	for _, req := range []CreateRecordRequest{
		{UserID: 42, DoctorID: i64(7), Title: "Blood panel", RecordType: "lab", Date: "2025-03-01"},
		{UserID: 42, Title: "X-ray", RecordType: "imaging", Date: "2025-05-10"},
		{UserID: 43, Title: "Prescription", RecordType: "prescription", Date: "2025-04-01"},
	} {
		if _, err := svc.CreateRecord(ctx, &req); err != nil {
			t.Fatalf("CreateRecord: %v", err)
		}
	}

	items, err := svc.ListRecords(ctx, 42)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 records, got %d", len(items))
	}
	if items[0].Title != "X-ray" || items[0].DoctorName != nil {
		t.Errorf("unexpected first record %+v", items[0])
	}
	if items[1].DoctorName == nil || *items[1].DoctorName != "Dr. Meera Iyer" {
		t.Errorf("expected doctor name on second record, got %v", items[1].DoctorName)
	}
}

func TestCreateRecord_BadDate(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.CreateRecord(context.Background(), &CreateRecordRequest{UserID: 42, Title: "t", RecordType: "lab", Date: "yesterday"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "recordDate" {
		t.Errorf("expected recordDate ValidationError, got %v", err)
	}
}

// -- Lab bookings --

func TestBookLabTest(t *testing.T) {
	svc, store, email := newTestService()
	b, err := svc.BookLabTest(context.Background(), 42, &CreateLabBookingRequest{
		LabTestID: 3, Date: "2025-06-04", Address: strPtr("  12 MG Road  "),
	})
	if err != nil {
		t.Fatalf("BookLabTest: %v", err)
	}
	if b.Status != LabStatusPending || b.LabTestName != "Complete Blood Count" {
		t.Errorf("unexpected booking %+v", b)
	}
	if b.Address == nil || *b.Address != "12 MG Road" {
		t.Errorf("expected trimmed address, got %v", b.Address)
	}
	if len(store.bookings) != 1 {
		t.Errorf("expected 1 stored booking, got %d", len(store.bookings))
	}

	calls := email.Sent()
	if len(calls) != 1 || calls[0].To != "asha@example.com" {
		t.Fatalf("expected receipt to asha@example.com, got %+v", calls)
	}
	if !strings.Contains(calls[0].Subject, "Complete Blood Count") {
		t.Errorf("unexpected subject %q", calls[0].Subject)
	}
}

func TestBookLabTest_MissingTest(t *testing.T) {
	svc, store, _ := newTestService()
	_, err := svc.BookLabTest(context.Background(), 42, &CreateLabBookingRequest{LabTestID: 99, Date: "2025-06-04"})
	if !errors.Is(err, ErrLabTestNotFound) {
		t.Errorf("expected ErrLabTestNotFound, got %v", err)
	}
	if len(store.bookings) != 0 {
		t.Error("no booking should be stored")
	}
}

func TestBookLabTest_EmailFailureIgnored(t *testing.T) {
	svc, _, email := newTestService()
	email.Err = errors.New("smtp down")
	if _, err := svc.BookLabTest(context.Background(), 42, &CreateLabBookingRequest{LabTestID: 3, Date: "2025-06-04"}); err != nil {
		t.Errorf("expected booking to succeed, got %v", err)
	}
}

func TestUpdateLabBooking(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	b, _ := svc.BookLabTest(ctx, 42, &CreateLabBookingRequest{LabTestID: 3, Date: "2025-06-04", Address: strPtr("Home")})

	status := LabStatusConfirmed
	updated, err := svc.UpdateLabBooking(ctx, b.ID, &UpdateLabBookingRequest{Status: &status})
	if err != nil {
		t.Fatalf("UpdateLabBooking: %v", err)
	}
	if updated.Status != LabStatusConfirmed {
		t.Errorf("expected confirmed, got %s", updated.Status)
	}
	if updated.Address == nil || *updated.Address != "Home" || updated.CollectionDate != (civil.Date{Year: 2025, Month: 6, Day: 4}) {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	bad := "lost"
	_, err = svc.UpdateLabBooking(ctx, b.ID, &UpdateLabBookingRequest{Status: &bad})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}

	if _, err := svc.UpdateLabBooking(ctx, 999, &UpdateLabBookingRequest{Status: &status}); !errors.Is(err, ErrLabBookingNotFound) {
		t.Errorf("expected ErrLabBookingNotFound, got %v", err)
	}
}
