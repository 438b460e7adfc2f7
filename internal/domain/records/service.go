package records

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mediconsult/mediconsult/internal/platform/notification"
	"github.com/mediconsult/mediconsult/pkg/civil"
)

// Mailer delivers templated email.
type Mailer interface {
	Email(ctx context.Context, to, templateID string, data map[string]string) error
}

type Service struct {
	records  MedicalRecordRepository
	bookings LabBookingRepository
	tests    LabTestDirectory
	mailer   Mailer
}

// NewService builds the records service. mailer may be nil.
func NewService(records MedicalRecordRepository, bookings LabBookingRepository, tests LabTestDirectory, mailer Mailer) *Service {
	return &Service{records: records, bookings: bookings, tests: tests, mailer: mailer}
}

// -- Medical records --

func (s *Service) ListRecords(ctx context.Context, userID int64) ([]*MedicalRecord, error) {
	return s.records.ListByUser(ctx, userID)
}

func (s *Service) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*MedicalRecord, error) {
	date, err := parseDate("recordDate", req.Date)
	if err != nil {
		return nil, err
	}
	m := &MedicalRecord{
		UserID:      req.UserID,
		DoctorID:    req.DoctorID,
		Title:       strings.TrimSpace(req.Title),
		RecordType:  strings.TrimSpace(req.RecordType),
		Description: trimmed(req.Description),
		FileURL:     trimmed(req.FileURL),
		RecordDate:  date,
	}
	if err := s.records.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id int64) error {
	return s.records.Delete(ctx, id)
}

// -- Lab bookings --

// BookLabTest records a pending home-collection request and emails the
// patient an acknowledgement.
func (s *Service) BookLabTest(ctx context.Context, userID int64, req *CreateLabBookingRequest) (*LabBooking, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.tests.LabTestName(ctx, req.LabTestID); err != nil {
		return nil, err
	}
	b := &LabBooking{
		UserID:         userID,
		LabTestID:      req.LabTestID,
		CollectionDate: date,
		Address:        trimmed(req.Address),
		Status:         LabStatusPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, ErrInvalidReference) {
			return nil, ErrLabTestNotFound
		}
		return nil, err
	}
	full, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return b, nil
	}
	s.sendReceipt(ctx, full)
	return full, nil
}

func (s *Service) sendReceipt(ctx context.Context, b *LabBooking) {
	if s.mailer == nil || b.PatientEmail == "" {
		return
	}
	err := s.mailer.Email(ctx, b.PatientEmail, notification.TemplateLabBookingReceived, map[string]string{
		"patient": b.PatientName,
		"test":    b.LabTestName,
		"date":    b.CollectionDate.String(),
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("lab_booking_id", b.ID).Msg("send lab booking receipt")
	}
}

func (s *Service) ListLabBookings(ctx context.Context, userID int64) ([]*LabBooking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *Service) SearchLabBookings(ctx context.Context, f LabBookingFilter, limit, offset int) ([]*LabBooking, int, error) {
	return s.bookings.Search(ctx, f, limit, offset)
}

func (s *Service) GetLabBooking(ctx context.Context, id int64) (*LabBooking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) UpdateLabBooking(ctx context.Context, id int64, req *UpdateLabBookingRequest) (*LabBooking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		if !validLabStatuses[*req.Status] {
			return nil, &ValidationError{Field: "status", Message: "invalid status: " + *req.Status}
		}
		b.Status = *req.Status
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			return nil, err
		}
		b.CollectionDate = date
	}
	if req.Address != nil {
		b.Address = trimmed(req.Address)
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) DeleteLabBooking(ctx context.Context, id int64) error {
	return s.bookings.Delete(ctx, id)
}

func parseDate(field, raw string) (civil.Date, error) {
	date, err := civil.Parse(strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, &ValidationError{Field: field, Message: field + " must be in YYYY-MM-DD format"}
	}
	return date, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
