package records

import "context"

type MedicalRecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	// ListByUser returns the user's records with doctor names, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*MedicalRecord, error)
	Delete(ctx context.Context, id int64) error
}

type LabBookingRepository interface {
	Create(ctx context.Context, b *LabBooking) error
	// GetByID returns the booking with lab test and patient details.
	GetByID(ctx context.Context, id int64) (*LabBooking, error)
	Update(ctx context.Context, b *LabBooking) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]*LabBooking, error)
	Search(ctx context.Context, f LabBookingFilter, limit, offset int) ([]*LabBooking, int, error)
}

// LabTestDirectory resolves lab test names for bookings.
type LabTestDirectory interface {
	LabTestName(ctx context.Context, id int64) (string, error)
}
