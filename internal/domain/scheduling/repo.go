package scheduling

import (
	"context"

	"github.com/mediconsult/mediconsult/pkg/civil"
)

type AppointmentRepository interface {
	// Create inserts a and fills its id and timestamps. A second active
	// booking for the same doctor, date and slot fails with ErrSlotTaken.
	Create(ctx context.Context, a *Appointment) error
	// GetByID returns the appointment with doctor and patient names.
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	GetParticipants(ctx context.Context, id int64) (*Participants, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	// BookedSlots returns the slots held by active appointments of the
	// doctor on date.
	BookedSlots(ctx context.Context, doctorID int64, date civil.Date) ([]Slot, error)
	// ListByUser returns the user's appointments, newest first. An empty
	// apptType returns every type.
	ListByUser(ctx context.Context, userID int64, apptType string) ([]*Appointment, error)
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
	// MarkJoined moves a scheduled appointment to in-progress and stores
	// roomID when the row has none. Other statuses are left untouched. It
	// returns the resulting status and room id.
	MarkJoined(ctx context.Context, id int64, roomID string) (status, room string, err error)
}

type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id int64) (*DoctorRef, error)
}
