package scheduling

import (
	"errors"
	"time"

	"github.com/mediconsult/mediconsult/pkg/civil"
)

// Appointment statuses.
const (
	StatusPending     = "pending"
	StatusScheduled   = "scheduled"
	StatusInProgress  = "in-progress"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// Appointment types.
const (
	TypeInPerson = "in-person"
	TypeVideo    = "video"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusScheduled: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true, StatusRescheduled: true,
}

var validTypes = map[string]bool{TypeInPerson: true, TypeVideo: true}

// releasesSlot reports whether an appointment in status no longer holds its
// slot.
func releasesSlot(status string) bool {
	return status == StatusCancelled || status == StatusRescheduled
}

var (
	ErrAppointmentNotFound = errors.New("Appointment not found")
	ErrDoctorNotFound      = errors.New("Doctor not found")
	ErrSlotTaken           = errors.New("This time slot is already booked")
	ErrNotParticipant      = errors.New("You are not a participant in this appointment")
	ErrAppointmentClosed   = errors.New("This appointment is no longer active")
	ErrInvalidReference    = errors.New("Referenced user or doctor does not exist")
)

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Appointment struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	DoctorID        int64      `json:"doctorId"`
	DoctorName      string     `json:"doctorName,omitempty"`
	PatientName     string     `json:"patientName,omitempty"`
	AppointmentDate civil.Date `json:"appointmentDate"`
	Slot            Slot       `json:"timeSlot"`
	Status          string     `json:"status"`
	Type            string     `json:"type"`
	Notes           *string    `json:"notes"`
	Reason          *string    `json:"reason"`
	RoomID          *string    `json:"roomId"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Participants carries what join and confirmation need beyond the
// appointment row.
type Participants struct {
	DoctorUserID *int64
	PatientEmail string
}

// DoctorRef is the slice of a doctor profile scheduling depends on.
type DoctorRef struct {
	ID     int64
	Name   string
	UserID *int64
}

// Filter narrows the admin appointment listing.
type Filter struct {
	Status   string
	Type     string
	DoctorID int64
	UserID   int64
	Date     civil.Date
}

type BookVideoRequest struct {
	DoctorID     int64   `json:"doctorId" validate:"required,gt=0"`
	Slot         string  `json:"slot" validate:"required"`
	Date         string  `json:"date" validate:"required"`
	PatientNotes *string `json:"patientNotes" validate:"omitempty,max=2000"`
}

type BookInPersonRequest struct {
	DoctorID int64   `json:"doctorId" validate:"required,gt=0"`
	Slot     string  `json:"slot" validate:"required"`
	Date     string  `json:"date" validate:"required"`
	Reason   *string `json:"reason" validate:"omitempty,max=2000"`
}

type JoinRequest struct {
	AppointmentID int64 `json:"appointmentId" validate:"required,gt=0"`
}

// JoinResult is what the video client needs to enter the room.
type JoinResult struct {
	RoomID          string     `json:"roomId"`
	Token           string     `json:"token"`
	DoctorName      string     `json:"doctorName"`
	PatientName     string     `json:"patientName"`
	TimeSlot        Slot       `json:"timeSlot"`
	AppointmentDate civil.Date `json:"appointmentDate"`
	Status          string     `json:"status"`
}

type AdminCreateRequest struct {
	UserID   int64   `json:"userId" validate:"required,gt=0"`
	DoctorID int64   `json:"doctorId" validate:"required,gt=0"`
	Date     string  `json:"date" validate:"required"`
	Slot     string  `json:"slot" validate:"required"`
	Status   string  `json:"status" validate:"omitempty,oneof=pending scheduled in-progress completed cancelled rescheduled"`
	Type     string  `json:"type" validate:"omitempty,oneof=in-person video"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
	Reason   *string `json:"reason" validate:"omitempty,max=2000"`
}

// AdminUpdateRequest is a partial update; nil fields are left unchanged.
type AdminUpdateRequest struct {
	DoctorID *int64  `json:"doctorId" validate:"omitempty,gt=0"`
	Date     *string `json:"date"`
	Slot     *string `json:"slot"`
	Status   *string `json:"status" validate:"omitempty,oneof=pending scheduled in-progress completed cancelled rescheduled"`
	Type     *string `json:"type" validate:"omitempty,oneof=in-person video"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
	Reason   *string `json:"reason" validate:"omitempty,max=2000"`
}
