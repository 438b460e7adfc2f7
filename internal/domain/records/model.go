package records

import (
	"errors"
	"time"

	"github.com/mediconsult/mediconsult/pkg/civil"
)

// Lab booking statuses.
const (
	LabStatusPending   = "pending"
	LabStatusConfirmed = "confirmed"
	LabStatusCollected = "collected"
	LabStatusCompleted = "completed"
	LabStatusCancelled = "cancelled"
)

var validLabStatuses = map[string]bool{
	LabStatusPending: true, LabStatusConfirmed: true, LabStatusCollected: true,
	LabStatusCompleted: true, LabStatusCancelled: true,
}

var (
	ErrRecordNotFound     = errors.New("Medical record not found")
	ErrLabBookingNotFound = errors.New("Lab booking not found")
	ErrLabTestNotFound    = errors.New("Lab test not found")
	ErrInvalidReference   = errors.New("Referenced user, doctor or lab test does not exist")
)

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type MedicalRecord struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	DoctorID    *int64     `json:"doctorId"`
	DoctorName  *string    `json:"doctorName"`
	Title       string     `json:"title"`
	RecordType  string     `json:"recordType"`
	Description *string    `json:"description"`
	FileURL     *string    `json:"fileUrl"`
	RecordDate  civil.Date `json:"recordDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type LabBooking struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	PatientName    string     `json:"patientName,omitempty"`
	PatientEmail   string     `json:"-"`
	LabTestID      int64      `json:"labTestId"`
	LabTestName    string     `json:"labTestName"`
	CollectionDate civil.Date `json:"date"`
	Address        *string    `json:"address"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// LabBookingFilter narrows the admin lab booking listing.
type LabBookingFilter struct {
	Status string
	UserID int64
}

type CreateLabBookingRequest struct {
	LabTestID int64   `json:"labTestId" validate:"required,gt=0"`
	Date      string  `json:"date" validate:"required"`
	Address   *string `json:"address" validate:"omitempty,max=500"`
}

// UpdateLabBookingRequest is a partial update; nil fields are left unchanged.
type UpdateLabBookingRequest struct {
	Status  *string `json:"status" validate:"omitempty,oneof=pending confirmed collected completed cancelled"`
	Date    *string `json:"date"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type CreateRecordRequest struct {
	UserID      int64   `json:"userId" validate:"required,gt=0"`
	DoctorID    *int64  `json:"doctorId" validate:"omitempty,gt=0"`
	Title       string  `json:"title" validate:"required,max=255"`
	RecordType  string  `json:"recordType" validate:"required,max=50"`
	Description *string `json:"description"`
	FileURL     *string `json:"fileUrl" validate:"omitempty,url,max=500"`
	Date        string  `json:"recordDate" validate:"required"`
}
