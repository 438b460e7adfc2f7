package doctor

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrDoctorNotFound   = errors.New("Doctor not found")
	ErrDoctorInUse      = errors.New("Doctor has appointments and cannot be deleted")
	ErrDoctorUserTaken  = errors.New("User is already linked to another doctor")
	ErrInvalidReference = errors.New("Referenced specialty or user does not exist")
)

type Doctor struct {
	ID              int64           `json:"id"`
	UserID          *int64          `json:"userId"`
	Name            string          `json:"name"`
	SpecialtyID     *int64          `json:"specialtyId"`
	Specialty       *string         `json:"specialty"`
	Gender          *string         `json:"gender"`
	Experience      int             `json:"experience"`
	Rating          float64         `json:"rating"`
	Location        *string         `json:"location"`
	ConsultationFee float64         `json:"consultationFee"`
	Availability    *string         `json:"availability"`
	Languages       []string        `json:"languages"`
	Education       json.RawMessage `json:"education"`
	ImageURL        *string         `json:"imageUrl"`
	VideoConsult    bool            `json:"videoConsult"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Filter narrows a doctor listing. Zero values mean "no constraint".
type Filter struct {
	Specialty    string
	Location     string
	Availability string
	Gender       string
	Language     string
	Experience   Range
	Fee          Range
	MinRating    *float64
	VideoConsult bool
}

// Suggestion is one search-box completion.
type Suggestion struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

const (
	SuggestionDoctor    = "doctor"
	SuggestionSpecialty = "specialty"
)

type CreateDoctorRequest struct {
	UserID          *int64          `json:"userId" validate:"omitempty,gt=0"`
	Name            string          `json:"name" validate:"required,max=255"`
	SpecialtyID     *int64          `json:"specialtyId" validate:"omitempty,gt=0"`
	Gender          *string         `json:"gender" validate:"omitempty,oneof=male female other"`
	Experience      int             `json:"experience" validate:"gte=0,lte=80"`
	Rating          float64         `json:"rating" validate:"gte=0,lte=5"`
	Location        *string         `json:"location" validate:"omitempty,max=255"`
	ConsultationFee float64         `json:"consultationFee" validate:"gte=0"`
	Availability    *string         `json:"availability" validate:"omitempty,max=100"`
	Languages       []string        `json:"languages"`
	Education       json.RawMessage `json:"education"`
	ImageURL        *string         `json:"imageUrl" validate:"omitempty,max=500"`
	VideoConsult    bool            `json:"videoConsult"`
}

// UpdateDoctorRequest is a partial update; nil fields are left unchanged.
type UpdateDoctorRequest struct {
	UserID          *int64          `json:"userId" validate:"omitempty,gt=0"`
	Name            *string         `json:"name" validate:"omitempty,min=1,max=255"`
	SpecialtyID     *int64          `json:"specialtyId" validate:"omitempty,gt=0"`
	Gender          *string         `json:"gender" validate:"omitempty,oneof=male female other"`
	Experience      *int            `json:"experience" validate:"omitempty,gte=0,lte=80"`
	Rating          *float64        `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Location        *string         `json:"location" validate:"omitempty,max=255"`
	ConsultationFee *float64        `json:"consultationFee" validate:"omitempty,gte=0"`
	Availability    *string         `json:"availability" validate:"omitempty,max=100"`
	Languages       []string        `json:"languages"`
	Education       json.RawMessage `json:"education"`
	ImageURL        *string         `json:"imageUrl" validate:"omitempty,max=500"`
	VideoConsult    *bool           `json:"videoConsult"`
}
