package catalog

import (
	"errors"
	"time"
)

var (
	ErrArticleNotFound = errors.New("Article not found")
	ErrLabTestNotFound = errors.New("Lab test not found")
	ErrLabTestInUse    = errors.New("Lab test has bookings and cannot be deleted")
)

type Specialty struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Icon        *string   `json:"icon"`
	IsClinic    bool      `json:"isClinic"`
	DoctorCount int       `json:"doctorCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Summary     *string   `json:"summary"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	AuthorID    *int64    `json:"authorId"`
	AuthorName  *string   `json:"authorName"`
	ImageURL    *string   `json:"imageUrl"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Surgery struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	SpecialtyID   *int64    `json:"specialtyId"`
	SpecialtyName *string   `json:"specialtyName"`
	PriceFrom     *float64  `json:"priceFrom"`
	ImageURL      *string   `json:"imageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Testimonial struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  *string   `json:"location"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LabTest struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	Category       *string   `json:"category"`
	Price          float64   `json:"price"`
	DiscountPrice  *float64  `json:"discountPrice"`
	Preparation    *string   `json:"preparation"`
	TurnaroundTime *string   `json:"turnaroundTime"`
	HomeCollection bool      `json:"homeCollection"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateLabTestRequest struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Description    *string  `json:"description"`
	Category       *string  `json:"category" validate:"omitempty,max=100"`
	Price          float64  `json:"price" validate:"gte=0"`
	DiscountPrice  *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	Preparation    *string  `json:"preparation"`
	TurnaroundTime *string  `json:"turnaroundTime" validate:"omitempty,max=100"`
	HomeCollection bool     `json:"homeCollection"`
}

// UpdateLabTestRequest is a partial update; nil fields are left unchanged.
type UpdateLabTestRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description    *string  `json:"description"`
	Category       *string  `json:"category" validate:"omitempty,max=100"`
	Price          *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice  *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	Preparation    *string  `json:"preparation"`
	TurnaroundTime *string  `json:"turnaroundTime" validate:"omitempty,max=100"`
	HomeCollection *bool    `json:"homeCollection"`
}
