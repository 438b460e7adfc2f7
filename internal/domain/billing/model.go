package billing

import (
	"errors"
	"time"
)

// Payment providers a method can route to.
const (
	ProviderPayPal   = "paypal"
	ProviderPhonePe  = "phonepe"
	ProviderRazorpay = "razorpay"
	ProviderCash     = "cash"
)

var ErrPaymentMethodNotFound = errors.New("Payment method not found")

type PaymentMethod struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Provider     string    `json:"provider"`
	Enabled      bool      `json:"enabled"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreatePaymentMethodRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Provider     string `json:"provider" validate:"required,oneof=paypal phonepe razorpay cash"`
	Enabled      *bool  `json:"enabled"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
}

// UpdatePaymentMethodRequest is a partial update; nil fields are left unchanged.
type UpdatePaymentMethodRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Provider     *string `json:"provider" validate:"omitempty,oneof=paypal phonepe razorpay cash"`
	Enabled      *bool   `json:"enabled"`
	DisplayOrder *int    `json:"displayOrder" validate:"omitempty,gte=0"`
}
