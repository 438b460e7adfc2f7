package payment

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

// orderCreator is the part of the razorpay SDK used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay creates orders for the Razorpay checkout widget.
type Razorpay struct {
	keyID  string
	orders orderCreator
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	client := razorpay.NewClient(keyID, keySecret)
	return &Razorpay{keyID: keyID, orders: client.Order}
}

// RazorpayOrder is what the checkout widget needs to open.
type RazorpayOrder struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"keyId"`
}

// CreateOrder creates an order for amountPaise in currency. The SDK does not
// take a context, so ctx is only checked before the call.
func (r *Razorpay) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*RazorpayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := r.orders.Create(map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay create order: response has no id")
	}
	return &RazorpayOrder{
		OrderID:  id,
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
		KeyID:    r.keyID,
	}, nil
}
