package payment

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const phonePePayPath = "/pg/v1/pay"

// PhonePe initiates Pay Page transactions on the PhonePe PG API.
type PhonePe struct {
	httpClient
	merchantID  string
	saltKey     string
	saltIndex   string
	redirectURL string
}

func NewPhonePe(merchantID, saltKey, saltIndex, baseURL, redirectURL string, opts ...Option) *PhonePe {
	return &PhonePe{
		httpClient:  newHTTPClient("phonepe", strings.TrimRight(baseURL, "/"), opts),
		merchantID:  merchantID,
		saltKey:     saltKey,
		saltIndex:   saltIndex,
		redirectURL: redirectURL,
	}
}

// PhonePeInitiation is one pay request.
type PhonePeInitiation struct {
	TransactionID string
	UserID        string
	AmountPaise   int64
	MobileNumber  string
}

type phonePePayload struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	MobileNumber          string            `json:"mobileNumber,omitempty"`
	PaymentInstrument     map[string]string `json:"paymentInstrument"`
}

// encode returns the base64 request body and its X-VERIFY checksum:
// sha256(base64 + path + saltKey) in hex, then "###" and the salt index.
func (p *PhonePe) encode(in PhonePeInitiation) (payload, checksum string, err error) {
	raw, err := json.Marshal(phonePePayload{
		MerchantID:            p.merchantID,
		MerchantTransactionID: in.TransactionID,
		MerchantUserID:        in.UserID,
		Amount:                in.AmountPaise,
		RedirectURL:           p.redirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           p.redirectURL,
		MobileNumber:          in.MobileNumber,
		PaymentInstrument:     map[string]string{"type": "PAY_PAGE"},
	})
	if err != nil {
		return "", "", fmt.Errorf("phonepe encode payload: %w", err)
	}
	payload = base64.StdEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(payload + phonePePayPath + p.saltKey))
	return payload, hex.EncodeToString(sum[:]) + "###" + p.saltIndex, nil
}

// Initiate registers the transaction and returns the PhonePe page URL to
// send the customer to.
func (p *PhonePe) Initiate(ctx context.Context, in PhonePeInitiation) (string, error) {
	payload, checksum, err := p.encode(in)
	if err != nil {
		return "", err
	}
	req, err := p.newJSONRequest(ctx, http.MethodPost, phonePePayPath, map[string]string{"request": payload})
	if err != nil {
		return "", err
	}
	req.Header.Set("X-VERIFY", checksum)

	var out struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Data    struct {
			InstrumentResponse struct {
				RedirectInfo struct {
					URL string `json:"url"`
				} `json:"redirectInfo"`
			} `json:"instrumentResponse"`
		} `json:"data"`
	}
	if err := p.do(req, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", fmt.Errorf("phonepe: %s: %s", out.Code, out.Message)
	}
	redirect := out.Data.InstrumentResponse.RedirectInfo.URL
	if redirect == "" {
		return "", errors.New("phonepe: response has no redirect url")
	}
	return redirect, nil
}
