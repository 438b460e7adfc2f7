package payment

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mediconsult/mediconsult/internal/platform/auth"
	"github.com/mediconsult/mediconsult/internal/platform/validation"
)

// Handler exposes the checkout endpoints. A nil provider answers 503.
type Handler struct {
	paypal   *PayPal
	phonepe  *PhonePe
	razorpay *Razorpay
}

func NewHandler(pp *PayPal, pe *PhonePe, rz *Razorpay) *Handler {
	return &Handler{paypal: pp, phonepe: pe, razorpay: rz}
}

// RegisterRoutes mounts PayPal at the root (/paypal/...) and the other
// providers under api.
func (h *Handler) RegisterRoutes(root *echo.Echo, api *echo.Group) {
	pp := root.Group("/paypal")
	pp.GET("/setup", h.PayPalSetup)
	pp.POST("/setup", h.PayPalSetup)
	pp.POST("/order", h.PayPalCreateOrder)
	pp.POST("/order/:orderID/capture", h.PayPalCaptureOrder)

	api.POST("/phonepe/initiate", h.PhonePeInitiate)
	api.POST("/razorpay/order", h.RazorpayCreateOrder)
}

func (h *Handler) PayPalSetup(c echo.Context) error {
	if h.paypal == nil {
		return providerError(c, ErrNotConfigured)
	}
	tok, err := h.paypal.ClientToken(c.Request().Context())
	if err != nil {
		return providerError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"clientToken": tok})
}

type payPalOrderRequest struct {
	Amount   string `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"required,len=3"`
	Intent   string `json:"intent" validate:"required"`
}

func (h *Handler) PayPalCreateOrder(c echo.Context) error {
	var req payPalOrderRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(req.Amount, 64)
	if err != nil || amount <= 0 || math.IsInf(amount, 0) {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be a positive decimal")
	}
	intent := strings.ToUpper(req.Intent)
	if intent != "CAPTURE" && intent != "AUTHORIZE" {
		return echo.NewHTTPError(http.StatusBadRequest, "intent must be CAPTURE or AUTHORIZE")
	}
	if h.paypal == nil {
		return providerError(c, ErrNotConfigured)
	}

	order, err := h.paypal.CreateOrder(c.Request().Context(),
		strconv.FormatFloat(amount, 'f', 2, 64), strings.ToUpper(req.Currency), intent)
	if err != nil {
		return providerError(c, err)
	}
	return c.JSONBlob(http.StatusOK, order)
}

func (h *Handler) PayPalCaptureOrder(c echo.Context) error {
	orderID := c.Param("orderID")
	if orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "orderID is required")
	}
	if h.paypal == nil {
		return providerError(c, ErrNotConfigured)
	}
	out, err := h.paypal.CaptureOrder(c.Request().Context(), orderID)
	if err != nil {
		return providerError(c, err)
	}
	return c.JSONBlob(http.StatusOK, out)
}

type phonePeRequest struct {
	Amount                float64 `json:"amount" validate:"required,gt=0"`
	MerchantTransactionID string  `json:"merchantTransactionId" validate:"omitempty,max=38"`
	MobileNumber          string  `json:"mobileNumber" validate:"omitempty,min=10,max=15"`
}

// PhonePeInitiate answers with a 303 to the PhonePe pay page, or with
// {"redirectUrl": ...} when the client asked for JSON.
func (h *Handler) PhonePeInitiate(c echo.Context) error {
	var req phonePeRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	if h.phonepe == nil {
		return providerError(c, ErrNotConfigured)
	}

	txnID := req.MerchantTransactionID
	if txnID == "" {
		txnID = "MC" + strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
	}
	userID := "guest"
	if uid := auth.UserIDFromContext(c.Request().Context()); uid > 0 {
		userID = fmt.Sprintf("MCU%d", uid)
	}

	redirect, err := h.phonepe.Initiate(c.Request().Context(), PhonePeInitiation{
		TransactionID: txnID,
		UserID:        userID,
		AmountPaise:   toPaise(req.Amount),
		MobileNumber:  req.MobileNumber,
	})
	if err != nil {
		return providerError(c, err)
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusOK, map[string]string{"redirectUrl": redirect, "merchantTransactionId": txnID})
	}
	return c.Redirect(http.StatusSeeOther, redirect)
}

type razorpayRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
	Receipt  string  `json:"receipt" validate:"omitempty,max=40"`
}

func (h *Handler) RazorpayCreateOrder(c echo.Context) error {
	var req razorpayRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	if h.razorpay == nil {
		return providerError(c, ErrNotConfigured)
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "INR"
	}
	receipt := req.Receipt
	if receipt == "" {
		receipt = "rcpt_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
	}

	order, err := h.razorpay.CreateOrder(c.Request().Context(), toPaise(req.Amount), currency, receipt)
	if err != nil {
		return providerError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// toPaise converts a rupee amount to the smallest currency unit.
func toPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func providerError(c echo.Context, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Payment provider is not configured")
	}
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("payment provider call failed")
	return echo.NewHTTPError(http.StatusBadGateway, "Payment provider request failed")
}
