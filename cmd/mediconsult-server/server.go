package main

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/mediconsult/mediconsult/internal/config"
	"github.com/mediconsult/mediconsult/internal/domain/billing"
	"github.com/mediconsult/mediconsult/internal/domain/catalog"
	"github.com/mediconsult/mediconsult/internal/domain/doctor"
	"github.com/mediconsult/mediconsult/internal/domain/identity"
	"github.com/mediconsult/mediconsult/internal/domain/records"
	"github.com/mediconsult/mediconsult/internal/domain/scheduling"
	"github.com/mediconsult/mediconsult/internal/platform/auth"
	"github.com/mediconsult/mediconsult/internal/platform/db"
	"github.com/mediconsult/mediconsult/internal/platform/middleware"
	"github.com/mediconsult/mediconsult/internal/platform/notification"
	"github.com/mediconsult/mediconsult/internal/platform/payment"
	"github.com/mediconsult/mediconsult/internal/platform/session"
	"github.com/mediconsult/mediconsult/internal/platform/validation"
	"github.com/mediconsult/mediconsult/internal/platform/video"
)

const version = "0.1.0"

// newServer assembles the echo instance with every route mounted. pool is
// only dereferenced when a request reaches the database.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, store session.Store) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.Sanitize(logger))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	}

	// Sessions load before the limiter so signed-in users get their own bucket.
	sessions := session.NewManager(store, cfg.SessionTTL, cfg.SessionCookieSecure)
	e.Use(sessions.Middleware())

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           10 * time.Minute,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	rateLimitCfg.Skipper = auth.PublicSkipper
	e.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	var checker db.Checker
	if pool != nil {
		checker = pool
	}
	e.GET("/health/db", db.HealthHandler(checker))

	api := e.Group("/api")

	// Outbound notifications
	notifier := notification.NewNotifier(emailSender(cfg, logger), smsSender(cfg, logger),
		notification.NewTemplateEngine(), cfg.AppLinkURL)
	notification.NewAppLinkHandler(notifier).RegisterRoutes(api)

	tokens, err := video.NewTokenIssuer(cfg.VideoSigningKey, cfg.VideoTokenTTL)
	if err != nil {
		return nil, err
	}
	if cfg.VideoSigningKey == "" {
		logger.Warn().Msg("VIDEO_SIGNING_KEY not set; room tokens will not survive a restart")
	}

	// Accounts
	identitySvc := identity.NewService(identity.NewUserRepoPG(pool))
	identity.NewHandler(identitySvc, sessions).RegisterRoutes(api)

	// Catalog
	catalogSvc := catalog.NewService(
		catalog.NewSpecialtyRepoPG(pool),
		catalog.NewArticleRepoPG(pool),
		catalog.NewSurgeryRepoPG(pool),
		catalog.NewTestimonialRepoPG(pool),
		catalog.NewLabTestRepoPG(pool),
		cfg.CatalogCacheSize, cfg.CatalogCacheTTL,
	)
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)

	// Doctors
	doctorSvc := doctor.NewService(doctor.NewDoctorRepoPG(pool))
	doctorSvc.OnChange(catalogSvc.InvalidateSpecialties)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)

	// Appointments and video consultations
	schedulingSvc := scheduling.NewService(
		scheduling.NewAppointmentRepoPG(pool),
		scheduling.NewDoctorDirectoryPG(pool),
		tokens, notifier,
	)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)

	// Medical records and lab bookings
	recordsSvc := records.NewService(
		records.NewMedicalRecordRepoPG(pool),
		records.NewLabBookingRepoPG(pool),
		records.NewLabTestDirectoryPG(pool),
		notifier,
	)
	records.NewHandler(recordsSvc).RegisterRoutes(api)

	// Payments
	pp, pe, rz := paymentProviders(cfg)
	payment.NewHandler(pp, pe, rz).RegisterRoutes(e, api)
	billingSvc := billing.NewService(billing.NewPaymentMethodRepoPG(pool), configuredProviders(cfg)...)
	billing.NewHandler(billingSvc).RegisterRoutes(api)

	return e, nil
}

func emailSender(cfg *config.Config, logger zerolog.Logger) notification.EmailSender {
	if cfg.SMTPEnabled() {
		return notification.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}
	logger.Warn().Msg("SMTP not configured; emails are logged only")
	return notification.NewLogSender(logger)
}

func smsSender(cfg *config.Config, logger zerolog.Logger) notification.SMSSender {
	if cfg.TwilioEnabled() {
		return notification.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}
	logger.Warn().Msg("Twilio not configured; SMS messages are logged only")
	return notification.NewLogSender(logger)
}

// paymentProviders builds a client for each configured provider. The
// handler answers 503 for the nil ones.
func paymentProviders(cfg *config.Config) (*payment.PayPal, *payment.PhonePe, *payment.Razorpay) {
	var pp *payment.PayPal
	var pe *payment.PhonePe
	var rz *payment.Razorpay
	if cfg.PayPalEnabled() {
		pp = payment.NewPayPal(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalBaseURL)
	}
	if cfg.PhonePeEnabled() {
		pe = payment.NewPhonePe(cfg.PhonePeMerchantID, cfg.PhonePeSaltKey, cfg.PhonePeSaltIndex,
			cfg.PhonePeBaseURL, cfg.PhonePeRedirectURL)
	}
	if cfg.RazorpayEnabled() {
		rz = payment.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	}
	return pp, pe, rz
}

func configuredProviders(cfg *config.Config) []string {
	var out []string
	if cfg.PayPalEnabled() {
		out = append(out, billing.ProviderPayPal)
	}
	if cfg.PhonePeEnabled() {
		out = append(out, billing.ProviderPhonePe)
	}
	if cfg.RazorpayEnabled() {
		out = append(out, billing.ProviderRazorpay)
	}
	return out
}
