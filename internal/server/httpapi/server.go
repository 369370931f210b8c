// Package httpapi exposes the HTTP surface: sign-in endpoints for the
// extension and browser, entitlement/billing endpoints behind the bearer
// gate, and the provider webhook.
package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/limiter"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/payment"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/service"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/token"
)

// Server wires services into an echo router.
type Server struct {
	e             *echo.Echo
	auth          *service.AuthService
	license       *service.LicenseService
	reconciler    *payment.Reconciler
	tokens        *token.Issuer
	pollLimiter   *limiter.Memory
	webhookSecret string
	log           *zap.Logger
}

// New constructs the server and registers all routes.
func New(
	auth *service.AuthService,
	license *service.LicenseService,
	reconciler *payment.Reconciler,
	tokens *token.Issuer,
	pollLimiter *limiter.Memory,
	webhookSecret string,
	log *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(Recover(log), ZapLogger(log))

	s := &Server{
		e:             e,
		auth:          auth,
		license:       license,
		reconciler:    reconciler,
		tokens:        tokens,
		pollLimiter:   pollLimiter,
		webhookSecret: webhookSecret,
		log:           log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.POST("/auth/send-magic-link", s.handleSendMagicLink)
	s.e.GET("/auth/verify", s.handleVerify)
	s.e.GET("/auth/poll", s.handlePoll, s.pollRateLimit)

	authed := s.e.Group("", s.requireSession)
	authed.GET("/license/check", s.handleLicenseCheck)
	authed.POST("/checkout/create", s.handleCheckoutCreate)
	authed.POST("/billing/portal", s.handleBillingPortal)

	s.e.POST("/webhook/stripe", s.handleStripeWebhook)

	s.e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error { return s.e.Start(addr) }

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
