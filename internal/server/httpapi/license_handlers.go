package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/payment"
)

type licenseResponse struct {
	LicenseToken string `json:"license_token"`
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type portalResponse struct {
	URL string `json:"url"`
}

// handleLicenseCheck resolves entitlement for the session's email and
// returns a fresh license token.
func (s *Server) handleLicenseCheck(c echo.Context) error {
	tok, err := s.license.Check(c.Request().Context(), sessionEmail(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("license check failed"))
	}
	return c.JSON(http.StatusOK, licenseResponse{LicenseToken: tok})
}

// handleCheckoutCreate delegates checkout-session creation to the provider.
func (s *Server) handleCheckoutCreate(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	url, err := s.license.Checkout(c.Request().Context(), sessionEmail(c), req.Plan)
	if err != nil {
		var unknown *payment.ErrUnknownPlan
		if errors.As(err, &unknown) {
			return c.JSON(http.StatusBadRequest, errorBody(unknown.Error()))
		}
		return c.JSON(http.StatusInternalServerError, errorBody("checkout failed"))
	}
	return c.JSON(http.StatusOK, checkoutResponse{CheckoutURL: url})
}

// handleBillingPortal creates a billing-portal session for the customer on
// file; 404 when there is none.
func (s *Server) handleBillingPortal(c echo.Context) error {
	url, err := s.license.Portal(c.Request().Context(), sessionEmail(c))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorBody("no billing customer on file"))
		}
		return c.JSON(http.StatusInternalServerError, errorBody("portal session failed"))
	}
	return c.JSON(http.StatusOK, portalResponse{URL: url})
}
