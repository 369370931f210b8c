package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
)

type sendMagicLinkRequest struct {
	Email string `json:"email"`
}

type sendMagicLinkResponse struct {
	RequestID string `json:"request_id"`
}

type pollResponse struct {
	Status       string `json:"status"`
	SessionToken string `json:"session_token,omitempty"`
	Email        string `json:"email,omitempty"`
}

// handleSendMagicLink starts a sign-in attempt.
func (s *Server) handleSendMagicLink(c echo.Context) error {
	var req sendMagicLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	id, err := s.auth.RequestLink(c.Request().Context(), req.Email)
	if err != nil {
		var rl *errs.RateLimitError
		switch {
		case errors.Is(err, errs.ErrInvalidEmail):
			return c.JSON(http.StatusBadRequest, errorBody("invalid email"))
		case errors.As(err, &rl):
			c.Response().Header().Set("Retry-After", strconv.Itoa(retrySeconds(rl.RetryAfter)))
			return c.JSON(http.StatusTooManyRequests, errorBody("too many requests"))
		}
		return c.JSON(http.StatusInternalServerError, errorBody("failed to send magic link"))
	}
	return c.JSON(http.StatusOK, sendMagicLinkResponse{RequestID: id})
}

// handleVerify serves the emailed link's landing page. Repeat clicks on an
// already verified request render success again.
func (s *Server) handleVerify(c echo.Context) error {
	rawID := c.QueryParam("token")
	if rawID == "" {
		return renderPage(c, http.StatusBadRequest, "Missing token",
			"This link is missing its sign-in token. Please request a new one.")
	}

	if _, err := s.auth.Verify(c.Request().Context(), rawID); err != nil {
		switch {
		case errors.Is(err, errs.ErrExpired):
			return renderPage(c, http.StatusGone, "Link expired",
				"This sign-in link has expired. Please request a new one.")
		case errors.Is(err, errs.ErrNotFound):
			return renderPage(c, http.StatusNotFound, "Link not found",
				"This sign-in link is invalid or has expired. Please request a new one.")
		}
		return renderPage(c, http.StatusInternalServerError, "Something went wrong",
			"We could not complete your sign-in. Please try again.")
	}
	return renderPage(c, http.StatusOK, "You're signed in",
		"Sign-in complete. You can close this tab and return to the extension.")
}

// handlePoll reports request state to the extension's poll loop. The
// response that carries the token is also the one that destroys the record.
func (s *Server) handlePoll(c echo.Context) error {
	rawID := c.QueryParam("request_id")
	if rawID == "" {
		return c.JSON(http.StatusBadRequest, errorBody("missing request_id"))
	}

	res, err := s.auth.Poll(c.Request().Context(), rawID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorBody("unknown request"))
		}
		return c.JSON(http.StatusInternalServerError, errorBody("poll failed"))
	}
	if res.Status != model.StatusVerified {
		return c.JSON(http.StatusOK, pollResponse{Status: model.StatusPending})
	}
	return c.JSON(http.StatusOK, pollResponse{
		Status:       model.StatusVerified,
		SessionToken: res.SessionToken,
		Email:        res.Email,
	})
}
