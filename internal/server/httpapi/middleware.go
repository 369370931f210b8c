package httpapi

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const emailContextKey = "rys.email"

// ZapLogger logs one structured line per request: metadata only, no payloads.
func ZapLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			log.Info("http",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Duration("dur", time.Since(start)),
				zap.String("peer", c.RealIP()),
			)
			return err
		}
	}
}

// Recover converts panics into 500s and logs the stack.
func Recover(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic",
						zap.Any("reason", r),
						zap.ByteString("stack", debug.Stack()),
						zap.String("path", c.Request().URL.Path),
					)
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal")
				}
			}()
			return next(c)
		}
	}
}

// requireSession verifies the bearer session token and attaches the verified
// email to the request context for downstream handlers.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return c.JSON(http.StatusUnauthorized, errorBody("missing bearer token"))
		}
		email, err := s.tokens.VerifySession(raw)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("invalid or expired token"))
		}
		c.Set(emailContextKey, email)
		return next(c)
	}
}

// sessionEmail fetches the verified email set by requireSession.
func sessionEmail(c echo.Context) string {
	email, _ := c.Get(emailContextKey).(string)
	return email
}

// pollRateLimit throttles the polling endpoint per caller IP. The limiter is
// process-local and forgets its counters on restart.
func (s *Server) pollRateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ok, retryAfter := s.pollLimiter.Allow(c.RealIP())
		if !ok {
			c.Response().Header().Set("Retry-After", strconv.Itoa(retrySeconds(retryAfter)))
			return c.JSON(http.StatusTooManyRequests, errorBody("too many requests"))
		}
		return next(c)
	}
}

// retrySeconds rounds a retry hint up to whole seconds, at least one.
func retrySeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
