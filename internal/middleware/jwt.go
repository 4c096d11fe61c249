package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/utils"
)

// PaymentIDKey is the context key under which LinkTokenAuth stores the
// invoice id taken from a valid link token.
const PaymentIDKey = "payment_id"

// LinkTokenAuth validates a Bearer Telegram link token and injects the
// invoice id it was issued for into the request context.
func LinkTokenAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := c.Request().Header.Get("Accept-Language")
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": apperr.Message(apperr.CodeUnauthorized, lang)})
			}
			claims, err := utils.ParseLinkToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				Logger(c).Info("link token rejected", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": apperr.Message(apperr.CodeInvalidToken, lang)})
			}
			c.Set(PaymentIDKey, claims.PaymentID())
			return next(c)
		}
	}
}
