package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/middleware"
	"github.com/iliyamo/fitness-studio-site/internal/service"
)

// SupportHandler proxies the support chat and takes strength-test signups.
type SupportHandler struct {
	Bot      SupportAsker
	Notifier Notifier
}

func NewSupportHandler(bot SupportAsker, n Notifier) *SupportHandler {
	return &SupportHandler{Bot: bot, Notifier: n}
}

// Chat handles POST /support-chat.
func (h *SupportHandler) Chat(c echo.Context) error {
	var body struct {
		Message string             `json:"message"`
		History []service.ChatTurn `json:"history"`
	}
	if err := c.Bind(&body); err != nil {
		return invalid(c, apperr.CodeBadRequest)
	}
	if strings.TrimSpace(body.Message) == "" {
		return invalid(c, apperr.CodeMessageRequired)
	}
	if h.Bot == nil {
		return fail(c, http.StatusInternalServerError, apperr.CodeServerError)
	}

	reply, err := h.Bot.Ask(c.Request().Context(), body.Message, body.History)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrUpstreamRequestFailed), errors.Is(err, apperr.ErrUpstreamUnreachable):
		middleware.Logger(c).Warn("support bot failed", zap.String("reason", apperr.Reason(err)), zap.Error(err))
		return fail(c, http.StatusBadGateway, apperr.CodeSupportUnavailable)
	default:
		middleware.Logger(c).Error("support bot unavailable", zap.Error(err))
		return fail(c, http.StatusInternalServerError, apperr.CodeServerError)
	}
	if reply == "" {
		reply = apperr.Message(apperr.CodeSupportNoReply, c.Request().Header.Get("Accept-Language"))
	}
	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}

// TestSignup handles POST /test-signup. The Telegram message is the whole
// point of the request, so a failed send is a 500.
func (h *SupportHandler) TestSignup(c echo.Context) error {
	var body struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Context  string `json:"context"`
	}
	if err := c.Bind(&body); err != nil {
		return invalid(c, apperr.CodeBadRequest)
	}
	if strings.TrimSpace(body.FullName) == "" && strings.TrimSpace(body.Email) == "" {
		return invalid(c, apperr.CodeSignupFieldsRequired)
	}

	text := fmt.Sprintf("📝 <b>Новая заявка на тест силы</b>\n\n👤 Имя: %s\n📧 Email: %s\n",
		service.EscapeHTML(optional(body.FullName)), service.EscapeHTML(optional(body.Email)))
	if ctx := strings.TrimSpace(body.Context); ctx != "" {
		text += "📌 Источник: " + service.EscapeHTML(ctx) + "\n"
	}

	if h.Notifier == nil {
		return fail(c, http.StatusInternalServerError, apperr.CodeSignupFailed)
	}
	if err := h.Notifier.Send(c.Request().Context(), text); err != nil {
		middleware.Logger(c).Error("test signup not delivered", zap.Error(err))
		return fail(c, http.StatusInternalServerError, apperr.CodeSignupFailed)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
