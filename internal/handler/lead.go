package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/middleware"
	"github.com/iliyamo/fitness-studio-site/internal/model"
	"github.com/iliyamo/fitness-studio-site/internal/queue"
	"github.com/iliyamo/fitness-studio-site/internal/service"
)

// LeadHandler stores trial sign-up leads.
type LeadHandler struct {
	Leads    LeadStore
	CRM      ContactForwarder
	Notifier Notifier
	Events   EventPublisher
}

func NewLeadHandler(leads LeadStore, crm ContactForwarder, n Notifier, ev EventPublisher) *LeadHandler {
	if leads == nil {
		panic("nil lead store passed to NewLeadHandler")
	}
	return &LeadHandler{Leads: leads, CRM: crm, Notifier: n, Events: ev}
}

// Create handles POST /leads. Contact data goes to the CRM first; the
// record store write is the primary action and its failure is a 500.
func (h *LeadHandler) Create(c echo.Context) error {
	var body struct {
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		City     string `json:"city"`
		Studio   string `json:"studio"`
	}
	if err := c.Bind(&body); err != nil {
		return invalid(c, apperr.CodeBadRequest)
	}
	lead := model.Lead{
		FullName: strings.TrimSpace(body.FullName),
		Phone:    strings.TrimSpace(body.Phone),
		Email:    strings.TrimSpace(body.Email),
		City:     strings.TrimSpace(body.City),
		Studio:   strings.TrimSpace(body.Studio),
	}
	if lead.FullName == "" || lead.Phone == "" || lead.City == "" || lead.Studio == "" {
		return invalid(c, apperr.CodeLeadFieldsRequired)
	}

	ctx := c.Request().Context()
	crm := model.CRMOutcome{Error: "config_missing"}
	if h.CRM != nil {
		crm = h.CRM.Forward(ctx, service.Contact{Name: lead.FullName, Phone: lead.Phone, Email: lead.Email, Notes: "лид"})
	}

	id, err := h.Leads.Create(ctx, lead, crm)
	if err != nil {
		middleware.Logger(c).Error("storing lead failed", zap.String("reason", apperr.Reason(err)), zap.Error(err))
		return fail(c, http.StatusInternalServerError, apperr.CodeLeadCreateFailed)
	}

	if h.Notifier != nil {
		ruFirst := "ok"
		if !crm.OK {
			ruFirst = "ошибка: " + crm.Error
		}
		h.Notifier.Notify(ctx, fmt.Sprintf("<b>📝 Новая заявка на пробное</b>\n<b>Имя:</b> %s\n<b>Телефон:</b> %s\n<b>Email:</b> %s\n<b>Город:</b> %s\n<b>Студия:</b> %s\n<b>RU-first:</b> %s",
			service.EscapeHTML(lead.FullName), service.EscapeHTML(lead.Phone), service.EscapeHTML(optional(lead.Email)),
			service.EscapeHTML(lead.City), service.EscapeHTML(lead.Studio), service.EscapeHTML(ruFirst)))
	}
	if h.Events != nil {
		_ = h.Events.LeadCreated(ctx, queue.LeadCreatedEvent{
			LeadID:    id,
			City:      lead.City,
			Studio:    lead.Studio,
			RUFirstOK: crm.OK,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "leadId": id})
}
