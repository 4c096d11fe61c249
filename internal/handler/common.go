package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/middleware"
	"github.com/iliyamo/fitness-studio-site/internal/model"
	"github.com/iliyamo/fitness-studio-site/internal/queue"
	"github.com/iliyamo/fitness-studio-site/internal/repository"
	"github.com/iliyamo/fitness-studio-site/internal/service"
)

// Dependencies of the handlers, narrowed to what each one calls so tests
// can substitute fakes.
type (
	PaymentGateway interface {
		PaymentURL(invID int64, amount float64, email string) (string, error)
		VerifyCallback(outSum, invID, signature string) bool
	}

	PurchaseStore interface {
		FindByPaymentID(ctx context.Context, paymentID string) (*repository.PurchaseRecord, error)
		CreatePending(ctx context.Context, p model.Purchase, crm model.CRMOutcome) (string, error)
		MarkPaid(ctx context.Context, recordID string, u repository.PaidUpdate) error
		CreatePaid(ctx context.Context, paymentID string, u repository.PaidUpdate) (string, error)
	}

	LeadStore interface {
		Create(ctx context.Context, l model.Lead, crm model.CRMOutcome) (string, error)
	}

	ContactForwarder interface {
		Forward(ctx context.Context, c service.Contact) model.CRMOutcome
	}

	Notifier interface {
		Notify(ctx context.Context, text string)
		Send(ctx context.Context, text string) error
	}

	EventPublisher interface {
		PaymentConfirmed(ctx context.Context, ev queue.PaymentConfirmedEvent) error
		LeadCreated(ctx context.Context, ev queue.LeadCreatedEvent) error
	}

	SlotSource interface {
		TrialSlots(ctx context.Context, studio model.StudioID, product string, days int) model.SlotList
	}

	SupportAsker interface {
		Ask(ctx context.Context, message string, history []service.ChatTurn) (string, error)
	}
)

// fail writes the JSON error envelope in the caller's language.
func fail(c echo.Context, status int, code apperr.Code) error {
	return c.JSON(status, echo.Map{"error": apperr.Message(code, c.Request().Header.Get("Accept-Language"))})
}

// invalid rejects client input with a 400 and records the rejection at
// info level.
func invalid(c echo.Context, code apperr.Code) error {
	middleware.Logger(c).Info("request rejected",
		zap.String("code", string(code)),
		zap.Error(fmt.Errorf("%w: %s", apperr.ErrValidation, code)))
	return fail(c, http.StatusBadRequest, code)
}

// flexString accepts a JSON string or number, as browsers send ids either way.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func optional(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}
