package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/middleware"
	"github.com/iliyamo/fitness-studio-site/internal/model"
	"github.com/iliyamo/fitness-studio-site/internal/queue"
	"github.com/iliyamo/fitness-studio-site/internal/repository"
	"github.com/iliyamo/fitness-studio-site/internal/service"
	"github.com/iliyamo/fitness-studio-site/internal/utils"
)

// PaymentHandler implements checkout, payment status checks, the gateway
// result callback and the Telegram link lookup.
type PaymentHandler struct {
	Gateway   PaymentGateway
	Purchases PurchaseStore
	CRM       ContactForwarder
	Notifier  Notifier
	Events    EventPublisher

	LinkSecret string
	LinkTTL    time.Duration

	now func() time.Time
}

// NewPaymentHandler wires a PaymentHandler. Gateway and Purchases are
// required.
func NewPaymentHandler(gw PaymentGateway, purchases PurchaseStore, crm ContactForwarder, n Notifier, ev EventPublisher, linkSecret string, linkTTL time.Duration) *PaymentHandler {
	if gw == nil || purchases == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{
		Gateway:    gw,
		Purchases:  purchases,
		CRM:        crm,
		Notifier:   n,
		Events:     ev,
		LinkSecret: linkSecret,
		LinkTTL:    linkTTL,
		now:        time.Now,
	}
}

type createPaymentRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Email       string  `json:"email"`
	FullName    string  `json:"fullName"`
	TariffID    string  `json:"tariffId"`
	TariffLabel string  `json:"tariffLabel"`
	Phone       string  `json:"phone"`
	StudioID    string  `json:"studioId"`
	SlotStartAt string  `json:"slotStartAt"`
	CourseName  string  `json:"courseName"`
}

func (r createPaymentRequest) purchase(paymentID int64) model.Purchase {
	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = "RUB"
	}
	return model.Purchase{
		PaymentID:   paymentID,
		Amount:      r.Amount,
		Currency:    currency,
		Email:       strings.TrimSpace(r.Email),
		FullName:    strings.TrimSpace(r.FullName),
		Phone:       strings.TrimSpace(r.Phone),
		TariffID:    strings.TrimSpace(r.TariffID),
		TariffLabel: strings.TrimSpace(r.TariffLabel),
		CourseName:  strings.TrimSpace(r.CourseName),
		StudioID:    strings.TrimSpace(r.StudioID),
		SlotStartAt: strings.TrimSpace(r.SlotStartAt),
	}
}

// Create handles POST /payments. It forwards the buyer's contact data to
// the CRM, stores the purchase in the created state and returns the signed
// gateway URL. A record store that is not configured is tolerated; a
// failing one is not.
func (h *PaymentHandler) Create(c echo.Context) error {
	log := middleware.Logger(c)
	var body createPaymentRequest
	if err := c.Bind(&body); err != nil {
		return invalid(c, apperr.CodeBadRequest)
	}
	p := body.purchase(h.now().UnixMilli())
	if p.Amount <= 0 || p.Email == "" || p.FullName == "" || p.TariffID == "" {
		return invalid(c, apperr.CodePaymentFieldsRequired)
	}
	log = log.With(zap.Int64("payment_id", p.PaymentID))

	paymentURL, err := h.Gateway.PaymentURL(p.PaymentID, p.Amount, p.Email)
	if err != nil {
		log.Error("building payment url failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, apperr.CodePaymentCreateFailed)
	}

	ctx := c.Request().Context()
	crm := model.CRMOutcome{Error: "config_missing"}
	if h.CRM != nil {
		crm = h.CRM.Forward(ctx, service.Contact{
			Name:  p.FullName,
			Phone: p.Phone,
			Email: p.Email,
			Notes: "покупка: " + p.TariffLabel,
		})
	}

	stored := "сохранена"
	if _, err := h.Purchases.CreatePending(ctx, p, crm); err != nil {
		if !errors.Is(err, apperr.ErrConfigMissing) {
			log.Error("storing purchase failed", zap.String("reason", apperr.Reason(err)), zap.Error(err))
			return fail(c, http.StatusInternalServerError, apperr.CodePaymentCreateFailed)
		}
		log.Warn("record store not configured, purchase not stored")
		stored = "не сохранена (" + apperr.Reason(err) + ")"
	}

	if h.Notifier != nil {
		h.Notifier.Notify(ctx, fmt.Sprintf(
			"<b>🧾 Новая оплата создана</b>\n<b>InvId:</b> <code>%d</code>\n<b>Тариф:</b> %s\n<b>Сумма:</b> %s %s\n<b>Запись:</b> %s",
			p.PaymentID, service.EscapeHTML(optional(p.TariffLabel)),
			strconv.FormatFloat(p.Amount, 'f', -1, 64), service.EscapeHTML(p.Currency), service.EscapeHTML(stored)))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"paymentUrl": paymentURL,
		"paymentId":  strconv.FormatInt(p.PaymentID, 10),
	})
}

type checkResponse struct {
	OK              bool                  `json:"ok"`
	Paid            bool                  `json:"paid"`
	Status          string                `json:"status"`
	TGToken         *string               `json:"tgToken"`
	PurchasePayload model.PurchasePayload `json:"purchasePayload"`
}

func newCheckResponse(paymentID string, rec *repository.PurchaseRecord) checkResponse {
	resp := checkResponse{
		OK:              true,
		Status:          "pending",
		PurchasePayload: model.PurchasePayload{TransactionID: paymentID},
	}
	if rec == nil {
		return resp
	}
	if rec.Paid() {
		resp.Paid = true
		resp.Status = string(model.PurchasePaid)
	}
	if rec.LinkToken != "" {
		tok := rec.LinkToken
		resp.TGToken = &tok
	}
	resp.PurchasePayload.TariffLabel = rec.TariffLabel
	resp.PurchasePayload.Currency = rec.Currency
	resp.PurchasePayload.Value = rec.Sum
	resp.PurchasePayload.CourseName = rec.CourseName
	return resp
}

// Check handles POST /payments/check for the thank-you page.
func (h *PaymentHandler) Check(c echo.Context) error {
	var body struct {
		PaymentID flexString `json:"paymentId"`
	}
	if err := c.Bind(&body); err != nil {
		return invalid(c, apperr.CodeBadRequest)
	}
	paymentID := string(body.PaymentID)
	if paymentID == "" {
		return invalid(c, apperr.CodePaymentIDRequired)
	}
	rec, err := h.Purchases.FindByPaymentID(c.Request().Context(), paymentID)
	if err != nil {
		middleware.Logger(c).Error("payment lookup failed", zap.String("payment_id", paymentID),
			zap.String("reason", apperr.Reason(err)), zap.Error(err))
		return fail(c, http.StatusInternalServerError, apperr.CodePaymentLookupFailed)
	}
	return c.JSON(http.StatusOK, newCheckResponse(paymentID, rec))
}

// Link handles GET /payments/link. LinkTokenAuth has already resolved the
// invoice id; only paid purchases are disclosed.
func (h *PaymentHandler) Link(c echo.Context) error {
	paymentID, _ := c.Get(middleware.PaymentIDKey).(string)
	if paymentID == "" {
		return fail(c, http.StatusUnauthorized, apperr.CodeInvalidToken)
	}
	rec, err := h.Purchases.FindByPaymentID(c.Request().Context(), paymentID)
	if err != nil {
		middleware.Logger(c).Error("payment lookup failed", zap.String("payment_id", paymentID), zap.Error(err))
		return fail(c, http.StatusInternalServerError, apperr.CodePaymentLookupFailed)
	}
	if !rec.Paid() {
		return fail(c, http.StatusNotFound, apperr.CodePurchaseNotFound)
	}
	resp := newCheckResponse(paymentID, rec)
	resp.TGToken = nil
	return c.JSON(http.StatusOK, resp)
}

// Webhook handles the gateway result callback on GET and POST. Parameters
// come from a form, a JSON body or the query string with case-insensitive
// keys. The body of a successful response must be exactly OK<InvId>.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	log := middleware.Logger(c)
	params, err := callbackParams(c)
	if err != nil {
		return c.String(http.StatusBadRequest, "bad args")
	}
	outSum := params.get("outsum")
	invID := params.get("invid", "invoiceid")
	signature := params.get("signaturevalue", "signature")
	if outSum == "" || invID == "" {
		return c.String(http.StatusBadRequest, "bad args")
	}
	log = log.With(zap.String("inv_id", invID))
	if !h.Gateway.VerifyCallback(outSum, invID, signature) {
		log.Warn("payment callback rejected", zap.Error(apperr.ErrSignatureInvalid))
		return c.String(http.StatusBadRequest, "bad signature")
	}

	ctx := c.Request().Context()
	rec, findErr := h.Purchases.FindByPaymentID(ctx, invID)
	storeConfigured := !errors.Is(findErr, apperr.ErrConfigMissing)
	if findErr != nil && storeConfigured {
		log.Error("payment callback: lookup failed", zap.String("reason", apperr.Reason(findErr)), zap.Error(findErr))
		return c.String(http.StatusInternalServerError, "store error")
	}
	if rec.Paid() {
		// gateway retry of an already confirmed payment
		return c.String(http.StatusOK, "OK"+invID)
	}

	now := h.now()
	update := repository.PaidUpdate{OutSum: outSum, PaidAt: now}
	if tok, err := utils.NewLinkToken(h.LinkSecret, invID, h.LinkTTL, now); err == nil {
		update.LinkToken = tok
	} else {
		log.Warn("link token not issued", zap.Error(err))
	}

	ev := queue.PaymentConfirmedEvent{PaymentID: invID, OutSum: outSum, ConfirmedAt: now.UTC().Format(time.RFC3339)}
	var storeErr error
	switch {
	case !storeConfigured:
		log.Warn("record store not configured, payment confirmation not stored")
	case rec != nil:
		storeErr = h.Purchases.MarkPaid(ctx, rec.RecordID, update)
		ev.RecordID, ev.TariffLabel, ev.CourseName = rec.RecordID, rec.TariffLabel, rec.CourseName
	default:
		// never lose a confirmed payment
		ev.Recovered = true
		ev.RecordID, storeErr = h.Purchases.CreatePaid(ctx, invID, update)
	}
	if storeErr != nil {
		log.Error("payment callback: storing confirmation failed", zap.String("reason", apperr.Reason(storeErr)), zap.Error(storeErr))
		return c.String(http.StatusInternalServerError, "store error")
	}

	if h.Notifier != nil {
		h.Notifier.Notify(ctx, fmt.Sprintf("<b>✅ Оплата успешна</b>\n<b>InvId:</b> <code>%s</code>\n<b>OutSum:</b> %s",
			service.EscapeHTML(invID), service.EscapeHTML(outSum)))
	}
	if h.Events != nil {
		_ = h.Events.PaymentConfirmed(ctx, ev)
	}
	log.Info("payment confirmed", zap.Bool("recovered", ev.Recovered))
	return c.String(http.StatusOK, "OK"+invID)
}
