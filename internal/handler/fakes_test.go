package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-studio-site/internal/model"
	"github.com/iliyamo/fitness-studio-site/internal/queue"
	"github.com/iliyamo/fitness-studio-site/internal/repository"
	"github.com/iliyamo/fitness-studio-site/internal/service"
)

type fakeGateway struct {
	urlErr error
	valid  bool
}

func (g *fakeGateway) PaymentURL(invID int64, amount float64, email string) (string, error) {
	if g.urlErr != nil {
		return "", g.urlErr
	}
	return "https://pay.example/?InvId=1", nil
}

func (g *fakeGateway) VerifyCallback(outSum, invID, signature string) bool {
	return g.valid && signature != ""
}

type fakePurchases struct {
	findFn          func(ctx context.Context, id string) (*repository.PurchaseRecord, error)
	createPendingFn func(ctx context.Context, p model.Purchase, crm model.CRMOutcome) (string, error)
	markPaidFn      func(ctx context.Context, recordID string, u repository.PaidUpdate) error
	createPaidFn    func(ctx context.Context, paymentID string, u repository.PaidUpdate) (string, error)

	pending []model.Purchase
	crm     []model.CRMOutcome
	marked  []string
	paid    []repository.PaidUpdate
	created []string
}

func (f *fakePurchases) FindByPaymentID(ctx context.Context, id string) (*repository.PurchaseRecord, error) {
	if f.findFn != nil {
		return f.findFn(ctx, id)
	}
	return nil, nil
}

func (f *fakePurchases) CreatePending(ctx context.Context, p model.Purchase, crm model.CRMOutcome) (string, error) {
	f.pending = append(f.pending, p)
	f.crm = append(f.crm, crm)
	if f.createPendingFn != nil {
		return f.createPendingFn(ctx, p, crm)
	}
	return "recP", nil
}

func (f *fakePurchases) MarkPaid(ctx context.Context, recordID string, u repository.PaidUpdate) error {
	f.marked = append(f.marked, recordID)
	f.paid = append(f.paid, u)
	if f.markPaidFn != nil {
		return f.markPaidFn(ctx, recordID, u)
	}
	return nil
}

func (f *fakePurchases) CreatePaid(ctx context.Context, paymentID string, u repository.PaidUpdate) (string, error) {
	f.created = append(f.created, paymentID)
	f.paid = append(f.paid, u)
	if f.createPaidFn != nil {
		return f.createPaidFn(ctx, paymentID, u)
	}
	return "recNew", nil
}

type fakeLeads struct {
	err   error
	leads []model.Lead
	crm   []model.CRMOutcome
}

func (f *fakeLeads) Create(ctx context.Context, l model.Lead, crm model.CRMOutcome) (string, error) {
	f.leads = append(f.leads, l)
	f.crm = append(f.crm, crm)
	if f.err != nil {
		return "", f.err
	}
	return "recLead", nil
}

type fakeCRM struct {
	out      model.CRMOutcome
	contacts []service.Contact
}

func (f *fakeCRM) Forward(ctx context.Context, c service.Contact) model.CRMOutcome {
	f.contacts = append(f.contacts, c)
	return f.out
}

type fakeNotifier struct {
	sendErr  error
	notified []string
	sent     []string
}

func (f *fakeNotifier) Notify(ctx context.Context, text string) {
	f.notified = append(f.notified, text)
}

func (f *fakeNotifier) Send(ctx context.Context, text string) error {
	f.sent = append(f.sent, text)
	return f.sendErr
}

type fakeEvents struct {
	payments []queue.PaymentConfirmedEvent
	leads    []queue.LeadCreatedEvent
}

func (f *fakeEvents) PaymentConfirmed(ctx context.Context, ev queue.PaymentConfirmedEvent) error {
	f.payments = append(f.payments, ev)
	return nil
}

func (f *fakeEvents) LeadCreated(ctx context.Context, ev queue.LeadCreatedEvent) error {
	f.leads = append(f.leads, ev)
	return nil
}

type fakeSlots struct {
	calls []string
	days  []int
	list  model.SlotList
}

func (f *fakeSlots) TrialSlots(ctx context.Context, studio model.StudioID, product string, days int) model.SlotList {
	f.calls = append(f.calls, string(studio)+"/"+product)
	f.days = append(f.days, days)
	return f.list
}

type fakeBot struct {
	reply string
	err   error
	asked []string
}

func (f *fakeBot) Ask(ctx context.Context, message string, history []service.ChatTurn) (string, error) {
	f.asked = append(f.asked, message)
	return f.reply, f.err
}

// serve runs one request through a fresh echo instance.
func serve(t *testing.T, method, target, contentType, body string, h echo.HandlerFunc, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

const jsonCT = echo.MIMEApplicationJSON
