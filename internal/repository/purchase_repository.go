package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/fitness-studio-site/internal/model"
)

// PurchaseRecord is a purchase row as read back from the record store.
type PurchaseRecord struct {
	RecordID    string
	PaymentID   string
	Status      model.PurchaseStatus
	LinkToken   string
	TariffLabel string
	Currency    string
	CourseName  string
	Sum         float64
}

// Paid reports whether the purchase has been confirmed by the gateway.
func (p *PurchaseRecord) Paid() bool { return p != nil && p.Status == model.PurchasePaid }

// PaidUpdate is what a verified payment callback writes.
type PaidUpdate struct {
	OutSum    string
	PaidAt    time.Time
	LinkToken string
}

func (u PaidUpdate) fields() Fields {
	f := Fields{
		model.FieldStatus:   string(model.PurchasePaid),
		model.FieldPaidTime: u.PaidAt.UTC().Format(time.RFC3339),
	}
	if u.LinkToken != "" {
		f[model.FieldLinkToken] = u.LinkToken
	}
	return f
}

// PurchaseRepo reads and writes the purchases table. Records are keyed by
// the gateway invoice id stored in id_payment.
type PurchaseRepo struct {
	store *RecordStore
	table string
}

func NewPurchaseRepo(store *RecordStore, table string) *PurchaseRepo {
	return &PurchaseRepo{store: store, table: table}
}

// FindByPaymentID returns the purchase for an invoice id, or nil.
func (r *PurchaseRepo) FindByPaymentID(ctx context.Context, paymentID string) (*PurchaseRecord, error) {
	rec, err := r.store.FindOneByKey(ctx, r.table, model.FieldPaymentID, paymentID)
	if err != nil || rec == nil {
		return nil, err
	}
	status := model.PurchaseCreated
	if strings.EqualFold(rec.Text(model.FieldStatus), string(model.PurchasePaid)) {
		status = model.PurchasePaid
	}
	return &PurchaseRecord{
		RecordID:    rec.ID,
		PaymentID:   rec.Text(model.FieldPaymentID),
		Status:      status,
		LinkToken:   rec.Text(model.FieldLinkToken),
		TariffLabel: rec.Text(model.FieldTariffLabel),
		Currency:    rec.Text(model.FieldCurrency),
		CourseName:  rec.Text(model.FieldCourseName),
		Sum:         rec.Number(model.FieldSum),
	}, nil
}

// CreatePending stores a new checkout in the created state and returns the
// record id.
func (r *PurchaseRepo) CreatePending(ctx context.Context, p model.Purchase, crm model.CRMOutcome) (string, error) {
	f := Fields{
		model.FieldPaymentID:   strconv.FormatInt(p.PaymentID, 10),
		model.FieldStatus:      string(model.PurchaseCreated),
		model.FieldFullName:    p.FullName,
		model.FieldEmail:       p.Email,
		model.FieldSum:         p.Amount,
		model.FieldCurrency:    p.Currency,
		model.FieldTariffID:    p.TariffID,
		model.FieldTariffLabel: p.TariffLabel,
		model.FieldTag:         p.Tag(),
	}
	optional := map[string]string{
		model.FieldPhone:       p.Phone,
		model.FieldCourseName:  p.CourseName,
		model.FieldStudioID:    p.StudioID,
		model.FieldSlotStartAt: p.SlotStartAt,
	}
	for k, v := range optional {
		if v != "" {
			f[k] = v
		}
	}
	for k, v := range crm.Fields() {
		f[k] = v
	}
	rec, err := r.store.Create(ctx, r.table, f)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// MarkPaid moves an existing purchase to the paid state.
func (r *PurchaseRepo) MarkPaid(ctx context.Context, recordID string, u PaidUpdate) error {
	return r.store.Update(ctx, r.table, recordID, u.fields())
}

// CreatePaid stores a confirmation for an invoice that has no purchase row,
// so a confirmed payment is never lost.
func (r *PurchaseRepo) CreatePaid(ctx context.Context, paymentID string, u PaidUpdate) (string, error) {
	f := u.fields()
	f[model.FieldPaymentID] = paymentID
	if sum, err := strconv.ParseFloat(u.OutSum, 64); err == nil {
		f[model.FieldSum] = sum
	}
	rec, err := r.store.Create(ctx, r.table, f)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}
