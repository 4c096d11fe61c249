package model

// PurchaseStatus is the state of a purchase record. The only transition is
// created -> paid, driven by a verified payment callback.
type PurchaseStatus string

const (
	PurchaseCreated PurchaseStatus = "created"
	PurchasePaid    PurchaseStatus = "paid"
)

// Record store field names of the purchases table.
const (
	FieldPaymentID   = "id_payment"
	FieldStatus      = "Status"
	FieldFullName    = "FIO"
	FieldEmail       = "email"
	FieldPhone       = "Phone"
	FieldSum         = "Sum"
	FieldCurrency    = "Currency"
	FieldTariffID    = "tariff_id"
	FieldTariffLabel = "tariff_label"
	FieldCourseName  = "course_name"
	FieldStudioID    = "studio_id"
	FieldSlotStartAt = "slot_start_at"
	FieldTag         = "Tag"
	FieldPaidTime    = "Paid_time"
	FieldLinkToken   = "tg_link_token"
	FieldRUFirstOK   = "ru_first_ok"
	FieldYDBID       = "ydb_id"
	FieldYDBError    = "ydb_error"
)

// Purchase tags used for downstream CRM segmentation.
const (
	TagTrial  = "trial"
	TagCourse = "course"
)

// Purchase is a checkout request as received from the browser.
type Purchase struct {
	PaymentID   int64
	Amount      float64
	Currency    string
	Email       string
	FullName    string
	Phone       string
	TariffID    string
	TariffLabel string
	CourseName  string
	StudioID    string
	SlotStartAt string
}

// Tag derives the segmentation tag: a purchase tied to a slot is a trial.
func (p Purchase) Tag() string {
	if p.SlotStartAt != "" {
		return TagTrial
	}
	return TagCourse
}

// PurchasePayload is what the thank-you page forwards to analytics.
type PurchasePayload struct {
	TransactionID string  `json:"transaction_id"`
	TariffLabel   string  `json:"tariff_label,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Value         float64 `json:"value"`
	CourseName    string  `json:"course_name,omitempty"`
}

// CRMOutcome records how the RU-first forwarding of personal data went.
// It is stored next to the purchase or lead so failures can be replayed.
type CRMOutcome struct {
	OK    bool
	YDBID string
	Error string
}

// Fields renders the outcome as record store fields.
func (o CRMOutcome) Fields() map[string]any {
	return map[string]any{
		FieldRUFirstOK: o.OK,
		FieldYDBID:     o.YDBID,
		FieldYDBError:  o.Error,
	}
}
