// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names. Each event type has its own durable queue and is published
// through the default exchange with the queue name as routing key.
const (
	PaymentConfirmedQueue = "payment.confirmed"
	LeadCreatedQueue      = "lead.created"
)

// PaymentConfirmedEvent is published once a verified gateway callback has
// marked a purchase paid. It carries no personal data.
type PaymentConfirmedEvent struct {
	PaymentID   string `json:"payment_id"`
	OutSum      string `json:"out_sum"`
	RecordID    string `json:"record_id,omitempty"`
	TariffLabel string `json:"tariff_label,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
	Recovered   bool   `json:"recovered"` // no purchase row existed before the callback
	ConfirmedAt string `json:"confirmed_at"`
}

// LeadCreatedEvent is published after a site lead was stored.
type LeadCreatedEvent struct {
	LeadID    string `json:"lead_id"`
	City      string `json:"city"`
	Studio    string `json:"studio"`
	RUFirstOK bool   `json:"ru_first_ok"`
	CreatedAt string `json:"created_at"`
}
