package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessorEvent is a callback payload normalized into the shape the
// reconciliation engine consumes. Sequence is the processor's own ordering
// number for the transaction; OccurredAt is kept for audit only.
type ProcessorEvent struct {
	EventID     string
	EventType   string
	ExternalRef string
	Status      string
	Sequence    int64
	OccurredAt  time.Time
}

// CallbackPayload is the wire shape of an inbound processor callback.
type CallbackPayload struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	Entity     CallbackPayloadEntity `json:"entity"`
	OccurredAt time.Time             `json:"occurred_at"`
}

type CallbackPayloadEntity struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Sequence  int64  `json:"sequence"`
}

type CreateCompanyRequest struct {
	Name         string `json:"name"`
	ProcessorKey string `json:"processor_key"`
}

type CreateChargeRequest struct {
	CompanyGUID          string          `json:"company_guid"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	FundingInstrumentURI string          `json:"funding_instrument_uri"`
}

type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type CreatePlanRequest struct {
	ExternalID         string `json:"external_id"`
	Name               string `json:"name"`
	BalanceToKeepCents int64  `json:"balance_to_keep_cents"`
	IntervalDays       int    `json:"interval_days"`
}

type UpdatePlanRequest struct {
	Name string `json:"name"`
}
