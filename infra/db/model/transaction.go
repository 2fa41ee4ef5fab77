package model

import "github.com/shopspring/decimal"

// Transaction is a single monetary operation submitted to the processor.
// Rows are never deleted; terminal outcomes close them in place.
// ExternalRef is immutable once set. Version backs the compare-and-set
// update the reconciliation engine uses under concurrency.
type Transaction struct {
	GUID                 string          `gorm:"primary_key;size:40" json:"guid"`
	CompanyGUID          string          `gorm:"size:40;not null;index" json:"company_guid"`
	Kind                 string          `gorm:"size:20;not null" json:"kind"`
	Amount               decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency             string          `gorm:"size:3;not null" json:"currency"`
	FundingInstrumentURI string          `gorm:"size:200" json:"funding_instrument_uri"`
	IdempotencyKey       string          `gorm:"size:64;not null;unique_index" json:"idempotency_key"`
	ExternalRef          string          `gorm:"size:200;index" json:"external_ref"`
	RefundedRef          string          `gorm:"size:200" json:"refunded_ref,omitempty"`
	Status               string          `gorm:"size:20;not null;index" json:"status"`
	LastAppliedSequence  int64           `gorm:"not null" json:"last_applied_sequence"`
	ConflictNote         string          `gorm:"type:text" json:"conflict_note,omitempty"`
	Version              int64           `gorm:"not null" json:"-"`
	CreateTime           int64           `gorm:"not null" json:"create_time"`
	UpdateTime           int64           `gorm:"not null" json:"update_time"`
}
