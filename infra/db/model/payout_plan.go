package model

// PayoutPlan is a recurring payout schedule owned by a company. ExternalID
// is the company's own identifier for the plan, unique within the company.
// Disabling sets Active false and stamps DeleteTime; existing state is kept.
type PayoutPlan struct {
	GUID               string `gorm:"primary_key;size:40" json:"guid"`
	CompanyGUID        string `gorm:"size:40;not null;unique_index:ux_payout_plans_company_external" json:"company_guid"`
	ExternalID         string `gorm:"size:100;not null;unique_index:ux_payout_plans_company_external" json:"external_id"`
	Name               string `gorm:"size:200;not null" json:"name"`
	BalanceToKeepCents int64  `gorm:"not null" json:"balance_to_keep_cents"`
	IntervalDays       int    `gorm:"not null" json:"interval_days"`
	Active             bool   `gorm:"not null" json:"active"`
	CreateTime         int64  `gorm:"not null" json:"create_time"`
	UpdateTime         int64  `gorm:"not null" json:"update_time"`
	DeleteTime         int64  `json:"delete_time,omitempty"`
}
