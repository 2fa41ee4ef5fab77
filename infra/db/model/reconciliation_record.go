package model

// ReconciliationRecord links an applied CallbackEvent to the Transaction it
// updated. At most one row per event; its existence is the idempotence
// witness checked before any transition is attempted.
type ReconciliationRecord struct {
	GUID            string `gorm:"primary_key;size:40" json:"guid"`
	EventGUID       string `gorm:"size:40;not null;unique_index" json:"event_guid"`
	TransactionGUID string `gorm:"size:40;not null;index" json:"transaction_guid"`
	FromStatus      string `gorm:"size:20;not null" json:"from_status"`
	ToStatus        string `gorm:"size:20;not null" json:"to_status"`
	AppliedSequence int64  `gorm:"not null" json:"applied_sequence"`
	CreateTime      int64  `gorm:"not null" json:"create_time"`
}
