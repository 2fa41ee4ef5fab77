package model

// CallbackEvent is a raw processor notification kept for audit. The
// (processor, processor event id) pair is unique so redelivery is detected,
// not reprocessed. Rows are immutable once Outcome is terminal.
type CallbackEvent struct {
	GUID             string `gorm:"primary_key;size:40" json:"guid"`
	CompanyGUID      string `gorm:"size:40;not null;index" json:"company_guid"`
	Processor        string `gorm:"size:40;not null;unique_index:ux_callback_events_processor_event" json:"processor"`
	ProcessorEventID string `gorm:"size:100;not null;unique_index:ux_callback_events_processor_event" json:"processor_event_id"`
	EventType        string `gorm:"size:60" json:"event_type"`
	RawPayload       string `gorm:"type:text;not null" json:"raw_payload"`
	SignatureValid   bool   `gorm:"not null" json:"signature_valid"`
	Outcome          string `gorm:"size:20;not null;index" json:"outcome"`
	ReceiveTime      int64  `gorm:"not null" json:"receive_time"`
	ProcessTime      int64  `json:"process_time"`
}
