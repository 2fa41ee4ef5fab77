package consts

// Transaction statuses
const (
	StatusPending     = "pending"
	StatusSubmitted   = "submitted"
	StatusSucceeded   = "succeeded"
	StatusFailed      = "failed"
	StatusReconciling = "reconciling"
)

// Transaction kinds
const (
	KindCharge = "charge"
	KindRefund = "refund"
)

// Callback event processing outcomes. Received is the only non-terminal
// one: it marks an authentic event stored but not yet run through the
// engine.
const (
	OutcomeReceived   = "received"
	OutcomeUnverified = "unverified"
	OutcomeDuplicate  = "duplicate"
	OutcomeApplied    = "applied"
	OutcomeRejected   = "rejected"
)

// Processor event types
const (
	EventDebitSucceeded = "debit.succeeded"
	EventDebitFailed    = "debit.failed"
	EventDebitReversed  = "debit.reversed"
	EventCreditReversed = "credit.reversed"
)

// Default config
const (
	DefaultProcessorTimeoutInSec = 10
	DefaultPollIntervalInSec     = 2
	DefaultPollMinAgeInSec       = 60
	DefaultWorkerNumber          = 1
	DefaultPollBatchSize         = 50
)

// ReversalEventTypes are the event types allowed to move a transaction out
// of a terminal succeeded status.
var ReversalEventTypes = map[string]bool{
	EventDebitReversed:  true,
	EventCreditReversed: true,
}
