package processor

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Error taxonomy shared by every backend. Callers classify with errors.Is.
var (
	// ErrProcessorUnavailable is a transport-level failure or timeout. The
	// operation may have succeeded remotely; callers must follow up with
	// QueryStatus instead of retrying blindly.
	ErrProcessorUnavailable = errors.New("processor unavailable")

	// ErrProcessorRejected is a terminal business decline.
	ErrProcessorRejected = errors.New("processor rejected")

	// ErrNotFound means the external reference is unknown to the processor.
	ErrNotFound = errors.New("external reference not found")

	// ErrUnknownProcessor is a configuration error: the configured processor
	// name matches no registered backend. Fatal at startup.
	ErrUnknownProcessor = errors.New("unknown processor")
)

// ChargeRequest carries everything a backend needs to submit a charge.
// IdempotencyKey must be supplied; backends submit it with the request so a
// retried charge is not double-executed remotely.
type ChargeRequest struct {
	Amount               decimal.Decimal
	Currency             string
	FundingInstrumentURI string
	IdempotencyKey       string
}

type ChargeResult struct {
	ExternalRef string
	Status      string
}

// RefundResult carries the refund's own external reference; refunds are
// operations in their own right and reconcile through callbacks keyed on
// that reference, like charges.
type RefundResult struct {
	ExternalRef string
	Status      string
}

// StatusResult is a point-in-time processor-side view of an operation.
// Sequence is the processor's ordering number for the latest change.
type StatusResult struct {
	Status   string
	Sequence int64
}

// Processor is the capability contract every payment backend implements.
// Implementations hold no per-request state and are safe for concurrent use.
type Processor interface {
	Charge(ctx context.Context, processorKey string, req ChargeRequest) (ChargeResult, error)
	Refund(ctx context.Context, processorKey, externalRef string, amount decimal.Decimal) (RefundResult, error)
	QueryStatus(ctx context.Context, processorKey, externalRef string) (StatusResult, error)

	// VerifyCallback authenticates a raw callback payload against the
	// company's callback key. Pure function: no I/O, returns false (never
	// panics or errors) on malformed input.
	VerifyCallback(payload []byte, signature, callbackKey string) bool
}

// Config is the deployment configuration handed to a backend builder.
type Config struct {
	APIBase string
	Timeout time.Duration
}
