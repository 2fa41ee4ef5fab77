package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/processor"
	"github.com/billyproject/billy/utils"
)

// PollOnce recovers transactions the callback flow left behind. Pending rows
// past the configured age are resubmitted with their stored idempotency key;
// submitted rows are checked against the processor with QueryStatus and
// settled through the same engine path a callback would take. Returns the
// number of transactions moved forward.
func (u *reconcileUsecase) PollOnce(ctx context.Context) (int, error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[PollJob] Panic recovered: %v", r)
		}
	}()

	cutoff := time.Now().Unix() - int64(u.pollMinAgeSec)
	moved := 0

	pending, err := u.dao.GetStalePendingTransactions(cutoff, u.pollBatchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) > 0 {
		log.Infof("[PollJob] Resubmitting %d stale pending transactions", len(pending))
	}
	for _, transaction := range pending {
		if !u.locker.TryAcquire(transaction.GUID) {
			continue
		}
		resubmitted, err := u.resubmitTransaction(ctx, transaction)
		u.locker.Release(transaction.GUID)
		if err != nil {
			log.Errorf("[PollJob] Failed to resubmit guid=%s: %v", transaction.GUID, err)
			continue
		}
		if resubmitted {
			moved++
		}
	}

	stale, err := u.dao.GetStaleSubmittedTransactions(cutoff, u.pollBatchSize)
	if err != nil {
		return moved, err
	}
	if len(stale) == 0 {
		return moved, nil
	}

	log.Infof("[PollJob] Checking %d stale submitted transactions", len(stale))

	settled := 0
	for _, transaction := range stale {
		if !u.locker.TryAcquire(transaction.GUID) {
			continue
		}
		applied, err := u.pollTransaction(ctx, transaction)
		u.locker.Release(transaction.GUID)
		if err != nil {
			log.Errorf("[PollJob] Failed to poll guid=%s: %v", transaction.GUID, err)
			continue
		}
		if applied {
			settled++
		}
	}

	log.Infof("[PollJob] Settled %d of %d transactions", settled, len(stale))
	return moved + settled, nil
}

// resubmitTransaction retries a charge that never reached the processor,
// reusing the idempotency key fixed at row creation so the remote side
// cannot double-execute. Caller holds the transaction lock.
func (u *reconcileUsecase) resubmitTransaction(ctx context.Context, transaction model.Transaction) (bool, error) {
	company, err := u.dao.GetCompanyByGUID(transaction.CompanyGUID)
	if err != nil {
		return false, err
	}

	result, err := u.proc.Charge(ctx, company.ProcessorKey, processor.ChargeRequest{
		Amount:               transaction.Amount,
		Currency:             transaction.Currency,
		FundingInstrumentURI: transaction.FundingInstrumentURI,
		IdempotencyKey:       transaction.IdempotencyKey,
	})
	switch {
	case errors.Is(err, processor.ErrProcessorUnavailable):
		// Still unreachable; the row stays pending for the next pass.
		return false, nil
	case errors.Is(err, processor.ErrProcessorRejected):
		transaction.Status = consts.StatusFailed
	case err != nil:
		return false, err
	default:
		transaction.ExternalRef = result.ExternalRef
		transaction.Status = result.Status
	}

	transaction.Version++
	transaction.UpdateTime = time.Now().Unix()
	if err := u.dao.UpdateTransaction(transaction); err != nil {
		return false, err
	}

	log.Infof("[PollJob] Resubmitted guid=%s ref=%s status=%s",
		transaction.GUID, transaction.ExternalRef, transaction.Status)
	return true, nil
}

// pollTransaction queries the processor and, when the remote status
// disagrees with ours, synthesizes a normalized event through the standard
// apply path so the witness and sequence guards still hold. Caller holds the
// transaction lock.
func (u *reconcileUsecase) pollTransaction(ctx context.Context, transaction model.Transaction) (bool, error) {
	company, err := u.dao.GetCompanyByGUID(transaction.CompanyGUID)
	if err != nil {
		return false, err
	}

	result, err := u.proc.QueryStatus(ctx, company.ProcessorKey, transaction.ExternalRef)
	if err != nil {
		return false, err
	}
	if result.Status == consts.StatusSubmitted {
		return false, nil
	}

	var eventType string
	switch result.Status {
	case consts.StatusSucceeded:
		eventType = consts.EventDebitSucceeded
	case consts.StatusFailed:
		eventType = consts.EventDebitFailed
	default:
		return false, nil
	}

	sequence := result.Sequence
	if sequence <= transaction.LastAppliedSequence {
		sequence = transaction.LastAppliedSequence + 1
	}

	normalized := entity.ProcessorEvent{
		EventID:     fmt.Sprintf("poll:%s:%s:%d", transaction.GUID, result.Status, result.Sequence),
		EventType:   eventType,
		ExternalRef: transaction.ExternalRef,
		Status:      result.Status,
		Sequence:    sequence,
		OccurredAt:  time.Now().UTC(),
	}

	rawPayload, err := json.Marshal(normalized)
	if err != nil {
		return false, err
	}

	event := model.CallbackEvent{
		GUID:             utils.GUID(utils.PrefixCallbackEvent),
		CompanyGUID:      company.GUID,
		Processor:        u.processorName,
		ProcessorEventID: normalized.EventID,
		EventType:        eventType,
		RawPayload:       string(rawPayload),
		SignatureValid:   true,
		Outcome:          consts.OutcomeReceived,
		ReceiveTime:      time.Now().Unix(),
	}
	if err := u.dao.CreateCallbackEvent(&event); err != nil {
		if errors.Is(err, dao.ErrDuplicateEvent) {
			return false, nil
		}
		return false, err
	}

	outcome, err := u.applyLocked(transaction, event, normalized)
	if err != nil {
		return false, err
	}
	event.Outcome = outcome
	u.archiveEvent(event)

	log.Infof("[PollJob] Settled guid=%s to %s via query_status", transaction.GUID, result.Status)
	return outcome == consts.OutcomeApplied, nil
}
