package reconcile

import (
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
)

const maxApplyAttempts = 3

// applyEvent runs the per-transaction state machine for one verified,
// deduplicated event and returns the event's terminal outcome.
func (u *reconcileUsecase) applyEvent(companyGUID string, event model.CallbackEvent, normalized entity.ProcessorEvent) (string, error) {
	transaction, err := u.dao.GetTransactionByExternalRef(companyGUID, normalized.ExternalRef)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			log.Warnf("[Reconcile] No transaction for ref=%s event=%s", normalized.ExternalRef, event.GUID)
			return consts.OutcomeRejected, u.dao.SetCallbackEventOutcome(event.GUID, consts.OutcomeRejected)
		}
		return "", err
	}

	u.locker.Acquire(transaction.GUID)
	defer u.locker.Release(transaction.GUID)

	return u.applyLocked(transaction, event, normalized)
}

// applyLocked runs the transition loop. Caller holds the transaction lock.
func (u *reconcileUsecase) applyLocked(transaction model.Transaction, event model.CallbackEvent, normalized entity.ProcessorEvent) (string, error) {
	var err error
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		transaction, err = u.dao.GetTransactionByGUID(transaction.GUID)
		if err != nil {
			return "", err
		}

		reversal := consts.ReversalEventTypes[normalized.EventType]

		// Events whose processor sequence predates the last applied one are
		// stale redeliveries of already-superseded state, unless a reversal.
		if normalized.Sequence < transaction.LastAppliedSequence && !reversal {
			log.Infof("[Reconcile] Stale event=%s seq=%d < applied=%d for guid=%s",
				event.GUID, normalized.Sequence, transaction.LastAppliedSequence, transaction.GUID)
			return consts.OutcomeRejected, u.dao.SetCallbackEventOutcome(event.GUID, consts.OutcomeRejected)
		}

		toStatus, conflictNote, ok := nextStatus(transaction.Status, normalized, reversal)
		if !ok {
			log.Warnf("[Reconcile] Unmappable event=%s type=%s status=%s", event.GUID, normalized.EventType, normalized.Status)
			return consts.OutcomeRejected, u.dao.SetCallbackEventOutcome(event.GUID, consts.OutcomeRejected)
		}

		appliedSequence := normalized.Sequence
		if appliedSequence < transaction.LastAppliedSequence {
			appliedSequence = transaction.LastAppliedSequence
		}

		applied, err := u.dao.ApplyEvent(dao.ApplyEventParams{
			EventGUID:       event.GUID,
			TransactionGUID: transaction.GUID,
			ExpectedVersion: transaction.Version,
			FromStatus:      transaction.Status,
			ToStatus:        toStatus,
			AppliedSequence: appliedSequence,
			ConflictNote:    conflictNote,
		})
		if errors.Is(err, dao.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		if !applied {
			// Witness exists: this event was applied before. No-op.
			log.Infof("[Reconcile] Event %s already applied to guid=%s", event.GUID, transaction.GUID)
			return consts.OutcomeApplied, nil
		}

		if conflictNote != "" {
			log.Warnf("[Reconcile] Conflict flagged guid=%s event=%s: %s", transaction.GUID, event.GUID, conflictNote)
		} else {
			log.Infof("[Reconcile] Applied event=%s guid=%s %s -> %s", event.GUID, transaction.GUID, transaction.Status, toStatus)
		}
		return consts.OutcomeApplied, nil
	}

	return "", fmt.Errorf("gave up applying event %s after %d version conflicts", event.GUID, maxApplyAttempts)
}

// nextStatus decides the transition for an event against the current status.
// A transition out of succeeded requires an explicit reversal event type; a
// generic failure against a succeeded transaction is a conflict parked in
// reconciling for manual review rather than an automatic downgrade.
func nextStatus(current string, normalized entity.ProcessorEvent, reversal bool) (string, string, bool) {
	mapped, ok := statusForEvent(normalized.EventType, normalized.Status)
	if !ok {
		return "", "", false
	}

	switch current {
	case consts.StatusPending, consts.StatusSubmitted:
		return mapped, "", true

	case consts.StatusSucceeded:
		if reversal {
			return consts.StatusFailed, "", true
		}
		if mapped == consts.StatusFailed {
			note := fmt.Sprintf("event %s reported %s against succeeded transaction without a reversal type",
				normalized.EventID, normalized.Status)
			return consts.StatusReconciling, note, true
		}
		return consts.StatusSucceeded, "", true

	case consts.StatusFailed:
		if mapped == consts.StatusSucceeded && !reversal {
			// Later event wins over a failed terminal state.
			return consts.StatusSucceeded, "", true
		}
		return consts.StatusFailed, "", true

	case consts.StatusReconciling:
		if reversal {
			return consts.StatusFailed, "", true
		}
		return consts.StatusReconciling, "", true
	}

	return "", "", false
}

// statusForEvent maps an event to a transaction status, preferring the event
// type over the entity status carried alongside it.
func statusForEvent(eventType, entityStatus string) (string, bool) {
	switch eventType {
	case consts.EventDebitSucceeded:
		return consts.StatusSucceeded, true
	case consts.EventDebitFailed:
		return consts.StatusFailed, true
	case consts.EventDebitReversed, consts.EventCreditReversed:
		return consts.StatusFailed, true
	}

	switch entityStatus {
	case "succeeded", "paid":
		return consts.StatusSucceeded, true
	case "failed", "reversed":
		return consts.StatusFailed, true
	case "pending":
		return consts.StatusSubmitted, true
	}
	return "", false
}
