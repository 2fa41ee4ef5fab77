package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/utils"
)

// IngestCallback is the single entry point for processor notifications.
// Verification comes first: an unauthenticated payload is recorded and
// refused before any parsing or state mutation. Verified payloads are
// deduplicated on (processor, processor event id) and handed to the engine.
func (u *reconcileUsecase) IngestCallback(ctx context.Context, companyGUID string, rawPayload []byte, signature string) (model.CallbackEvent, error) {
	company, err := u.dao.GetCompanyByGUID(companyGUID)
	if err != nil {
		return model.CallbackEvent{}, err
	}

	if !u.proc.VerifyCallback(rawPayload, signature, company.CallbackKey) {
		log.Warnf("[Ingest] Verification failed for company=%s", company.GUID)
		event := u.storeSideEvent(company.GUID, rawPayload, "", false, consts.OutcomeUnverified)
		return event, ErrVerificationFailed
	}

	var payload entity.CallbackPayload
	if err := json.Unmarshal(rawPayload, &payload); err != nil || payload.ID == "" || payload.Entity.Reference == "" {
		log.Warnf("[Ingest] Malformed payload for company=%s: %v", company.GUID, err)
		event := u.storeSideEvent(company.GUID, rawPayload, "", true, consts.OutcomeRejected)
		return event, nil
	}

	// Primary duplicate guard: the authentic event id is stored once.
	if _, lookupErr := u.dao.GetCallbackEventByProcessorID(u.processorName, payload.ID); lookupErr == nil {
		log.Infof("[Ingest] Duplicate delivery event_id=%s company=%s", payload.ID, company.GUID)
		event := u.storeSideEvent(company.GUID, rawPayload, payload.Type, true, consts.OutcomeDuplicate)
		return event, nil
	}

	event := model.CallbackEvent{
		GUID:             utils.GUID(utils.PrefixCallbackEvent),
		CompanyGUID:      company.GUID,
		Processor:        u.processorName,
		ProcessorEventID: payload.ID,
		EventType:        payload.Type,
		RawPayload:       string(rawPayload),
		SignatureValid:   true,
		Outcome:          consts.OutcomeReceived,
		ReceiveTime:      time.Now().Unix(),
	}
	if err := u.dao.CreateCallbackEvent(&event); err != nil {
		if errors.Is(err, dao.ErrDuplicateEvent) {
			// Lost the insert race against a concurrent delivery of the
			// same event: exactly one of the two proceeds to the engine.
			log.Infof("[Ingest] Concurrent duplicate event_id=%s company=%s", payload.ID, company.GUID)
			side := u.storeSideEvent(company.GUID, rawPayload, payload.Type, true, consts.OutcomeDuplicate)
			return side, nil
		}
		return model.CallbackEvent{}, err
	}

	normalized := entity.ProcessorEvent{
		EventID:     payload.ID,
		EventType:   payload.Type,
		ExternalRef: payload.Entity.Reference,
		Status:      payload.Entity.Status,
		Sequence:    payload.Entity.Sequence,
		OccurredAt:  payload.OccurredAt,
	}

	outcome, err := u.applyEvent(company.GUID, event, normalized)
	if err != nil {
		return event, err
	}
	event.Outcome = outcome

	u.archiveEvent(event)
	return event, nil
}

// storeSideEvent records a delivery that never reaches the engine
// (unverified, malformed, or duplicate). These rows are keyed under their own
// GUID in the dedup namespace so they cannot collide with the authentic
// event's row.
func (u *reconcileUsecase) storeSideEvent(companyGUID string, rawPayload []byte, eventType string, signatureValid bool, outcome string) model.CallbackEvent {
	timeNowUnix := time.Now().Unix()
	event := model.CallbackEvent{
		GUID:           utils.GUID(utils.PrefixCallbackEvent),
		CompanyGUID:    companyGUID,
		Processor:      u.processorName,
		EventType:      eventType,
		RawPayload:     string(rawPayload),
		SignatureValid: signatureValid,
		Outcome:        outcome,
		ReceiveTime:    timeNowUnix,
		ProcessTime:    timeNowUnix,
	}
	event.ProcessorEventID = event.GUID

	if err := u.dao.CreateCallbackEvent(&event); err != nil {
		log.Errorf("[Ingest] Failed to store %s event: %v", outcome, err)
	}
	u.archiveEvent(event)
	return event
}

func (u *reconcileUsecase) archiveEvent(event model.CallbackEvent) {
	if u.archive == nil {
		return
	}
	if err := u.archive.Put(event); err != nil {
		log.Errorf("[Ingest] Failed to archive event %s: %v", event.GUID, err)
	}
}
