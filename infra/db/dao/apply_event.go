package dao

import (
	"fmt"
	"time"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/utils"
)

// ApplyEventParams describes one state transition decided by the
// reconciliation engine. ExpectedVersion pins the transaction row the
// decision was made against.
type ApplyEventParams struct {
	EventGUID       string
	TransactionGUID string
	ExpectedVersion int64
	FromStatus      string
	ToStatus        string
	AppliedSequence int64
	ConflictNote    string
}

// ApplyEvent executes the witness-check / transition / witness-write sequence
// inside a single database transaction. Returns false without touching
// anything when a reconciliation record for the event already exists, so
// re-running the engine on the same event is a no-op. A lost version race
// rolls back and returns ErrVersionConflict.
func (d *dao) ApplyEvent(params ApplyEventParams) (bool, error) {
	tx := d.db.Begin()
	if tx.Error != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var existing model.ReconciliationRecord
	if err := tx.Where("event_guid = ?", params.EventGUID).First(&existing).Error; err == nil {
		tx.Rollback()
		return false, nil
	}

	timeNowUnix := time.Now().Unix()

	res := tx.Model(&model.Transaction{}).
		Where("guid = ? AND version = ?", params.TransactionGUID, params.ExpectedVersion).
		Updates(map[string]interface{}{
			"status":                params.ToStatus,
			"last_applied_sequence": params.AppliedSequence,
			"conflict_note":         params.ConflictNote,
			"version":               params.ExpectedVersion + 1,
			"update_time":           timeNowUnix,
		})
	if res.Error != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return false, ErrVersionConflict
	}

	record := model.ReconciliationRecord{
		GUID:            utils.GUID(utils.PrefixReconciliationRecord),
		EventGUID:       params.EventGUID,
		TransactionGUID: params.TransactionGUID,
		FromStatus:      params.FromStatus,
		ToStatus:        params.ToStatus,
		AppliedSequence: params.AppliedSequence,
		CreateTime:      timeNowUnix,
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to create reconciliation record: %w", err)
	}

	err := tx.Model(&model.CallbackEvent{}).
		Where("guid = ?", params.EventGUID).
		Updates(map[string]interface{}{
			"outcome":      consts.OutcomeApplied,
			"process_time": timeNowUnix,
		}).Error
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to set event outcome: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("failed to commit event application: %w", err)
	}
	return true, nil
}
