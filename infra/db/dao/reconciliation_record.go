package dao

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/infra/db/model"
)

func (d *dao) GetReconciliationRecordByEventGUID(eventGUID string) (model.ReconciliationRecord, error) {
	var record model.ReconciliationRecord
	if err := d.db.Where("event_guid = ?", eventGUID).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return record, fmt.Errorf("record for event %s: %w", eventGUID, ErrNotFound)
		}
		return record, fmt.Errorf("failed to fetch reconciliation record: %w", err)
	}
	return record, nil
}

func (d *dao) GetReconciliationRecordsByTransactionGUID(transactionGUID string) ([]model.ReconciliationRecord, error) {
	var records []model.ReconciliationRecord
	err := d.db.
		Where("transaction_guid = ?", transactionGUID).
		Order("create_time ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reconciliation records: %w", err)
	}
	return records, nil
}
