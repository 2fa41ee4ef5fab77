package dao

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/infra/db/model"
)

func (d *dao) CreateTransaction(payload *model.Transaction) error {
	if err := d.db.Create(payload).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %v", err)
	}
	return nil
}

func (d *dao) GetTransactionByGUID(guid string) (model.Transaction, error) {
	var transaction model.Transaction
	if err := d.db.Where("guid = ?", guid).First(&transaction).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return transaction, fmt.Errorf("transaction %s: %w", guid, ErrNotFound)
		}
		return transaction, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return transaction, nil
}

func (d *dao) GetTransactionByExternalRef(companyGUID, externalRef string) (model.Transaction, error) {
	var transaction model.Transaction
	err := d.db.
		Where("company_guid = ? AND external_ref = ?", companyGUID, externalRef).
		First(&transaction).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return transaction, fmt.Errorf("transaction ref %s: %w", externalRef, ErrNotFound)
		}
		return transaction, fmt.Errorf("failed to fetch transaction by ref: %w", err)
	}
	return transaction, nil
}

func (d *dao) UpdateTransaction(transaction model.Transaction) error {
	if err := d.db.Save(&transaction).Error; err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// GetStaleSubmittedTransactions lists submitted transactions untouched since
// the cutoff. Rows without an external reference are skipped: the processor
// cannot be queried about an operation it never acknowledged.
func (d *dao) GetStaleSubmittedTransactions(olderThanUnix int64, limit int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := d.db.
		Where("status = ? AND update_time <= ? AND external_ref <> ''", consts.StatusSubmitted, olderThanUnix).
		Order("update_time ASC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stale transactions: %w", err)
	}
	return transactions, nil
}

// GetStalePendingTransactions lists pending transactions untouched since the
// cutoff, candidates for resubmission with their stored idempotency key.
func (d *dao) GetStalePendingTransactions(olderThanUnix int64, limit int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := d.db.
		Where("status = ? AND update_time <= ?", consts.StatusPending, olderThanUnix).
		Order("update_time ASC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stale pending transactions: %w", err)
	}
	return transactions, nil
}
