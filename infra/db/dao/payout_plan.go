package dao

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/infra/db/model"
)

// CreatePayoutPlan inserts a plan. The unique index on
// (company_guid, external_id) rejects a second plan under the same external
// identifier; that comes back as ErrDuplicatePlan.
func (d *dao) CreatePayoutPlan(payload *model.PayoutPlan) error {
	if err := d.db.Create(payload).Error; err != nil {
		if _, lookupErr := d.GetPayoutPlanByExternalID(payload.CompanyGUID, payload.ExternalID); lookupErr == nil {
			return ErrDuplicatePlan
		}
		return fmt.Errorf("failed to create payout plan: %v", err)
	}
	return nil
}

func (d *dao) GetPayoutPlanByGUID(guid string) (model.PayoutPlan, error) {
	var plan model.PayoutPlan
	if err := d.db.Where("guid = ?", guid).First(&plan).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return plan, fmt.Errorf("payout plan %s: %w", guid, ErrNotFound)
		}
		return plan, fmt.Errorf("failed to fetch payout plan: %w", err)
	}
	return plan, nil
}

func (d *dao) GetPayoutPlanByExternalID(companyGUID, externalID string) (model.PayoutPlan, error) {
	var plan model.PayoutPlan
	err := d.db.
		Where("company_guid = ? AND external_id = ?", companyGUID, externalID).
		First(&plan).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return plan, fmt.Errorf("payout plan %s/%s: %w", companyGUID, externalID, ErrNotFound)
		}
		return plan, fmt.Errorf("failed to fetch payout plan: %w", err)
	}
	return plan, nil
}

func (d *dao) GetPayoutPlansByCompanyGUID(companyGUID string) ([]model.PayoutPlan, error) {
	var plans []model.PayoutPlan
	err := d.db.
		Where("company_guid = ?", companyGUID).
		Order("create_time ASC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payout plans: %w", err)
	}
	return plans, nil
}

func (d *dao) UpdatePayoutPlan(plan model.PayoutPlan) error {
	if err := d.db.Save(&plan).Error; err != nil {
		return fmt.Errorf("failed to update payout plan: %w", err)
	}
	return nil
}
