package dao

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/infra/db/model"
)

func (d *dao) CreateCompany(payload *model.Company) error {
	if err := d.db.Create(payload).Error; err != nil {
		return fmt.Errorf("failed to create company: %v", err)
	}
	return nil
}

func (d *dao) GetCompanyByGUID(guid string) (model.Company, error) {
	var company model.Company
	if err := d.db.Where("guid = ?", guid).First(&company).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return company, fmt.Errorf("company %s: %w", guid, ErrNotFound)
		}
		return company, fmt.Errorf("failed to fetch company: %w", err)
	}
	return company, nil
}

func (d *dao) UpdateCompany(company model.Company) error {
	if err := d.db.Save(&company).Error; err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}
