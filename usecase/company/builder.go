package company

import (
	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
)

type CompanyUsecase interface {
	CreateCompany(name, processorKey string) (model.Company, error)
	GetCompany(guid string) (model.Company, error)
	RotateCallbackKey(guid string) (model.Company, error)
}

type companyUsecase struct {
	db  *gorm.DB
	dao dao.DaoMethod
}

func NewCompanyUsecase(db *gorm.DB) CompanyUsecase {
	return &companyUsecase{
		db:  db,
		dao: dao.NewDaoMethod(db),
	}
}
