package plan

import (
	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
)

type PlanUsecase interface {
	CreatePlan(companyGUID string, req entity.CreatePlanRequest) (model.PayoutPlan, error)
	GetPlan(guid string) (model.PayoutPlan, error)
	ListPlans(companyGUID string) ([]model.PayoutPlan, error)
	UpdatePlan(guid, name string) (model.PayoutPlan, error)
	DisablePlan(guid string) (model.PayoutPlan, error)
}

type planUsecase struct {
	db  *gorm.DB
	dao dao.DaoMethod
}

func NewPlanUsecase(db *gorm.DB) PlanUsecase {
	return &planUsecase{
		db:  db,
		dao: dao.NewDaoMethod(db),
	}
}
