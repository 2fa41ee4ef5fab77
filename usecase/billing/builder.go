package billing

import (
	"context"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/processor"
)

type BillingUsecase interface {
	Charge(ctx context.Context, req entity.CreateChargeRequest) (model.Transaction, error)
	SubmitTransaction(ctx context.Context, guid string) (model.Transaction, error)
	Refund(ctx context.Context, transactionGUID string, amount decimal.Decimal) (model.Transaction, error)
	GetTransaction(guid string) (model.Transaction, []model.ReconciliationRecord, error)
}

type billingUsecase struct {
	db   *gorm.DB
	dao  dao.DaoMethod
	proc processor.Processor
}

func NewBillingUsecase(db *gorm.DB, proc processor.Processor) BillingUsecase {
	return &billingUsecase{
		db:   db,
		dao:  dao.NewDaoMethod(db),
		proc: proc,
	}
}
