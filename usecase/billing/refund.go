package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/utils"
)

// Refund submits a refund against a previously charged transaction. The
// processor is consulted first; an unknown external reference fails with the
// processor's NotFound and persists nothing.
func (u *billingUsecase) Refund(ctx context.Context, transactionGUID string, amount decimal.Decimal) (model.Transaction, error) {
	if !amount.IsPositive() {
		return model.Transaction{}, errors.New("refund amount must be positive")
	}

	original, err := u.dao.GetTransactionByGUID(transactionGUID)
	if err != nil {
		return model.Transaction{}, err
	}
	if original.ExternalRef == "" {
		return model.Transaction{}, fmt.Errorf("transaction %s has no external reference yet", transactionGUID)
	}

	company, err := u.dao.GetCompanyByGUID(original.CompanyGUID)
	if err != nil {
		return model.Transaction{}, err
	}

	log.Infof("[Refund] Submitting refund for guid=%s ref=%s amount=%s",
		original.GUID, original.ExternalRef, amount.String())

	result, err := u.proc.Refund(ctx, company.ProcessorKey, original.ExternalRef, amount)
	if err != nil {
		log.Warnf("[Refund] Processor refused refund for guid=%s: %v", original.GUID, err)
		return model.Transaction{}, err
	}

	// The refund gets its own external reference so its callbacks can find
	// it, the same way a charge's do.
	timeNowUnix := time.Now().Unix()
	refund := model.Transaction{
		GUID:           utils.GUID(utils.PrefixTransaction),
		CompanyGUID:    company.GUID,
		Kind:           consts.KindRefund,
		Amount:         amount,
		Currency:       original.Currency,
		IdempotencyKey: utils.SecretKey(),
		ExternalRef:    result.ExternalRef,
		RefundedRef:    original.ExternalRef,
		Status:         result.Status,
		CreateTime:     timeNowUnix,
		UpdateTime:     timeNowUnix,
	}
	if err := u.dao.CreateTransaction(&refund); err != nil {
		return model.Transaction{}, err
	}

	log.Infof("[Refund] Created refund guid=%s status=%s", refund.GUID, refund.Status)
	return refund, nil
}

func (u *billingUsecase) GetTransaction(guid string) (model.Transaction, []model.ReconciliationRecord, error) {
	transaction, err := u.dao.GetTransactionByGUID(guid)
	if err != nil {
		return model.Transaction{}, nil, err
	}
	records, err := u.dao.GetReconciliationRecordsByTransactionGUID(guid)
	if err != nil {
		return model.Transaction{}, nil, err
	}
	return transaction, records, nil
}
