package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/processor"
	"github.com/billyproject/billy/utils"
)

// Charge creates a pending transaction and submits it to the processor. The
// idempotency key is fixed at creation; if submission fails transiently the
// row stays pending and SubmitTransaction retries with the same key, so the
// processor never double-charges.
func (u *billingUsecase) Charge(ctx context.Context, req entity.CreateChargeRequest) (model.Transaction, error) {
	if err := validateChargeRequest(req); err != nil {
		return model.Transaction{}, err
	}

	company, err := u.dao.GetCompanyByGUID(req.CompanyGUID)
	if err != nil {
		return model.Transaction{}, err
	}

	timeNowUnix := time.Now().Unix()
	transaction := model.Transaction{
		GUID:                 utils.GUID(utils.PrefixTransaction),
		CompanyGUID:          company.GUID,
		Kind:                 consts.KindCharge,
		Amount:               req.Amount,
		Currency:             req.Currency,
		FundingInstrumentURI: req.FundingInstrumentURI,
		IdempotencyKey:       utils.SecretKey(),
		Status:               consts.StatusPending,
		CreateTime:           timeNowUnix,
		UpdateTime:           timeNowUnix,
	}
	if err := u.dao.CreateTransaction(&transaction); err != nil {
		return model.Transaction{}, err
	}

	return u.submit(ctx, company, transaction)
}

// SubmitTransaction retries submission of a pending transaction, reusing its
// original idempotency key.
func (u *billingUsecase) SubmitTransaction(ctx context.Context, guid string) (model.Transaction, error) {
	transaction, err := u.dao.GetTransactionByGUID(guid)
	if err != nil {
		return model.Transaction{}, err
	}
	if transaction.Status != consts.StatusPending {
		return transaction, fmt.Errorf("transaction %s is %s, not pending", guid, transaction.Status)
	}

	company, err := u.dao.GetCompanyByGUID(transaction.CompanyGUID)
	if err != nil {
		return model.Transaction{}, err
	}

	return u.submit(ctx, company, transaction)
}

func (u *billingUsecase) submit(ctx context.Context, company model.Company, transaction model.Transaction) (model.Transaction, error) {
	log.Infof("[Charge] Submitting transaction guid=%s idempotency_key=%s", transaction.GUID, transaction.IdempotencyKey)

	result, err := u.proc.Charge(ctx, company.ProcessorKey, processor.ChargeRequest{
		Amount:               transaction.Amount,
		Currency:             transaction.Currency,
		FundingInstrumentURI: transaction.FundingInstrumentURI,
		IdempotencyKey:       transaction.IdempotencyKey,
	})
	switch {
	case errors.Is(err, processor.ErrProcessorUnavailable):
		// The charge may have gone through remotely. Keep the row pending
		// with its key so a retry cannot double-charge.
		log.Warnf("[Charge] Processor unavailable for guid=%s: %v", transaction.GUID, err)
		return transaction, err
	case errors.Is(err, processor.ErrProcessorRejected):
		log.Infof("[Charge] Declined guid=%s: %v", transaction.GUID, err)
		transaction.Status = consts.StatusFailed
		transaction.Version++
		transaction.UpdateTime = time.Now().Unix()
		if updateErr := u.dao.UpdateTransaction(transaction); updateErr != nil {
			return transaction, updateErr
		}
		return transaction, err
	case err != nil:
		return transaction, err
	}

	// External reference is immutable once set.
	transaction.ExternalRef = result.ExternalRef
	transaction.Status = result.Status
	transaction.Version++
	transaction.UpdateTime = time.Now().Unix()
	if err := u.dao.UpdateTransaction(transaction); err != nil {
		return transaction, err
	}

	log.Infof("[Charge] Submitted guid=%s ref=%s status=%s", transaction.GUID, transaction.ExternalRef, transaction.Status)
	return transaction, nil
}

func validateChargeRequest(req entity.CreateChargeRequest) error {
	if req.CompanyGUID == "" {
		return errors.New("company guid is required")
	}
	if !req.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if len(req.Currency) != 3 {
		return errors.New("currency must be a 3-letter code")
	}
	if req.FundingInstrumentURI == "" {
		return errors.New("funding instrument uri is required")
	}
	return nil
}
