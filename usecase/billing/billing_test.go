package billing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/processor"
	"github.com/billyproject/billy/utils"
)

type scriptedProcessor struct {
	chargeResult processor.ChargeResult
	chargeErr    error
	chargeCalls  []processor.ChargeRequest
	refundResult processor.RefundResult
	refundErr    error
}

func (s *scriptedProcessor) Charge(ctx context.Context, processorKey string, req processor.ChargeRequest) (processor.ChargeResult, error) {
	s.chargeCalls = append(s.chargeCalls, req)
	return s.chargeResult, s.chargeErr
}

func (s *scriptedProcessor) Refund(ctx context.Context, processorKey, externalRef string, amount decimal.Decimal) (processor.RefundResult, error) {
	return s.refundResult, s.refundErr
}

func (s *scriptedProcessor) QueryStatus(ctx context.Context, processorKey, externalRef string) (processor.StatusResult, error) {
	return processor.StatusResult{}, nil
}

func (s *scriptedProcessor) VerifyCallback(payload []byte, signature, callbackKey string) bool {
	return false
}

func setup(t *testing.T, proc processor.Processor) (BillingUsecase, *gorm.DB, model.Company) {
	t.Helper()
	db, err := gorm.Open("sqlite3", filepath.Join(t.TempDir(), "billy_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Company{},
		&model.Transaction{},
		&model.CallbackEvent{},
		&model.ReconciliationRecord{},
	).Error)

	d := dao.NewDaoMethod(db)
	now := time.Now().Unix()
	company := model.Company{
		GUID:         utils.GUID(utils.PrefixCompany),
		Name:         "Acme",
		ProcessorKey: "sk_test",
		CallbackKey:  "cb_secret",
		CreateTime:   now,
		UpdateTime:   now,
	}
	require.NoError(t, d.CreateCompany(&company))

	return NewBillingUsecase(db, proc), db, company
}

func chargeRequest(companyGUID string) entity.CreateChargeRequest {
	return entity.CreateChargeRequest{
		CompanyGUID:          companyGUID,
		Amount:               decimal.RequireFromString("10.50"),
		Currency:             "USD",
		FundingInstrumentURI: "/v1/cards/CC1",
	}
}

func TestCharge_Submitted(t *testing.T) {
	proc := &scriptedProcessor{
		chargeResult: processor.ChargeResult{ExternalRef: "ref-1", Status: consts.StatusSubmitted},
	}
	uc, db, company := setup(t, proc)
	d := dao.NewDaoMethod(db)

	transaction, err := uc.Charge(context.Background(), chargeRequest(company.GUID))
	require.NoError(t, err)
	assert.Equal(t, consts.StatusSubmitted, transaction.Status)
	assert.Equal(t, "ref-1", transaction.ExternalRef)
	assert.NotEmpty(t, transaction.IdempotencyKey)

	require.Len(t, proc.chargeCalls, 1)
	assert.Equal(t, transaction.IdempotencyKey, proc.chargeCalls[0].IdempotencyKey)

	got, err := d.GetTransactionByGUID(transaction.GUID)
	require.NoError(t, err)
	assert.Equal(t, consts.StatusSubmitted, got.Status)
}

func TestCharge_UnavailableLeavesPendingAndRetryReusesKey(t *testing.T) {
	proc := &scriptedProcessor{chargeErr: processor.ErrProcessorUnavailable}
	uc, db, company := setup(t, proc)
	d := dao.NewDaoMethod(db)

	transaction, err := uc.Charge(context.Background(), chargeRequest(company.GUID))
	assert.ErrorIs(t, err, processor.ErrProcessorUnavailable)

	got, err := d.GetTransactionByGUID(transaction.GUID)
	require.NoError(t, err)
	assert.Equal(t, consts.StatusPending, got.Status)

	// Retry submits with the original idempotency key.
	proc.chargeErr = nil
	proc.chargeResult = processor.ChargeResult{ExternalRef: "ref-1", Status: consts.StatusSubmitted}

	retried, err := uc.SubmitTransaction(context.Background(), transaction.GUID)
	require.NoError(t, err)
	assert.Equal(t, consts.StatusSubmitted, retried.Status)

	require.Len(t, proc.chargeCalls, 2)
	assert.Equal(t, proc.chargeCalls[0].IdempotencyKey, proc.chargeCalls[1].IdempotencyKey)
}

func TestCharge_Declined(t *testing.T) {
	proc := &scriptedProcessor{chargeErr: processor.ErrProcessorRejected}
	uc, db, company := setup(t, proc)
	d := dao.NewDaoMethod(db)

	transaction, err := uc.Charge(context.Background(), chargeRequest(company.GUID))
	assert.ErrorIs(t, err, processor.ErrProcessorRejected)

	got, err := d.GetTransactionByGUID(transaction.GUID)
	require.NoError(t, err)
	assert.Equal(t, consts.StatusFailed, got.Status)
}

func TestCharge_UnknownCompany(t *testing.T) {
	uc, _, _ := setup(t, &scriptedProcessor{})

	_, err := uc.Charge(context.Background(), chargeRequest("CPmissing"))
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestCharge_Validation(t *testing.T) {
	uc, _, company := setup(t, &scriptedProcessor{})

	req := chargeRequest(company.GUID)
	req.Amount = decimal.NewFromInt(-5)
	_, err := uc.Charge(context.Background(), req)
	assert.Error(t, err)

	req = chargeRequest(company.GUID)
	req.Currency = "DOLLARS"
	_, err = uc.Charge(context.Background(), req)
	assert.Error(t, err)
}

func TestSubmitTransaction_NotPending(t *testing.T) {
	proc := &scriptedProcessor{
		chargeResult: processor.ChargeResult{ExternalRef: "ref-1", Status: consts.StatusSubmitted},
	}
	uc, _, company := setup(t, proc)

	transaction, err := uc.Charge(context.Background(), chargeRequest(company.GUID))
	require.NoError(t, err)

	_, err = uc.SubmitTransaction(context.Background(), transaction.GUID)
	assert.Error(t, err)
	require.Len(t, proc.chargeCalls, 1)
}

func TestRefund_UnknownReferenceAltersNothing(t *testing.T) {
	proc := &scriptedProcessor{
		chargeResult: processor.ChargeResult{ExternalRef: "ref-1", Status: consts.StatusSubmitted},
		refundErr:    processor.ErrNotFound,
	}
	uc, db, company := setup(t, proc)

	transaction, err := uc.Charge(context.Background(), chargeRequest(company.GUID))
	require.NoError(t, err)

	_, err = uc.Refund(context.Background(), transaction.GUID, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, processor.ErrNotFound)

	// No refund row was persisted.
	var count int
	require.NoError(t, db.Model(&model.Transaction{}).
		Where("company_guid = ?", company.GUID).
		Count(&count).Error)
	assert.Equal(t, 1, count)
}

func TestRefund_CreatesRefundTransaction(t *testing.T) {
	proc := &scriptedProcessor{
		chargeResult: processor.ChargeResult{ExternalRef: "ref-1", Status: consts.StatusSubmitted},
		refundResult: processor.RefundResult{ExternalRef: "/v1/refunds/RF1", Status: consts.StatusSucceeded},
	}
	uc, _, company := setup(t, proc)

	transaction, err := uc.Charge(context.Background(), chargeRequest(company.GUID))
	require.NoError(t, err)

	refund, err := uc.Refund(context.Background(), transaction.GUID, decimal.RequireFromString("4.25"))
	require.NoError(t, err)
	assert.Equal(t, consts.KindRefund, refund.Kind)
	assert.Equal(t, consts.StatusSucceeded, refund.Status)
	assert.Equal(t, "ref-1", refund.RefundedRef)
	// The refund carries its own reference so its callbacks reconcile.
	assert.Equal(t, "/v1/refunds/RF1", refund.ExternalRef)
}

func TestGetTransaction(t *testing.T) {
	proc := &scriptedProcessor{
		chargeResult: processor.ChargeResult{ExternalRef: "ref-1", Status: consts.StatusSubmitted},
	}
	uc, _, company := setup(t, proc)

	transaction, err := uc.Charge(context.Background(), chargeRequest(company.GUID))
	require.NoError(t, err)

	got, records, err := uc.GetTransaction(transaction.GUID)
	require.NoError(t, err)
	assert.Equal(t, transaction.GUID, got.GUID)
	assert.Empty(t, records)

	_, _, err = uc.GetTransaction("TXmissing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
