package dao

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/utils"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open("sqlite3", filepath.Join(t.TempDir(), "billy_test.db")+"?_busy_timeout=10000")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.AutoMigrate(
		&model.Company{},
		&model.Transaction{},
		&model.CallbackEvent{},
		&model.ReconciliationRecord{},
	).Error
	require.NoError(t, err)
	return db
}

func seedTransaction(t *testing.T, d DaoMethod, status string) model.Transaction {
	t.Helper()
	now := time.Now().Unix()
	transaction := model.Transaction{
		GUID:           utils.GUID(utils.PrefixTransaction),
		CompanyGUID:    "CPtest",
		Kind:           consts.KindCharge,
		Amount:         decimal.NewFromInt(10),
		Currency:       "USD",
		IdempotencyKey: utils.SecretKey(),
		ExternalRef:    "/v1/debits/WD1",
		Status:         status,
		CreateTime:     now,
		UpdateTime:     now,
	}
	require.NoError(t, d.CreateTransaction(&transaction))
	return transaction
}

func seedEvent(t *testing.T, d DaoMethod, processorEventID string) model.CallbackEvent {
	t.Helper()
	event := model.CallbackEvent{
		GUID:             utils.GUID(utils.PrefixCallbackEvent),
		CompanyGUID:      "CPtest",
		Processor:        "balanced",
		ProcessorEventID: processorEventID,
		EventType:        consts.EventDebitSucceeded,
		RawPayload:       "{}",
		SignatureValid:   true,
		Outcome:          consts.OutcomeRejected,
		ReceiveTime:      time.Now().Unix(),
	}
	require.NoError(t, d.CreateCallbackEvent(&event))
	return event
}

func TestCreateCallbackEvent_Duplicate(t *testing.T) {
	d := NewDaoMethod(openTestDB(t))

	seedEvent(t, d, "EV1")

	dup := model.CallbackEvent{
		GUID:             utils.GUID(utils.PrefixCallbackEvent),
		CompanyGUID:      "CPtest",
		Processor:        "balanced",
		ProcessorEventID: "EV1",
		RawPayload:       "{}",
		Outcome:          consts.OutcomeRejected,
	}
	err := d.CreateCallbackEvent(&dup)
	assert.ErrorIs(t, err, ErrDuplicateEvent)
}

func TestApplyEvent_TransitionAndWitness(t *testing.T) {
	d := NewDaoMethod(openTestDB(t))

	transaction := seedTransaction(t, d, consts.StatusSubmitted)
	event := seedEvent(t, d, "EV1")

	applied, err := d.ApplyEvent(ApplyEventParams{
		EventGUID:       event.GUID,
		TransactionGUID: transaction.GUID,
		ExpectedVersion: transaction.Version,
		FromStatus:      consts.StatusSubmitted,
		ToStatus:        consts.StatusSucceeded,
		AppliedSequence: 3,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := d.GetTransactionByGUID(transaction.GUID)
	require.NoError(t, err)
	assert.Equal(t, consts.StatusSucceeded, got.Status)
	assert.Equal(t, int64(3), got.LastAppliedSequence)
	assert.Equal(t, transaction.Version+1, got.Version)

	record, err := d.GetReconciliationRecordByEventGUID(event.GUID)
	require.NoError(t, err)
	assert.Equal(t, transaction.GUID, record.TransactionGUID)
	assert.Equal(t, consts.StatusSucceeded, record.ToStatus)

	gotEvent, err := d.GetCallbackEventByGUID(event.GUID)
	require.NoError(t, err)
	assert.Equal(t, consts.OutcomeApplied, gotEvent.Outcome)

	// Second application of the same event is a no-op.
	applied, err = d.ApplyEvent(ApplyEventParams{
		EventGUID:       event.GUID,
		TransactionGUID: transaction.GUID,
		ExpectedVersion: got.Version,
		FromStatus:      consts.StatusSucceeded,
		ToStatus:        consts.StatusFailed,
		AppliedSequence: 4,
	})
	require.NoError(t, err)
	assert.False(t, applied)

	unchanged, err := d.GetTransactionByGUID(transaction.GUID)
	require.NoError(t, err)
	assert.Equal(t, consts.StatusSucceeded, unchanged.Status)

	records, err := d.GetReconciliationRecordsByTransactionGUID(transaction.GUID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestApplyEvent_VersionConflict(t *testing.T) {
	d := NewDaoMethod(openTestDB(t))

	transaction := seedTransaction(t, d, consts.StatusSubmitted)
	event := seedEvent(t, d, "EV1")

	_, err := d.ApplyEvent(ApplyEventParams{
		EventGUID:       event.GUID,
		TransactionGUID: transaction.GUID,
		ExpectedVersion: transaction.Version + 7, // stale read
		FromStatus:      consts.StatusSubmitted,
		ToStatus:        consts.StatusSucceeded,
		AppliedSequence: 1,
	})
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := d.GetTransactionByGUID(transaction.GUID)
	require.NoError(t, err)
	assert.Equal(t, consts.StatusSubmitted, got.Status)
}

func TestGetStaleSubmittedTransactions(t *testing.T) {
	db := openTestDB(t)
	d := NewDaoMethod(db)

	stale := seedTransaction(t, d, consts.StatusSubmitted)
	require.NoError(t, db.Model(&model.Transaction{}).
		Where("guid = ?", stale.GUID).
		Update("update_time", time.Now().Unix()-3600).Error)

	seedTransaction(t, d, consts.StatusSubmitted)

	got, err := d.GetStaleSubmittedTransactions(time.Now().Unix()-60, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stale.GUID, got[0].GUID)
}

func TestGetStaleSubmittedTransactions_SkipsEmptyRef(t *testing.T) {
	db := openTestDB(t)
	d := NewDaoMethod(db)

	// A submitted row the processor never acknowledged has nothing to query.
	orphan := seedTransaction(t, d, consts.StatusSubmitted)
	require.NoError(t, db.Model(&model.Transaction{}).
		Where("guid = ?", orphan.GUID).
		Updates(map[string]interface{}{
			"external_ref": "",
			"update_time":  time.Now().Unix() - 3600,
		}).Error)

	got, err := d.GetStaleSubmittedTransactions(time.Now().Unix()-60, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetStalePendingTransactions(t *testing.T) {
	db := openTestDB(t)
	d := NewDaoMethod(db)

	stale := seedTransaction(t, d, consts.StatusPending)
	require.NoError(t, db.Model(&model.Transaction{}).
		Where("guid = ?", stale.GUID).
		Update("update_time", time.Now().Unix()-3600).Error)

	seedTransaction(t, d, consts.StatusPending)
	seedTransaction(t, d, consts.StatusSubmitted)

	got, err := d.GetStalePendingTransactions(time.Now().Unix()-60, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stale.GUID, got[0].GUID)
}

func TestGetCompanyByGUID_NotFound(t *testing.T) {
	d := NewDaoMethod(openTestDB(t))

	_, err := d.GetCompanyByGUID("CPmissing")
	assert.ErrorIs(t, err, ErrNotFound)
}
