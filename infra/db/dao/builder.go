package dao

import (
	"errors"

	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/infra/db/model"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEvent is returned when inserting a callback event whose
	// (processor, processor event id) pair is already stored.
	ErrDuplicateEvent = errors.New("duplicate callback event")

	// ErrVersionConflict is returned when a compare-and-set update lost the
	// race; callers re-read and retry.
	ErrVersionConflict = errors.New("transaction version conflict")

	// ErrDuplicatePlan is returned when a company already has a payout plan
	// under the same external identifier.
	ErrDuplicatePlan = errors.New("duplicate payout plan")
)

type DaoMethod interface {
	CreateCompany(payload *model.Company) error
	GetCompanyByGUID(guid string) (model.Company, error)
	UpdateCompany(company model.Company) error

	CreateTransaction(payload *model.Transaction) error
	GetTransactionByGUID(guid string) (model.Transaction, error)
	GetTransactionByExternalRef(companyGUID, externalRef string) (model.Transaction, error)
	UpdateTransaction(transaction model.Transaction) error
	GetStaleSubmittedTransactions(olderThanUnix int64, limit int) ([]model.Transaction, error)
	GetStalePendingTransactions(olderThanUnix int64, limit int) ([]model.Transaction, error)

	CreateCallbackEvent(payload *model.CallbackEvent) error
	GetCallbackEventByProcessorID(processorName, processorEventID string) (model.CallbackEvent, error)
	GetCallbackEventByGUID(guid string) (model.CallbackEvent, error)
	SetCallbackEventOutcome(guid, outcome string) error

	CreatePayoutPlan(payload *model.PayoutPlan) error
	GetPayoutPlanByGUID(guid string) (model.PayoutPlan, error)
	GetPayoutPlanByExternalID(companyGUID, externalID string) (model.PayoutPlan, error)
	GetPayoutPlansByCompanyGUID(companyGUID string) ([]model.PayoutPlan, error)
	UpdatePayoutPlan(plan model.PayoutPlan) error

	GetReconciliationRecordByEventGUID(eventGUID string) (model.ReconciliationRecord, error)
	GetReconciliationRecordsByTransactionGUID(transactionGUID string) ([]model.ReconciliationRecord, error)

	ApplyEvent(params ApplyEventParams) (bool, error)
}

type dao struct {
	db *gorm.DB
}

func NewDaoMethod(db *gorm.DB) DaoMethod {
	return &dao{db: db}
}
