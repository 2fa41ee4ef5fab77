package reconcile

import (
	"context"
	"errors"

	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/infra/audit"
	"github.com/billyproject/billy/infra/db/dao"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/infra/locker"
	"github.com/billyproject/billy/processor"
)

// ErrVerificationFailed marks a callback whose signature did not check out.
// No state is mutated beyond recording the event as unverified.
var ErrVerificationFailed = errors.New("callback verification failed")

type ReconcileUsecase interface {
	IngestCallback(ctx context.Context, companyGUID string, rawPayload []byte, signature string) (model.CallbackEvent, error)
	PollOnce(ctx context.Context) (int, error)
}

type reconcileUsecase struct {
	db            *gorm.DB
	dao           dao.DaoMethod
	locker        *locker.Locker
	proc          processor.Processor
	processorName string
	archive       *audit.Archive
	pollMinAgeSec int
	pollBatchSize int
}

func NewReconcileUsecase(
	db *gorm.DB,
	lk *locker.Locker,
	proc processor.Processor,
	processorName string,
	archive *audit.Archive,
	pollMinAgeSec int,
	pollBatchSize int,
) ReconcileUsecase {
	return &reconcileUsecase{
		db:            db,
		dao:           dao.NewDaoMethod(db),
		locker:        lk,
		proc:          proc,
		processorName: processorName,
		archive:       archive,
		pollMinAgeSec: pollMinAgeSec,
		pollBatchSize: pollBatchSize,
	}
}
