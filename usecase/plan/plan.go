package plan

import (
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/billyproject/billy/entity"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/utils"
)

func (u *planUsecase) CreatePlan(companyGUID string, req entity.CreatePlanRequest) (model.PayoutPlan, error) {
	if err := validatePlanRequest(req); err != nil {
		return model.PayoutPlan{}, err
	}

	if _, err := u.dao.GetCompanyByGUID(companyGUID); err != nil {
		return model.PayoutPlan{}, err
	}

	timeNowUnix := time.Now().Unix()
	plan := model.PayoutPlan{
		GUID:               utils.GUID(utils.PrefixPayoutPlan),
		CompanyGUID:        companyGUID,
		ExternalID:         req.ExternalID,
		Name:               req.Name,
		BalanceToKeepCents: req.BalanceToKeepCents,
		IntervalDays:       req.IntervalDays,
		Active:             true,
		CreateTime:         timeNowUnix,
		UpdateTime:         timeNowUnix,
	}
	if err := u.dao.CreatePayoutPlan(&plan); err != nil {
		return model.PayoutPlan{}, err
	}

	log.Infof("[Plan] Created payout plan guid=%s company=%s", plan.GUID, companyGUID)
	return plan, nil
}

func (u *planUsecase) GetPlan(guid string) (model.PayoutPlan, error) {
	return u.dao.GetPayoutPlanByGUID(guid)
}

func (u *planUsecase) ListPlans(companyGUID string) ([]model.PayoutPlan, error) {
	if _, err := u.dao.GetCompanyByGUID(companyGUID); err != nil {
		return nil, err
	}
	return u.dao.GetPayoutPlansByCompanyGUID(companyGUID)
}

// UpdatePlan renames a plan. Name is the only mutable attribute; interval
// and balance changes mean a new plan.
func (u *planUsecase) UpdatePlan(guid, name string) (model.PayoutPlan, error) {
	if name == "" {
		return model.PayoutPlan{}, errors.New("plan name is required")
	}

	plan, err := u.dao.GetPayoutPlanByGUID(guid)
	if err != nil {
		return model.PayoutPlan{}, err
	}

	plan.Name = name
	plan.UpdateTime = time.Now().Unix()
	if err := u.dao.UpdatePayoutPlan(plan); err != nil {
		return model.PayoutPlan{}, err
	}
	return plan, nil
}

// DisablePlan deactivates a plan. Already-disabled plans stay disabled; the
// original delete time stands.
func (u *planUsecase) DisablePlan(guid string) (model.PayoutPlan, error) {
	plan, err := u.dao.GetPayoutPlanByGUID(guid)
	if err != nil {
		return model.PayoutPlan{}, err
	}
	if !plan.Active {
		return plan, nil
	}

	timeNowUnix := time.Now().Unix()
	plan.Active = false
	plan.UpdateTime = timeNowUnix
	plan.DeleteTime = timeNowUnix
	if err := u.dao.UpdatePayoutPlan(plan); err != nil {
		return model.PayoutPlan{}, err
	}

	log.Infof("[Plan] Disabled payout plan guid=%s", plan.GUID)
	return plan, nil
}

func validatePlanRequest(req entity.CreatePlanRequest) error {
	if req.ExternalID == "" {
		return errors.New("plan external id is required")
	}
	if req.Name == "" {
		return errors.New("plan name is required")
	}
	if req.BalanceToKeepCents < 0 {
		return errors.New("balance to keep must not be negative")
	}
	if req.IntervalDays <= 0 {
		return errors.New("payout interval must be positive")
	}
	return nil
}
