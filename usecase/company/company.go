package company

import (
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/utils"
)

func (u *companyUsecase) CreateCompany(name, processorKey string) (model.Company, error) {
	if name == "" {
		return model.Company{}, errors.New("company name is required")
	}
	if processorKey == "" {
		return model.Company{}, errors.New("processor key is required")
	}

	timeNowUnix := time.Now().Unix()
	company := model.Company{
		GUID:         utils.GUID(utils.PrefixCompany),
		Name:         name,
		ProcessorKey: processorKey,
		CallbackKey:  utils.SecretKey(),
		CreateTime:   timeNowUnix,
		UpdateTime:   timeNowUnix,
	}

	if err := u.dao.CreateCompany(&company); err != nil {
		return model.Company{}, err
	}

	log.Infof("[Company] Created company guid=%s", company.GUID)
	return company, nil
}

func (u *companyUsecase) GetCompany(guid string) (model.Company, error) {
	return u.dao.GetCompanyByGUID(guid)
}

// RotateCallbackKey replaces the callback secret. Keys are never regenerated
// implicitly; this is the only write path for the field after onboarding.
func (u *companyUsecase) RotateCallbackKey(guid string) (model.Company, error) {
	company, err := u.dao.GetCompanyByGUID(guid)
	if err != nil {
		return model.Company{}, err
	}

	company.CallbackKey = utils.SecretKey()
	company.UpdateTime = time.Now().Unix()

	if err := u.dao.UpdateCompany(company); err != nil {
		return model.Company{}, err
	}

	log.Infof("[Company] Rotated callback key for guid=%s", company.GUID)
	return company, nil
}
