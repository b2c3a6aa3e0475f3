package services

import (
	"context"
	"io"
	"strings"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type companyRepository interface {
	companyLookup
	Add(ctx context.Context, company *models.Company) error
	GetAll(ctx context.Context) ([]models.Company, error)
	Update(ctx context.Context, id uint, fields map[string]any) (bool, error)
}

type CompanyInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
	Website     string `json:"website" validate:"omitempty,url"`
	Location    string `json:"location" validate:"max=200"`
	Industry    string `json:"industry" validate:"max=100"`
}

type UpdateCompanyInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Industry    *string `json:"industry" validate:"omitempty,max=100"`
}

type CompanyService struct {
	companies companyRepository
	employers employerLookup
	media     MediaUploader
}

// NewCompanyService accepts a nil media uploader; logo uploads then fail with ErrMediaUnavailable.
func NewCompanyService(companies companyRepository, employers employerLookup, media MediaUploader) *CompanyService {
	return &CompanyService{companies: companies, employers: employers, media: media}
}

func (s *CompanyService) GetCompanies(ctx context.Context) ([]models.Company, error) {
	companies, err := s.companies.GetAll(ctx)
	if err != nil {
		return nil, dbError(err, "failed to get companies")
	}
	return companies, nil
}

func (s *CompanyService) GetCompanyByID(ctx context.Context, id uint) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "failed to get company")
	}
	if company == nil {
		return nil, notFound("company")
	}
	return company, nil
}

func (s *CompanyService) CreateCompany(ctx context.Context, input CompanyInput) (*models.Company, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	company := &models.Company{
		Name:        input.Name,
		Description: input.Description,
		LogoURL:     input.LogoURL,
		Website:     input.Website,
		Location:    strings.TrimSpace(input.Location),
		Industry:    strings.TrimSpace(input.Industry),
	}
	if err := s.companies.Add(ctx, company); err != nil {
		return nil, dbError(err, "failed to create company")
	}
	log.Infof("company %d created", company.ID)
	return company, nil
}

func (s *CompanyService) UpdateCompany(ctx context.Context, userID string, id uint, input UpdateCompanyInput) (*models.Company, error) {
	if err := s.checkMember(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Website != nil {
		fields["website"] = *input.Website
	}
	if input.Location != nil {
		fields["location"] = strings.TrimSpace(*input.Location)
	}
	if input.Industry != nil {
		fields["industry"] = strings.TrimSpace(*input.Industry)
	}

	if len(fields) > 0 {
		if _, err := s.companies.Update(ctx, id, fields); err != nil {
			return nil, dbError(err, "failed to update company")
		}
	}
	return s.GetCompanyByID(ctx, id)
}

func (s *CompanyService) UploadLogo(ctx context.Context, userID string, id uint, filename string, file io.Reader) (*models.Company, error) {
	if s.media == nil {
		return nil, ErrMediaUnavailable
	}
	if err := s.checkMember(ctx, userID, id); err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, filename, file)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeMediaApi).Errorf("failed to upload company logo: %v", err)
		return nil, errors.Wrap(err, "failed to upload logo")
	}

	if _, err := s.companies.Update(ctx, id, map[string]any{"logo_url": url}); err != nil {
		return nil, dbError(err, "failed to update company logo")
	}
	return s.GetCompanyByID(ctx, id)
}

func (s *CompanyService) checkMember(ctx context.Context, userID string, companyID uint) error {
	employer, err := employerOf(ctx, s.employers, userID)
	if err != nil {
		return err
	}
	if employer.CompanyID != companyID {
		return errors.Wrap(ErrForbidden, "only employers of the company can change it")
	}
	return nil
}
