package services

import (
	"context"
	"strings"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/pkg/errors"
)

type skillRepository interface {
	GetAll(ctx context.Context) ([]models.Skill, error)
	Search(ctx context.Context, query string) ([]models.Skill, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, skill *models.Skill) error
}

type SkillInput struct {
	Name     string `json:"name" validate:"required,max=64"`
	Category string `json:"category" validate:"max=64"`
}

type SkillService struct {
	skills skillRepository
}

func NewSkillService(skills skillRepository) *SkillService {
	return &SkillService{skills: skills}
}

func (s *SkillService) GetSkills(ctx context.Context) ([]models.Skill, error) {
	skills, err := s.skills.GetAll(ctx)
	if err != nil {
		return nil, dbError(err, "failed to get skills")
	}
	return skills, nil
}

func (s *SkillService) SearchSkills(ctx context.Context, query string) ([]models.Skill, error) {
	if strings.TrimSpace(query) == "" {
		return s.GetSkills(ctx)
	}
	skills, err := s.skills.Search(ctx, query)
	if err != nil {
		return nil, dbError(err, "failed to search skills")
	}
	return skills, nil
}

func (s *SkillService) CreateSkill(ctx context.Context, input SkillInput) (*models.Skill, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	exists, err := s.skills.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, dbError(err, "failed to check skill")
	}
	if exists {
		return nil, errors.Wrapf(ErrConflict, "skill %q already exists", input.Name)
	}

	skill := &models.Skill{Name: input.Name, Category: strings.ToLower(strings.TrimSpace(input.Category))}
	if err := s.skills.Add(ctx, skill); err != nil {
		return nil, dbError(err, "failed to create skill")
	}
	return skill, nil
}
