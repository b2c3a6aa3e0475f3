package repositories

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
)

type skillRepository interface {
	GetAll(ctx context.Context) ([]models.Skill, error)
	GetByID(ctx context.Context, id uint) (*models.Skill, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Skill, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, skill *models.Skill) error
}

const allSkillsKey = "skills:all"

// CachedSkills keeps the skill catalogue in memory; the catalogue is read on almost every profile screen.
type CachedSkills struct {
	repo  skillRepository
	cache *gocache.Cache
}

func NewCachedSkills(repo skillRepository) *CachedSkills {
	return &CachedSkills{repo: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c *CachedSkills) GetAll(ctx context.Context) ([]models.Skill, error) {
	if value, found := c.cache.Get(allSkillsKey); found {
		return value.([]models.Skill), nil
	}

	skills, err := c.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(allSkillsKey, skills)
	return skills, nil
}

func (c *CachedSkills) GetByID(ctx context.Context, id uint) (*models.Skill, error) {
	key := "skills:" + strconv.FormatUint(uint64(id), 10)
	if value, found := c.cache.Get(key); found {
		skill := value.(models.Skill)
		return &skill, nil
	}

	skill, err := c.repo.GetByID(ctx, id)
	if skill != nil {
		c.cache.SetDefault(key, *skill)
	}
	return skill, err
}

func (c *CachedSkills) GetByIDs(ctx context.Context, ids []uint) ([]models.Skill, error) {
	return c.repo.GetByIDs(ctx, ids)
}

func (c *CachedSkills) Search(ctx context.Context, query string) ([]models.Skill, error) {
	skills, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	return lo.Filter(skills, func(skill models.Skill, _ int) bool {
		return strings.Contains(strings.ToLower(skill.Name), query)
	}), nil
}

func (c *CachedSkills) ExistsByName(ctx context.Context, name string) (bool, error) {
	return c.repo.ExistsByName(ctx, name)
}

func (c *CachedSkills) Add(ctx context.Context, skill *models.Skill) error {
	if err := c.repo.Add(ctx, skill); err != nil {
		return err
	}
	c.cache.Delete(allSkillsKey)
	return nil
}
