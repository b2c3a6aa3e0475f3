package services

import (
	"context"
	"testing"

	"github.com/jobconnect/jobboard-api/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillService(t *testing.T) {
	env := newTestEnv(t)
	skills := NewSkillService(repositories.NewCachedSkills(repositories.NewSkillsRepository(env.db.DB)))
	ctx := context.Background()

	all, err := skills.GetSkills(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	found, err := skills.SearchSkills(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, found, len(all), "blank query returns the whole catalogue")

	found, err = skills.SearchSkills(ctx, "SCRIPT")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	created, err := skills.CreateSkill(ctx, SkillInput{Name: " Kotlin ", Category: "Programming"})
	require.NoError(t, err)
	assert.Equal(t, "Kotlin", created.Name)
	assert.Equal(t, "programming", created.Category)

	_, err = skills.CreateSkill(ctx, SkillInput{Name: "kotlin"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = skills.CreateSkill(ctx, SkillInput{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	found, err = skills.SearchSkills(ctx, "kot")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
