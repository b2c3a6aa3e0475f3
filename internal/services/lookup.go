package services

import (
	"context"
	"io"

	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/pkg/errors"
)

// MediaUploader stores an image and returns its public url.
type MediaUploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

type employerLookup interface {
	GetByUserID(ctx context.Context, userID string) (*models.Employer, error)
}

type candidateLookup interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.CandidateProfile, error)
}

func employerOf(ctx context.Context, employers employerLookup, userID string) (*models.Employer, error) {
	employer, err := employers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err, "failed to get employer")
	}
	if employer == nil {
		return nil, errors.Wrap(ErrForbidden, "employer profile is required")
	}
	return employer, nil
}

func candidateOf(ctx context.Context, candidates candidateLookup, userID string) (*models.CandidateProfile, error) {
	candidate, err := candidates.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err, "failed to get candidate profile")
	}
	if candidate == nil {
		return nil, errors.Wrap(ErrForbidden, "candidate profile is required")
	}
	return candidate, nil
}
