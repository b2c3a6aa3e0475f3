package services

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jobconnect/jobboard-api/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrMediaUnavailable = errors.New("media uploads are not configured")
)

var validate = validator.New()

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

func notFound(what string) error {
	return errors.Wrap(ErrNotFound, what)
}

// validateInput turns struct tag violations into a single ErrInvalidInput listing each field.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(ErrInvalidInput, err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			messages = append(messages, strings.ToLower(fe.Field())+" must satisfy "+fe.Tag()+"="+fe.Param())
		} else {
			messages = append(messages, strings.ToLower(fe.Field())+" is "+fe.Tag())
		}
	}
	return errors.Wrap(ErrInvalidInput, strings.Join(messages, "; "))
}

// dbError logs a storage failure and wraps it for the caller. A unique index violation means a
// concurrent request won the race, so it is reported as a conflict.
func dbError(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(ErrConflict, msg+": already exists")
	}
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("%s: %v", msg, err)
	return errors.Wrap(err, msg)
}
