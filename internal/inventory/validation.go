package inventory

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "franchise-inventory/internal/common/errors"
)

const (
	minRenameLength = 2
	maxNameLength   = 100
)

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewInvalidInputError(fmt.Sprintf("%s is required", field))
	}
	return nil
}

// requireName trims name and rejects blank values.
func requireName(field, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("%s is required", field))
	}
	return trimmed, nil
}

// renameName applies the stricter 2-100 character rule used by renames.
func renameName(field, name string) (string, error) {
	trimmed, err := requireName(field, name)
	if err != nil {
		return "", err
	}
	if n := utf8.RuneCountInString(trimmed); n < minRenameLength || n > maxNameLength {
		return "", apperrors.NewInvalidInputError(
			fmt.Sprintf("%s must be between %d and %d characters", field, minRenameLength, maxNameLength))
	}
	return trimmed, nil
}

func requireStock(stock int) error {
	if stock < 0 {
		return apperrors.NewInvalidInputError("stock must be greater than or equal to 0")
	}
	return nil
}

// storageErr leaves classified errors alone and wraps anything else from a
// gateway as a storage failure.
func storageErr(op string, err error) error {
	if _, ok := apperrors.AsStandard(err); ok {
		return err
	}
	return apperrors.NewStorageFailureError(op, err)
}
