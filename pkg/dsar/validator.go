package dsar

import (
	"errors"
	"fmt"
)

var (
	errMissingAccessNumber   = errors.New("access case number missing")
	errMissingDeletionNumber = errors.New("deletion case number missing")
	errUnknownAction         = errors.New("unknown action kind")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// CheckConsistency verifies that a record carries the case numbers its
// action kind requires. A record failing this check must never reach
// provisioning: the case reference would be unbuildable.
func CheckConsistency(r IntakeRecord) error {
	switch r.Action {
	case ActionAccessOnly:
		if r.AccessCaseNumber == "" {
			return ValidationError{reason: fmt.Errorf("row %d: %w", r.Row, errMissingAccessNumber)}
		}
	case ActionDeletionOnly:
		if r.DeletionCaseNumber == "" {
			return ValidationError{reason: fmt.Errorf("row %d: %w", r.Row, errMissingDeletionNumber)}
		}
	case ActionBoth:
		if r.AccessCaseNumber == "" {
			return ValidationError{reason: fmt.Errorf("row %d: %w", r.Row, errMissingAccessNumber)}
		}
		if r.DeletionCaseNumber == "" {
			return ValidationError{reason: fmt.Errorf("row %d: %w", r.Row, errMissingDeletionNumber)}
		}
	default:
		return ValidationError{reason: fmt.Errorf("row %d: %w", r.Row, errUnknownAction)}
	}
	return nil
}

// CheckBatch validates every record before any of them is provisioned.
// It returns the first failure; callers choosing a skip policy should
// call CheckConsistency per record instead.
func CheckBatch(records []IntakeRecord) error {
	for _, r := range records {
		if err := CheckConsistency(r); err != nil {
			return err
		}
	}
	return nil
}
