package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthorized means the caller lacks membership or ownership of the resource.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotFound means the referenced resource resolves to no row.
	ErrNotFound = errors.New("not found")
	// ErrCapacityExceeded means the section is full; member_count stays untouched.
	ErrCapacityExceeded = errors.New("section capacity exceeded")
	// ErrAlreadyEnrolled means the student already resolves as a member of the section.
	ErrAlreadyEnrolled = errors.New("student already enrolled")
	// ErrAlreadyGraded means the submission is graded and closed to resubmission.
	ErrAlreadyGraded = errors.New("submission already graded")
	// ErrStoreUnavailable is a transient store failure. It must never be read as
	// "membership absent".
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvariantViolation marks data corruption, e.g. an enrollment row with both
	// or neither of section_id/course_id set. Logged, never auto-repaired.
	ErrInvariantViolation = errors.New("data invariant violated")
)

// Store tags an infrastructure failure as ErrStoreUnavailable while keeping the
// original chain. Domain sentinels pass through untouched so errors.Is checks at
// the handler keep working.
func Store(err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func IsDomain(err error) bool {
	return errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrAlreadyEnrolled) ||
		errors.Is(err, ErrAlreadyGraded) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrInvariantViolation)
}
