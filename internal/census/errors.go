package census

import (
	"errors"
	"fmt"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
)

var (
	// ErrNotFound is returned for unknown question ids, grouping slugs and
	// theme slugs.
	ErrNotFound = errors.New("not found")

	// ErrNoSubject is returned by writes when the caller has no identity.
	ErrNoSubject = errors.New("no subject identity")

	// ErrGroupingLocked is returned when opening a grouping whose
	// prerequisites are incomplete.
	ErrGroupingLocked = errors.New("grouping is locked")

	// ErrRetryable matches every RetryableError via errors.Is.
	ErrRetryable = errors.New("temporary failure, please retry")
)

// RetryableError wraps a persistence failure that left no partial state.
// The caller may retry the same operation.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRetryable) true for any RetryableError.
func (e *RetryableError) Is(target error) bool { return target == ErrRetryable }

// ValidationError carries a rejected answer through interfaces that only
// return errors, such as flow.AnswerWriter.
type ValidationError struct {
	QuestionID string
	Result     answer.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("answer for %s rejected: %s", e.QuestionID, e.Result.Error)
}
