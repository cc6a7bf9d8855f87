package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidAmount       = errors.New("contribution amount must be a positive number")
	ErrInvalidPlanInput    = errors.New("regular plan requires a deadline and a positive goal amount")
	ErrNoRemainingWindow   = errors.New("no monthly payment boundaries remain before the deadline")
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrConcurrentUpdate    = errors.New("saving amount changed concurrently")
	ErrInviteCodeExhausted = errors.New("could not generate a unique invite code")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeInvalidPlanInput    = "INVALID_PLAN_INPUT"
	ErrCodeNoRemainingWindow   = "NO_REMAINING_WINDOW"
	ErrCodeMembershipNotFound  = "MEMBERSHIP_NOT_FOUND"
	ErrCodeGroupNotFound       = "GROUP_NOT_FOUND"
	ErrCodeConcurrentUpdate    = "CONCURRENT_UPDATE"
	ErrCodeInviteCodeExhausted = "INVITE_CODE_EXHAUSTED"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid contribution amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapInvalidPlanInput() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPlanInput,
		"Regular plan needs a group deadline and a positive goal amount",
		ErrInvalidPlanInput,
	)
}

func WrapNoRemainingWindow(deadline string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoRemainingWindow,
		fmt.Sprintf("No month starts remain before the deadline %s", deadline),
		ErrNoRemainingWindow,
	)
}

func WrapMembershipNotFound(userID, groupID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMembershipNotFound,
		fmt.Sprintf("User %s is not a member of group %s", userID, groupID),
		ErrMembershipNotFound,
	)
}

func WrapGroupNotFound(groupID string) *BusinessError {
	return NewBusinessError(
		ErrCodeGroupNotFound,
		fmt.Sprintf("Group with ID %s not found", groupID),
		ErrGroupNotFound,
	)
}

func WrapConcurrentUpdate(userID, groupID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentUpdate,
		fmt.Sprintf("Saving amount for user %s in group %s changed during the update", userID, groupID),
		ErrConcurrentUpdate,
	)
}

func WrapInviteCodeExhausted(attempts int) *BusinessError {
	return NewBusinessError(
		ErrCodeInviteCodeExhausted,
		fmt.Sprintf("Gave up after %d invite code attempts", attempts),
		ErrInviteCodeExhausted,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
