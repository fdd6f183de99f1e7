// Package errors holds the domain error constructors of the board service.
// Each maps onto a pkg/errors code and therefore onto an HTTP status.
package errors

import (
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
)

// Client-facing messages shared by several operations.
const (
	MsgBoardNotFound     = "Board not found"
	MsgCardNotFound      = "Card not found"
	MsgMemberNotFound    = "Member not found"
	MsgUserNotFound      = "User not found"
	MsgInvalidLink       = "Invalid link"
	MsgAlreadyMember     = "User is already a member of this board"
	MsgNotBoardMember    = "You are not a member of this board"
	MsgOwnerCannotLeave  = "Owner cannot leave the board, transfer ownership first"
	MsgOwnerNotRemovable = "Owner cannot be removed from the board"
)

func NotFound(message string) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrNotFound, message, nil)
}

func Forbidden(message string) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrUnauthorized, message, nil)
}

func Conflict(message string) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrConflict, message, nil)
}

// Validation reports malformed input. details maps a field name to its message.
func Validation(message string, details map[string]string) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrInvalidArgument, message, nil).WithDetails(details)
}

func TooManyRequests(message string) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrTooManyRequests, message, nil)
}

// Internal wraps an unexpected persistence or storage failure.
func Internal(message string, err error) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrInternal, message, err)
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return apperrors.CodeOf(err) == apperrors.ErrNotFound
}

func IsForbidden(err error) bool {
	return apperrors.CodeOf(err) == apperrors.ErrUnauthorized
}

func IsConflict(err error) bool {
	return apperrors.CodeOf(err) == apperrors.ErrConflict
}

func IsValidation(err error) bool {
	return apperrors.CodeOf(err) == apperrors.ErrInvalidArgument
}
