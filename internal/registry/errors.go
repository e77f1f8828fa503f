package registry

import "errors"

var (
	// ErrDuplicateCode is returned when an account code already exists.
	ErrDuplicateCode = errors.New("account code already exists")
	// ErrParentNotFound is returned when the given parent ID is unknown.
	ErrParentNotFound = errors.New("parent account not found")
	// ErrTypeMismatch is returned when a child's type differs from its parent's.
	ErrTypeMismatch = errors.New("account type does not match parent type")
	// ErrNotFound is returned when the account ID or code is unknown.
	ErrNotFound = errors.New("account not found")
	// ErrHasChildren is returned when removing an account that is a parent.
	ErrHasChildren = errors.New("account has child accounts")
	// ErrHasHistory is returned when the operation is forbidden for an
	// account that has ever carried a posted line.
	ErrHasHistory = errors.New("account has posted history")
	// ErrInvalidType is returned for an unknown account type.
	ErrInvalidType = errors.New("invalid account type")
)
