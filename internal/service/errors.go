package service

import (
	"errors"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrRecordNotFound       = errors.New("damage record not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbidden            = errors.New("admin privileges required")
	ErrSelfDemotion         = errors.New("cannot change own admin flag")
	ErrPurgeDenied          = errors.New("purge confirmation password mismatch")
	ErrInternalServer       = errors.New("internal server error")
)

// ValidationError 携带可以直接展示给用户的提示信息。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation 报告 err 是否为 ValidationError。
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound 报告 err 是否为任一资源未找到错误。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
