package service

import (
	"errors"
)

// 错误类别；handler 通过 errors.Is 映射到 HTTP 状态码
var (
	ErrValidation         = errors.New("validation error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrSelfReference      = errors.New("self reference")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFollowSelf 兼容旧名称
	ErrFollowSelf = ErrSelfReference
)

// Error carries a client-facing message and unwraps to its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) error { return &Error{Kind: kind, Msg: msg} }

func validationError(msg string) error { return newError(ErrValidation, msg) }
func notFoundError(msg string) error   { return newError(ErrNotFound, msg) }
func conflictError(msg string) error   { return newError(ErrConflict, msg) }

// Message returns the client-facing message of err, or "" for unexpected errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
