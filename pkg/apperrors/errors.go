package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrCredentialNotFound = errors.New("no credentials stored for provider")
	ErrAuthentication     = errors.New("upstream authentication rejected")
)
