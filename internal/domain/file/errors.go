package file

import "errors"

var (
	ErrNotFound            = errors.New("file not found")
	ErrUnauthorized        = errors.New("caller is not the file owner")
	ErrDuplicateToken      = errors.New("share token already taken")
	ErrShareTokenExhausted = errors.New("could not allocate a unique share token")
	ErrStorage             = errors.New("object storage failure")
	ErrObjectExists        = errors.New("object already exists")
	ErrValidation          = errors.New("invalid file input")
)
