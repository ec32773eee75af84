package service

import (
	"errors"

	"cozy_nook/internal/repository"
)

// Errors returned by the storefront services. Details are attached with %w
// wrapping, so callers should compare with errors.Is.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStorageUnavailable = repository.ErrStorageUnavailable
	ErrUnauthenticated    = errors.New("not logged in")
)
