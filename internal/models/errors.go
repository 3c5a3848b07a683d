package models

import "errors"

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key violation")
	ErrInvalidID      = errors.New("invalid ID format")
	ErrModelNotFound  = errors.New("prediction model not found")
	ErrUnknownSite    = errors.New("unknown gambling site")
	ErrNoOddsData     = errors.New("no odds data available")
	ErrAlreadySettled = errors.New("bet is already settled")
)
