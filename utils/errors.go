package utils

import "errors"

var (
	ErrEmptyURL      = errors.New("target URL cannot be empty")
	ErrInvalidURL    = errors.New("invalid target URL format")
	ErrInvalidScheme = errors.New("target URL scheme must be http or https")
	ErrEmptyHost     = errors.New("target URL host cannot be empty")
)
