package config

import "errors"

// Sentinel errors for configuration loading.
var (
	ErrInvalid = errors.New("config: invalid")
	ErrParse   = errors.New("config: parse failed")
)
