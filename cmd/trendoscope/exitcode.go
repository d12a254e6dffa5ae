package main

import (
	"errors"

	"github.com/kailas-cloud/trendoscope/internal/domain"
)

// Process exit codes. Scripts rely on these values.
const (
	exitOK               = 0
	exitError            = 1
	exitInvalidArgument  = 2
	exitNotFound         = 3
	exitEmptyIndex       = 4
	exitInsufficientData = 5
	exitGenerationParse  = 6
	exitProvider         = 7
	exitQuotaExceeded    = 8
	exitCorruptStore     = 9
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrNotFound):
		return exitNotFound
	case errors.Is(err, domain.ErrEmptyIndex):
		return exitEmptyIndex
	case errors.Is(err, domain.ErrInsufficientData):
		return exitInsufficientData
	case errors.Is(err, domain.ErrGenerationParse):
		return exitGenerationParse
	case errors.Is(err, domain.ErrProvider):
		return exitProvider
	case errors.Is(err, domain.ErrQuotaExceeded):
		return exitQuotaExceeded
	case errors.Is(err, domain.ErrCorruptStore):
		return exitCorruptStore
	case errors.Is(err, domain.ErrInvalidArgument):
		return exitInvalidArgument
	default:
		return exitError
	}
}
