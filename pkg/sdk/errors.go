package trendoscope

import (
	"errors"

	"github.com/kailas-cloud/trendoscope/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrEmptyIndex       = domain.ErrEmptyIndex
	ErrInsufficientData = domain.ErrInsufficientData
	ErrGenerationParse  = domain.ErrGenerationParse
	ErrProvider         = domain.ErrProvider
	ErrInvalidArgument  = domain.ErrInvalidArgument
	ErrQuotaExceeded    = domain.ErrQuotaExceeded
	ErrCorruptStore     = domain.ErrCorruptStore
	ErrNotConfigured    = errors.New("trendoscope: component not configured")
)
