package core

import (
	"errors"
)

var (
	// ErrSchedulerHalted is raised once a tick observed the guard left armed by the
	// previous tick. The scheduler cannot be restarted afterwards.
	ErrSchedulerHalted = errors.New("HALTED: critical error in a frame module")

	ErrUnknownAssetKind    = errors.New("unknown asset kind")
	ErrNoFetcher           = errors.New("no fetcher registered for asset kind")
	ErrUnsupportedFormat   = errors.New("unsupported asset format")
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
	ErrHostClosed          = errors.New("host already closed")
	ErrJobSystemClosed     = errors.New("job system already shut down")
	ErrUnknown             = errors.New("unknown")
)
