// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fetcher

import (
	"context"
	"sync/atomic"

	"github.com/danielhkuo/safeweb/ingest"
	"github.com/danielhkuo/safeweb/models"
)

// Recorder stores one reading. *ingest.Service satisfies it.
type Recorder interface {
	Record(ctx context.Context, source string, req models.IngestReadingRequest) (ingest.Result, error)
}

// Fetcher is a background reading source.
type Fetcher interface {
	// Run blocks until ctx is done or the source fails permanently.
	Run(ctx context.Context) error
	// Running reports whether the source is currently delivering readings.
	Running() bool
}

type state struct {
	running atomic.Bool
}

func (s *state) Running() bool {
	return s.running.Load()
}
