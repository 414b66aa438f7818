package service

import (
	"context"

	"teamplay/internal/model"
)

// ResultRecorder is the external persistence collaborator. The core's
// responsibility ends at handing over the produced GameResult; recording
// failures are logged and never fail the room.
type ResultRecorder interface {
	Record(ctx context.Context, result *model.GameResult) error
}

// NopRecorder discards results. Used in tests and when no store is
// configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *model.GameResult) error { return nil }
