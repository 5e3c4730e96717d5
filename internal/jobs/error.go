package jobs

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ErrorWriter persists a run failure to the backing store.
type ErrorWriter func(ctx context.Context, runID, msg string) error

// SetJobError logs the failure and delegates persistence to write.
func SetJobError(ctx context.Context, runID, msg string, write ErrorWriter) error {
	log.Error().
		Str("runId", runID).
		Str("error", msg).
		Msg("Run failed")
	return write(ctx, runID, msg)
}
