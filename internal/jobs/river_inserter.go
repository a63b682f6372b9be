// Package jobs adapts the River client to the job-insertion interfaces the
// services depend on.
package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/demoday/pitchhub/internal/service"
)

// RiverJobInserter implements service.PassageEmbeddingEnqueuer using the River client.
type RiverJobInserter struct {
	client *river.Client[pgx.Tx]
}

// NewRiverJobInserter creates a new River-based job inserter.
func NewRiverJobInserter(client *river.Client[pgx.Tx]) *RiverJobInserter {
	return &RiverJobInserter{client: client}
}

// InsertPassageEmbeddingJob enqueues an embedding generation job with uniqueness constraints.
func (r *RiverJobInserter) InsertPassageEmbeddingJob(ctx context.Context, args service.PassageEmbeddingArgs) error {
	_, err := r.client.Insert(ctx, args, &river.InsertOpts{
		Queue: service.EmbeddingsQueueName,
		UniqueOpts: river.UniqueOpts{
			// Only one in-flight job per passage (by args).
			ByArgs: true,
			// JobStatePending is required by River when using ByState.
			ByState: []rivertype.JobState{
				rivertype.JobStatePending,
				rivertype.JobStateAvailable,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	})

	return err
}
