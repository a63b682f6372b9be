package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

const (
	passageEmbeddingKind = "passage_embedding"
	// EmbeddingsQueueName is the River queue used for passage embedding jobs.
	EmbeddingsQueueName = "embeddings"
)

// PassageEmbeddingArgs is the job payload for generating and storing the
// embedding of one knowledge passage. Uniqueness is by PassageID so duplicate
// ingestion events for the same passage do not create duplicate jobs.
type PassageEmbeddingArgs struct {
	PassageID uuid.UUID `json:"passage_id" river:"unique"`
}

// Kind returns the River job kind.
func (PassageEmbeddingArgs) Kind() string { return passageEmbeddingKind }

var _ river.JobArgs = PassageEmbeddingArgs{}

// PassageEmbeddingEnqueuer enqueues embedding jobs for passages. Nil-able in
// wiring: when the job queue is disabled, passages stay unembedded until a
// backfill runs.
type PassageEmbeddingEnqueuer interface {
	InsertPassageEmbeddingJob(ctx context.Context, args PassageEmbeddingArgs) error
}
