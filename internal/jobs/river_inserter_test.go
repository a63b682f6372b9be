package jobs

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/demoday/pitchhub/internal/service"
)

// setupRiverDatabase starts a postgres container and applies River's own
// migrations, mirroring the bootstrap the API server performs at startup.
// Skipped unless TEST_DATABASE_INTEGRATION=1.
func setupRiverDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_DATABASE_INTEGRATION") != "1" {
		t.Skip("set TEST_DATABASE_INTEGRATION=1 to run database integration tests")
	}

	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "pgvector/pgvector:pg17",
		tcpostgres.WithDatabase("pitchhub_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(ctr))
	})

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	require.NoError(t, err)
	_, err = migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	require.NoError(t, err)

	return pool
}

func TestRiverJobInserter_InsertPassageEmbeddingJob(t *testing.T) {
	pool := setupRiverDatabase(t)
	ctx := context.Background()

	// Insert-only client: no queues or workers configured.
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	require.NoError(t, err)

	inserter := NewRiverJobInserter(client)
	passageID := uuid.Must(uuid.NewV7())

	countJobs := func() int {
		var n int
		err := pool.QueryRow(ctx,
			`SELECT count(*) FROM river_job WHERE kind = $1`, service.PassageEmbeddingArgs{}.Kind(),
		).Scan(&n)
		require.NoError(t, err)

		return n
	}

	t.Run("job lands in river_job after schema bootstrap", func(t *testing.T) {
		err := inserter.InsertPassageEmbeddingJob(ctx, service.PassageEmbeddingArgs{PassageID: passageID})
		require.NoError(t, err)
		assert.Equal(t, 1, countJobs())

		var queue string
		err = pool.QueryRow(ctx,
			`SELECT queue FROM river_job WHERE kind = $1`, service.PassageEmbeddingArgs{}.Kind(),
		).Scan(&queue)
		require.NoError(t, err)
		assert.Equal(t, service.EmbeddingsQueueName, queue)
	})

	t.Run("duplicate insert for the same passage is deduplicated", func(t *testing.T) {
		err := inserter.InsertPassageEmbeddingJob(ctx, service.PassageEmbeddingArgs{PassageID: passageID})
		require.NoError(t, err)
		assert.Equal(t, 1, countJobs())
	})

	t.Run("different passages get their own jobs", func(t *testing.T) {
		err := inserter.InsertPassageEmbeddingJob(ctx, service.PassageEmbeddingArgs{PassageID: uuid.Must(uuid.NewV7())})
		require.NoError(t, err)
		assert.Equal(t, 2, countJobs())
	})
}
