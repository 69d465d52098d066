package testing

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/2beens/workoutplan/internal/db"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// GetDBPool connects to the postgres used by integration tests (POSTGRES_* env vars) and applies the schema.
func GetDBPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := db.NewDBPoolParams{
		DBHost:     envOr("POSTGRES_HOST", "localhost"),
		DBPort:     envOr("POSTGRES_PORT", "5432"),
		DBName:     envOr("POSTGRES_DB", "workoutplan"),
		DBUser:     os.Getenv("POSTGRES_USER"),
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
	}
	t.Logf("using postgres at [%s:%s]", params.DBHost, params.DBPort)

	dbPool, err := db.NewDBPool(timeoutCtx, params)
	require.NoError(t, err)
	t.Cleanup(dbPool.Close)

	require.NoError(t, db.Migrate(timeoutCtx, dbPool))

	return dbPool
}

// CreateTestUser inserts an active user with a random email; it is removed (cascading to
// all owned rows) when the test ends.
func CreateTestUser(t *testing.T, dbPool *pgxpool.Pool) int {
	t.Helper()

	ctx := context.Background()
	email := fmt.Sprintf("%s-%d@test.workoutplan", gofakeit.Username(), gofakeit.Number(1, 1_000_000))

	var userID int
	err := dbPool.QueryRow(
		ctx,
		`INSERT INTO app_user (email, password_hash, active, created_at) VALUES ($1, 'x', TRUE, $2) RETURNING id;`,
		email, time.Now(),
	).Scan(&userID)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = dbPool.Exec(context.Background(), `DELETE FROM app_user WHERE id = $1;`, userID)
	})

	return userID
}
