package character

import (
	"context"
	"errors"

	"github.com/2beens/workoutplan/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, ownerID int) (_ *Character, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.character.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ownerID))

	character := &Character{OwnerID: ownerID}
	err = r.db.QueryRow(
		ctx,
		`SELECT name, number FROM app_character WHERE owner_id = $1;`,
		ownerID,
	).Scan(&character.Name, &character.Number)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	return character, nil
}

// Save replaces the previous selection, if any.
func (r *Repo) Save(ctx context.Context, character Character) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.character.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", character.OwnerID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO app_character (owner_id, name, number) VALUES ($1, $2, $3)
			ON CONFLICT (owner_id) DO UPDATE SET name = EXCLUDED.name, number = EXCLUDED.number;`,
		character.OwnerID, character.Name, character.Number,
	)
	return err
}
