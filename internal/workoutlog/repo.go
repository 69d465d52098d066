package workoutlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/workoutplan/internal/schedule"
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

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	setsJson, err := json.Marshal(exercise.Sets)
	if err != nil {
		return nil, fmt.Errorf("marshal sets: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO logged_exercise
				(owner_id, body_part, detail, date, name, sets, remarks, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id;`,
		exercise.OwnerID, string(exercise.BodyPart), exercise.Detail, exercise.Date,
		exercise.Name, setsJson, exercise.Remarks, exercise.CreatedAt,
	).Scan(&exercise.ID)
	if err != nil {
		return nil, schedule.ConstraintError("insert exercise", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))
	return &exercise, nil
}

func (r *Repo) Get(ctx context.Context, ownerID, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, body_part, detail, date, name, sets, remarks, created_at
			FROM logged_exercise
			WHERE owner_id = $1 AND id = $2;`,
		ownerID, id,
	)
	if err != nil {
		return nil, err
	}

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, ErrExerciseNotFound
	}

	return &exercises[0], nil
}

// Update overwrites the logged values; the slot and date an exercise belongs to never change.
func (r *Repo) Update(ctx context.Context, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	setsJson, err := json.Marshal(exercise.Sets)
	if err != nil {
		return fmt.Errorf("marshal sets: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE logged_exercise SET name = $1, sets = $2, remarks = $3
			WHERE owner_id = $4 AND id = $5;`,
		exercise.Name, setsJson, exercise.Remarks, exercise.OwnerID, exercise.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, ownerID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM logged_exercise WHERE owner_id = $1 AND id = $2;`,
		ownerID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

// ListForSlot returns the exercises logged for a slot on a date, oldest first.
func (r *Repo) ListForSlot(ctx context.Context, ownerID int, slot schedule.Slot, date time.Time) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("slot", slot.String()),
		attribute.String("date", date.Format(schedule.DateLayout)),
	)

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, body_part, detail, date, name, sets, remarks, created_at
			FROM logged_exercise
			WHERE owner_id = $1 AND body_part = $2 AND detail = $3 AND date = $4
			ORDER BY created_at, id;`,
		ownerID, string(slot.BodyPart), slot.Detail, schedule.DateOf(date),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	return exercises, nil
}

func (r *Repo) HasEntries(ctx context.Context, ownerID int, slot schedule.Slot, date time.Time) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.has")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var exists bool
	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS (
				SELECT 1 FROM logged_exercise
				WHERE owner_id = $1 AND body_part = $2 AND detail = $3 AND date = $4
			);`,
		ownerID, string(slot.BodyPart), slot.Detail, schedule.DateOf(date),
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		var bodyPart string
		var setsBytes []byte
		if err := rows.Scan(&e.ID, &e.OwnerID, &bodyPart, &e.Detail, &e.Date, &e.Name, &setsBytes, &e.Remarks, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.BodyPart = schedule.BodyPart(bodyPart)
		e.Date = schedule.DateOf(e.Date)

		e.Sets = []Set{}
		if len(setsBytes) > 0 {
			if err := json.Unmarshal(setsBytes, &e.Sets); err != nil {
				return nil, fmt.Errorf("unmarshal sets of exercise %d: %w", e.ID, err)
			}
		}
		exercises = append(exercises, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}
