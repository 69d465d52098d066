package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repo struct {
	db querier
}

var _ TxStore = (*Repo)(nil)

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ConstraintError maps postgres constraint violations to the package errors; anything else
// is wrapped with op.
func ConstraintError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case pkg.IsUniqueViolationError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicateSlot)
	case pkg.IsCheckViolationError(err):
		return fmt.Errorf("%s: %w: %s", op, ErrValidation, err)
	case pkg.IsForeignKeyViolationError(err):
		return fmt.Errorf("%s: %w", op, ErrUnknownOwner)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// InTx opens a transaction (a savepoint when already inside one) and hands fn a repo bound to it.
func (r *Repo) InTx(ctx context.Context, fn func(store Store) error) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.tx")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			// the slot uniqueness check is deferred to here
			err = ConstraintError("commit tx", tx.Commit(ctx))
		}
	}()

	return fn(&Repo{db: tx})
}

func (r *Repo) AddRoutine(ctx context.Context, ra RoutineAssignment) (_ *RoutineAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.routine.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ra.OwnerID))

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO routine_assignment (owner_id, weekday, body_part, detail)
			VALUES ($1, $2, $3, $4)
			RETURNING id;`,
		ra.OwnerID, int(ra.Weekday), string(ra.BodyPart), ra.Detail,
	).Scan(&ra.ID)
	if err != nil {
		return nil, ConstraintError("insert routine assignment", err)
	}

	span.SetAttributes(attribute.Int("routine.id", ra.ID))
	return &ra, nil
}

func (r *Repo) GetRoutine(ctx context.Context, ownerID, id int) (_ *RoutineAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.routine.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, weekday, body_part, detail
			FROM routine_assignment
			WHERE owner_id = $1 AND id = $2;`,
		ownerID, id,
	)
	if err != nil {
		return nil, err
	}

	routines, err := rows2routines(rows)
	if err != nil {
		return nil, err
	}
	if len(routines) != 1 {
		return nil, ErrRoutineNotFound
	}

	return &routines[0], nil
}

func (r *Repo) UpdateRoutine(ctx context.Context, ra *RoutineAssignment) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.routine.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", ra.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE routine_assignment SET weekday = $1, body_part = $2, detail = $3
			WHERE owner_id = $4 AND id = $5;`,
		int(ra.Weekday), string(ra.BodyPart), ra.Detail, ra.OwnerID, ra.ID,
	)
	if err != nil {
		return ConstraintError("update routine assignment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}
	return nil
}

func (r *Repo) DeleteRoutine(ctx context.Context, ownerID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.routine.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM routine_assignment WHERE owner_id = $1 AND id = $2;`,
		ownerID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}
	return nil
}

func (r *Repo) DeleteAllRoutines(ctx context.Context, ownerID int) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.routine.deleteall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ownerID))

	tag, err := r.db.Exec(ctx, `DELETE FROM routine_assignment WHERE owner_id = $1;`, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) ListRoutines(ctx context.Context, ownerID int) (_ []RoutineAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.routine.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ownerID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, weekday, body_part, detail
			FROM routine_assignment
			WHERE owner_id = $1
			ORDER BY weekday, id;`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	return rows2routines(rows)
}

func (r *Repo) ListRoutinesByWeekday(ctx context.Context, ownerID int, weekday Weekday) (_ []RoutineAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.routine.listbyweekday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ownerID), attribute.String("weekday", weekday.String()))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, weekday, body_part, detail
			FROM routine_assignment
			WHERE owner_id = $1 AND weekday = $2
			ORDER BY id;`,
		ownerID, int(weekday),
	)
	if err != nil {
		return nil, err
	}
	return rows2routines(rows)
}

func (r *Repo) ListRoutinesByBodyPart(ctx context.Context, ownerID int, part BodyPart) (_ []RoutineAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.routine.listbypart")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ownerID), attribute.String("part", string(part)))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, weekday, body_part, detail
			FROM routine_assignment
			WHERE owner_id = $1 AND body_part = $2
			ORDER BY weekday, id;`,
		ownerID, string(part),
	)
	if err != nil {
		return nil, err
	}
	return rows2routines(rows)
}

func (r *Repo) AddDate(ctx context.Context, da DateAssignment) (_ *DateAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", da.OwnerID), attribute.Bool("tombstone", da.IsTombstone()))

	da.Date = DateOf(da.Date)
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO date_assignment (owner_id, date, body_part, detail)
			VALUES ($1, $2, $3, $4)
			RETURNING id;`,
		da.OwnerID, da.Date, nullableBodyPart(da.BodyPart), da.Detail,
	).Scan(&da.ID)
	if err != nil {
		return nil, ConstraintError("insert date assignment", err)
	}

	return &da, nil
}

func (r *Repo) GetDate(ctx context.Context, ownerID, id int) (_ *DateAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, date, body_part, detail
			FROM date_assignment
			WHERE owner_id = $1 AND id = $2;`,
		ownerID, id,
	)
	if err != nil {
		return nil, err
	}

	dates, err := rows2dates(rows)
	if err != nil {
		return nil, err
	}
	if len(dates) != 1 {
		return nil, ErrDateAssignmentNotFound
	}

	return &dates[0], nil
}

func (r *Repo) UpdateDate(ctx context.Context, da *DateAssignment) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", da.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE date_assignment SET date = $1, body_part = $2, detail = $3
			WHERE owner_id = $4 AND id = $5;`,
		DateOf(da.Date), nullableBodyPart(da.BodyPart), da.Detail, da.OwnerID, da.ID,
	)
	if err != nil {
		return ConstraintError("update date assignment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDateAssignmentNotFound
	}
	return nil
}

func (r *Repo) DeleteDate(ctx context.Context, ownerID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM date_assignment WHERE owner_id = $1 AND id = $2;`,
		ownerID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDateAssignmentNotFound
	}
	return nil
}

func (r *Repo) DeleteDatesOn(ctx context.Context, ownerID int, date time.Time) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.deleteon")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date.Format(DateLayout)))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM date_assignment WHERE owner_id = $1 AND date = $2;`,
		ownerID, DateOf(date),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) DeleteTombstonesOn(ctx context.Context, ownerID int, date time.Time) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.deletetombstones")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date.Format(DateLayout)))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM date_assignment WHERE owner_id = $1 AND date = $2 AND body_part IS NULL;`,
		ownerID, DateOf(date),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) DeleteAllDates(ctx context.Context, ownerID int) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.deleteall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ownerID))

	tag, err := r.db.Exec(ctx, `DELETE FROM date_assignment WHERE owner_id = $1;`, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) ListDatesOn(ctx context.Context, ownerID int, date time.Time) (_ []DateAssignment, err error) {
	return r.ListDatesBetween(ctx, ownerID, date, date)
}

func (r *Repo) ListDatesBetween(ctx context.Context, ownerID int, from, to time.Time) (_ []DateAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.listbetween")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("owner", ownerID),
		attribute.String("from", from.Format(DateLayout)),
		attribute.String("to", to.Format(DateLayout)),
	)

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, date, body_part, detail
			FROM date_assignment
			WHERE owner_id = $1 AND date >= $2 AND date <= $3
			ORDER BY date, id;`,
		ownerID, DateOf(from), DateOf(to),
	)
	if err != nil {
		return nil, err
	}
	return rows2dates(rows)
}

func (r *Repo) ListOverrides(ctx context.Context, ownerID int) (_ []DateAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.listoverrides")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ownerID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, date, body_part, detail
			FROM date_assignment
			WHERE owner_id = $1 AND body_part IS NOT NULL
			ORDER BY date, id;`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	return rows2dates(rows)
}

func (r *Repo) ListDatesByBodyPart(ctx context.Context, ownerID int, part BodyPart) (_ []DateAssignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.date.listbypart")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", ownerID), attribute.String("part", string(part)))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, owner_id, date, body_part, detail
			FROM date_assignment
			WHERE owner_id = $1 AND body_part = $2
			ORDER BY date, id;`,
		ownerID, string(part),
	)
	if err != nil {
		return nil, err
	}
	return rows2dates(rows)
}

func (r *Repo) GetOrCreatePeriod(ctx context.Context, def ActivePeriod) (_ *ActivePeriod, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.period.getorcreate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", def.OwnerID))

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO active_period (owner_id, start_date, end_date)
			VALUES ($1, $2, $3)
			ON CONFLICT (owner_id) DO NOTHING;`,
		def.OwnerID, DateOf(def.Start), DateOf(def.End),
	); err != nil {
		return nil, fmt.Errorf("insert default period: %w", err)
	}

	period := &ActivePeriod{}
	err = r.db.QueryRow(
		ctx,
		`SELECT owner_id, start_date, end_date FROM active_period WHERE owner_id = $1;`,
		def.OwnerID,
	).Scan(&period.OwnerID, &period.Start, &period.End)
	if err != nil {
		return nil, fmt.Errorf("select period: %w", err)
	}

	return period, nil
}

func (r *Repo) SavePeriod(ctx context.Context, period ActivePeriod) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.period.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("owner", period.OwnerID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO active_period (owner_id, start_date, end_date)
			VALUES ($1, $2, $3)
			ON CONFLICT (owner_id) DO UPDATE SET start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date;`,
		period.OwnerID, DateOf(period.Start), DateOf(period.End),
	)
	return ConstraintError("save period", err)
}

func rows2routines(rows pgx.Rows) ([]RoutineAssignment, error) {
	defer rows.Close()

	var routines []RoutineAssignment
	for rows.Next() {
		var (
			ra       RoutineAssignment
			weekday  int
			bodyPart string
		)
		if err := rows.Scan(&ra.ID, &ra.OwnerID, &weekday, &bodyPart, &ra.Detail); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		ra.Weekday = Weekday(weekday)
		ra.BodyPart = BodyPart(bodyPart)
		routines = append(routines, ra)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return routines, nil
}

func rows2dates(rows pgx.Rows) ([]DateAssignment, error) {
	defer rows.Close()

	var dates []DateAssignment
	for rows.Next() {
		var (
			da       DateAssignment
			bodyPart *string
		)
		if err := rows.Scan(&da.ID, &da.OwnerID, &da.Date, &bodyPart, &da.Detail); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if bodyPart != nil {
			da.BodyPart = BodyPart(*bodyPart)
		}
		da.Date = DateOf(da.Date)
		dates = append(dates, da)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

func nullableBodyPart(part BodyPart) *string {
	if part == "" {
		return nil
	}
	s := string(part)
	return &s
}

// IsNoRows reports whether err comes from an empty single-row query.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
