package routine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutplan/internal/schedule"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

// ErrCommitFailed wraps store errors that aborted a commit; nothing of it was written.
var ErrCommitFailed = errors.New("routine commit failed")

type CommitOptions struct {
	// Overwrite removes dated assignments on committed routine weekdays, instead of keeping
	// them and hiding the routine on those dates.
	Overwrite bool `json:"overwrite"`
}

type CommitResult struct {
	Deleted          int64              `json:"deleted"`
	Created          int                `json:"created"`
	Updated          int                `json:"updated"`
	PeriodChanged    bool               `json:"periodChanged"`
	Period           Period             `json:"period"`
	Weekdays         []schedule.Weekday `json:"weekdays"`
	RemovedOverrides int64              `json:"removedOverrides"`
	AddedTombstones  int                `json:"addedTombstones"`
}

// Committer applies a buffer to the store in a single transaction.
type Committer struct {
	store schedule.TxStore
	// ability to inject the clock (for tests), it dates the default active period
	Now func() time.Time
}

func NewCommitter(store schedule.TxStore) *Committer {
	return &Committer{
		store: store,
		Now:   time.Now,
	}
}

func (c *Committer) Commit(ctx context.Context, ownerID int, buf *Buffer, opts CommitOptions) (_ *CommitResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "routine.commit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("owner", ownerID),
		attribute.Bool("overwrite", opts.Overwrite),
	)

	var result *CommitResult
	err = c.store.InTx(ctx, func(store schedule.Store) error {
		r, err := c.apply(ctx, store, ownerID, buf, opts)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("routine commit [%d]: %d deleted, %d created, %d updated", ownerID, result.Deleted, result.Created, result.Updated)
	return result, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCommitFailed, op, err)
}

func (c *Committer) apply(ctx context.Context, store schedule.Store, ownerID int, buf *Buffer, opts CommitOptions) (*CommitResult, error) {
	stored, err := store.ListRoutines(ctx, ownerID)
	if err != nil {
		return nil, storeErr("list routines", err)
	}
	if err := ValidateFinalState(buf, stored); err != nil {
		return nil, err
	}

	result := &CommitResult{}

	if buf.DeletesAll() {
		deleted, err := store.DeleteAllRoutines(ctx, ownerID)
		if err != nil {
			return nil, storeErr("delete all routines", err)
		}
		result.Deleted = deleted
	} else {
		for _, intent := range buf.Deletes() {
			if err := store.DeleteRoutine(ctx, ownerID, intent.Ref); err != nil {
				return nil, storeErr(fmt.Sprintf("delete routine %d", intent.Ref), err)
			}
			result.Deleted++
		}
	}

	weekdays := make(map[schedule.Weekday]bool)

	for _, intent := range buf.Creates() {
		if _, err := store.AddRoutine(ctx, schedule.RoutineAssignment{
			OwnerID: ownerID,
			Weekday: intent.Key.Weekday,
			Slot:    intent.Slot.Normalized(),
		}); err != nil {
			return nil, storeErr("add routine", err)
		}
		weekdays[intent.Key.Weekday] = true
		result.Created++
	}

	for _, intent := range buf.Updates() {
		ra, err := store.GetRoutine(ctx, ownerID, intent.Ref)
		if err != nil {
			return nil, storeErr(fmt.Sprintf("get routine %d", intent.Ref), err)
		}
		ra.Weekday = intent.Key.Weekday
		ra.Slot = intent.Slot.Normalized()
		if err := store.UpdateRoutine(ctx, ra); err != nil {
			return nil, storeErr(fmt.Sprintf("update routine %d", intent.Ref), err)
		}
		weekdays[intent.Key.Weekday] = true
		result.Updated++
	}

	// stored slots kept as they are count as committed again
	if !buf.DeletesAll() {
		for _, intent := range buf.Existing() {
			if _, err := store.GetRoutine(ctx, ownerID, intent.Ref); err != nil {
				return nil, storeErr(fmt.Sprintf("check routine %d", intent.Ref), err)
			}
			weekdays[intent.Key.Weekday] = true
		}
	}

	var period schedule.ActivePeriod
	if p, ok := buf.Period(); ok {
		period = schedule.ActivePeriod{OwnerID: ownerID, Start: p.Start, End: p.End}
		if err := store.SavePeriod(ctx, period); err != nil {
			return nil, storeErr("save period", err)
		}
		result.PeriodChanged = true
	} else {
		current, err := store.GetOrCreatePeriod(ctx, schedule.DefaultActivePeriod(ownerID, c.Now()))
		if err != nil {
			return nil, storeErr("get period", err)
		}
		period = *current
	}
	result.Period = Period{Start: period.Start, End: period.End}

	for wd := schedule.Monday; wd <= schedule.Sunday; wd++ {
		if weekdays[wd] {
			result.Weekdays = append(result.Weekdays, wd)
		}
	}
	if len(weekdays) == 0 {
		return result, nil
	}

	overrides, err := store.ListOverrides(ctx, ownerID)
	if err != nil {
		return nil, storeErr("list overrides", err)
	}
	// without overwrite only a newly created slot hides the dated overrides behind a tombstone
	addTombstones := len(buf.Creates()) > 0
	seen := make(map[time.Time]bool)
	for _, da := range overrides {
		date := schedule.DateOf(da.Date)
		if seen[date] || !period.Contains(date) || !weekdays[schedule.WeekdayOf(date)] {
			continue
		}
		seen[date] = true

		if opts.Overwrite {
			removed, err := store.DeleteDatesOn(ctx, ownerID, date)
			if err != nil {
				return nil, storeErr("delete dates", err)
			}
			result.RemovedOverrides += removed
			continue
		}
		if !addTombstones {
			continue
		}

		dates, err := store.ListDatesOn(ctx, ownerID, date)
		if err != nil {
			return nil, storeErr("list dates", err)
		}
		if hasTombstone(dates) {
			continue
		}
		if _, err := store.AddDate(ctx, schedule.Tombstone(ownerID, date)); err != nil {
			return nil, storeErr("add tombstone", err)
		}
		result.AddedTombstones++
	}

	return result, nil
}

func hasTombstone(dates []schedule.DateAssignment) bool {
	for _, da := range dates {
		if da.IsTombstone() {
			return true
		}
	}
	return false
}

// ValidateFinalState checks the weekly routine the buffer would leave behind, stored slots
// included, and the pending period. Every violation is reported.
func ValidateFinalState(buf *Buffer, stored []schedule.RoutineAssignment) error {
	replaced := make(map[int]bool)
	for _, intent := range buf.Deletes() {
		replaced[intent.Ref] = true
	}
	for _, intent := range buf.Updates() {
		replaced[intent.Ref] = true
	}

	days := make(map[schedule.Weekday][]schedule.Slot)
	if !buf.DeletesAll() {
		for _, ra := range stored {
			if !replaced[ra.ID] {
				days[ra.Weekday] = append(days[ra.Weekday], ra.Slot)
			}
		}
	}

	var errs error
	check := func(weekday schedule.Weekday, slot schedule.Slot) {
		if !weekday.Valid() {
			errs = multierr.Append(errs, fmt.Errorf("%w: invalid weekday %d", schedule.ErrValidation, weekday))
			return
		}
		slot = slot.Normalized()
		if err := schedule.ValidateSlot(slot, days[weekday]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %w", weekday, slot, err))
		}
		days[weekday] = append(days[weekday], slot)
	}
	for _, intent := range buf.Updates() {
		check(intent.Key.Weekday, intent.Slot)
	}
	for _, intent := range buf.Creates() {
		check(intent.Key.Weekday, intent.Slot)
	}

	if p, ok := buf.Period(); ok {
		errs = multierr.Append(errs, schedule.ValidatePeriod(p.Start, p.End))
	}

	return errs
}
