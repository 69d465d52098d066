package calendar

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/2beens/workoutplan/internal/schedule"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=calendar_test

type logChecker interface {
	HasEntries(ctx context.Context, ownerID int, slot schedule.Slot, date time.Time) (bool, error)
}

// Service edits the schedule of single dates. Every edit runs in one store transaction.
type Service struct {
	store schedule.TxStore
	logs  logChecker
	// ability to inject the clock (for tests)
	Now func() time.Time
}

func NewService(store schedule.TxStore, logs logChecker) *Service {
	return &Service{
		store: store,
		logs:  logs,
		Now:   time.Now,
	}
}

func (s *Service) reconciler(store scheduleReader) *Reconciler {
	return &Reconciler{store: store, Now: s.Now}
}

// Reconciler reads through the service's store.
func (s *Service) Reconciler() *Reconciler {
	return s.reconciler(s.store)
}

func withoutEntry(entries []Entry, source Source, id int) []schedule.Slot {
	var slots []schedule.Slot
	for _, e := range entries {
		if e.Source == source && e.ID == id {
			continue
		}
		slots = append(slots, e.Slot)
	}
	return slots
}

// AddToDay schedules a slot on one date, on top of what the date already shows.
func (s *Service) AddToDay(ctx context.Context, ownerID int, date time.Time, slot schedule.Slot) (*schedule.DateAssignment, error) {
	date = schedule.DateOf(date)
	slot = slot.Normalized()

	var added *schedule.DateAssignment
	err := s.store.InTx(ctx, func(store schedule.Store) error {
		entries, err := s.reconciler(store).Day(ctx, ownerID, date)
		if err != nil {
			return err
		}
		if err := schedule.ValidateSlot(slot, DaySchedule{Entries: entries}.Slots()); err != nil {
			return err
		}
		added, err = store.AddDate(ctx, schedule.DateAssignment{OwnerID: ownerID, Date: date, Slot: slot})
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *Service) UpdateDateAssignment(ctx context.Context, ownerID, id int, slot schedule.Slot) (*schedule.DateAssignment, error) {
	slot = slot.Normalized()

	var updated *schedule.DateAssignment
	err := s.store.InTx(ctx, func(store schedule.Store) error {
		da, err := store.GetDate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if da.IsTombstone() {
			return schedule.ErrDateAssignmentNotFound
		}

		entries, err := s.reconciler(store).Day(ctx, ownerID, da.Date)
		if err != nil {
			return err
		}
		if err := schedule.ValidateSlot(slot, withoutEntry(entries, SourceDate, id)); err != nil {
			return err
		}

		da.Slot = slot
		if err := store.UpdateDate(ctx, da); err != nil {
			return err
		}
		updated = da
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// materialize pins the routine slots of a date that are not in drop as dated assignments
// and hides the routine on that date with a tombstone.
func materialize(ctx context.Context, store schedule.Store, ownerID int, date time.Time, entries []Entry, drop []int) error {
	for _, e := range entries {
		if e.Source != SourceRoutine || slices.Contains(drop, e.ID) {
			continue
		}
		if _, err := store.AddDate(ctx, schedule.DateAssignment{OwnerID: ownerID, Date: date, Slot: e.Slot}); err != nil {
			return fmt.Errorf("materialize routine slot %d: %w", e.ID, err)
		}
	}

	dates, err := store.ListDatesOn(ctx, ownerID, date)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(dates, schedule.DateAssignment.IsTombstone) {
		return nil
	}
	_, err = store.AddDate(ctx, schedule.Tombstone(ownerID, date))
	return err
}

func scheduledRoutine(entries []Entry, routineID int) bool {
	return slices.ContainsFunc(entries, func(e Entry) bool {
		return e.Source == SourceRoutine && e.ID == routineID
	})
}

// OverrideRoutineSlot replaces one routine slot on a single date; the weekly routine and
// the other dates of that weekday keep it.
func (s *Service) OverrideRoutineSlot(ctx context.Context, ownerID, routineID int, date time.Time, slot schedule.Slot) (*schedule.DateAssignment, error) {
	date = schedule.DateOf(date)
	slot = slot.Normalized()

	var added *schedule.DateAssignment
	err := s.store.InTx(ctx, func(store schedule.Store) error {
		entries, err := s.reconciler(store).Day(ctx, ownerID, date)
		if err != nil {
			return err
		}
		if !scheduledRoutine(entries, routineID) {
			return fmt.Errorf("%w: not scheduled on %s", schedule.ErrRoutineNotFound, date.Format(schedule.DateLayout))
		}
		if err := schedule.ValidateSlot(slot, withoutEntry(entries, SourceRoutine, routineID)); err != nil {
			return err
		}

		if err := materialize(ctx, store, ownerID, date, entries, []int{routineID}); err != nil {
			return err
		}
		added, err = store.AddDate(ctx, schedule.DateAssignment{OwnerID: ownerID, Date: date, Slot: slot})
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveFromDay removes dated slots and hides routine slots of one date.
func (s *Service) RemoveFromDay(ctx context.Context, ownerID int, date time.Time, dateIDs, routineIDs []int) error {
	date = schedule.DateOf(date)

	return s.store.InTx(ctx, func(store schedule.Store) error {
		for _, id := range dateIDs {
			da, err := store.GetDate(ctx, ownerID, id)
			if err != nil {
				return err
			}
			if !schedule.SameDate(da.Date, date) {
				return fmt.Errorf("%w: %d is not on %s", schedule.ErrDateAssignmentNotFound, id, date.Format(schedule.DateLayout))
			}
			if err := store.DeleteDate(ctx, ownerID, id); err != nil {
				return err
			}
		}

		if len(routineIDs) == 0 {
			return nil
		}

		entries, err := s.reconciler(store).Day(ctx, ownerID, date)
		if err != nil {
			return err
		}
		for _, id := range routineIDs {
			if !scheduledRoutine(entries, id) {
				return fmt.Errorf("%w: %d not scheduled on %s", schedule.ErrRoutineNotFound, id, date.Format(schedule.DateLayout))
			}
		}
		return materialize(ctx, store, ownerID, date, entries, routineIDs)
	})
}

type ClearResult struct {
	Routines int64 `json:"routines"`
	Dates    int64 `json:"dates"`
}

// ClearAll removes the whole schedule of the owner, weekly and dated.
func (s *Service) ClearAll(ctx context.Context, ownerID int) (*ClearResult, error) {
	result := &ClearResult{}
	err := s.store.InTx(ctx, func(store schedule.Store) error {
		var err error
		if result.Routines, err = store.DeleteAllRoutines(ctx, ownerID); err != nil {
			return err
		}
		result.Dates, err = store.DeleteAllDates(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("calendar: cleared schedule of %d: %d routines, %d dates", ownerID, result.Routines, result.Dates)
	return result, nil
}

type DetailEntry struct {
	Entry
	HasLog bool `json:"hasLog"`
}

// DayDetail lists a date's schedule, telling for each slot whether exercises were logged.
func (s *Service) DayDetail(ctx context.Context, ownerID int, date time.Time) ([]DetailEntry, error) {
	date = schedule.DateOf(date)
	entries, err := s.Reconciler().Day(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}

	details := make([]DetailEntry, 0, len(entries))
	for _, e := range entries {
		hasLog, err := s.logs.HasEntries(ctx, ownerID, e.Slot, date)
		if err != nil {
			return nil, fmt.Errorf("check exercise log: %w", err)
		}
		details = append(details, DetailEntry{Entry: e, HasLog: hasLog})
	}
	return details, nil
}
