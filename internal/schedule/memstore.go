package schedule

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory TxStore, used by tests and by the server when no database is configured.
// Transactions are serialized; a failed one restores the state it started from.
type MemStore struct {
	txMu sync.Mutex

	mu       sync.Mutex
	nextID   int
	routines map[int]RoutineAssignment
	dates    map[int]DateAssignment
	periods  map[int]ActivePeriod
	failures map[string]error
}

var _ TxStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		routines: make(map[int]RoutineAssignment),
		dates:    make(map[int]DateAssignment),
		periods:  make(map[int]ActivePeriod),
		failures: make(map[string]error),
	}
}

// InjectError makes the next call of the named method (e.g. "AddDate") fail with err.
func (s *MemStore) InjectError(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

type memSnapshot struct {
	nextID   int
	routines map[int]RoutineAssignment
	dates    map[int]DateAssignment
	periods  map[int]ActivePeriod
}

func (s *MemStore) InTx(_ context.Context, fn func(store Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := memSnapshot{
		nextID:   s.nextID,
		routines: maps.Clone(s.routines),
		dates:    maps.Clone(s.dates),
		periods:  maps.Clone(s.periods),
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.nextID = snap.nextID
		s.routines = snap.routines
		s.dates = snap.dates
		s.periods = snap.periods
		s.mu.Unlock()
		return err
	}
	return nil
}

// fail must be called with mu held.
func (s *MemStore) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *MemStore) AddRoutine(_ context.Context, ra RoutineAssignment) (*RoutineAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddRoutine"); err != nil {
		return nil, err
	}
	s.nextID++
	ra.ID = s.nextID
	s.routines[ra.ID] = ra
	return &ra, nil
}

func (s *MemStore) GetRoutine(_ context.Context, ownerID, id int) (*RoutineAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetRoutine"); err != nil {
		return nil, err
	}
	ra, ok := s.routines[id]
	if !ok || ra.OwnerID != ownerID {
		return nil, ErrRoutineNotFound
	}
	return &ra, nil
}

func (s *MemStore) UpdateRoutine(_ context.Context, ra *RoutineAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateRoutine"); err != nil {
		return err
	}
	existing, ok := s.routines[ra.ID]
	if !ok || existing.OwnerID != ra.OwnerID {
		return ErrRoutineNotFound
	}
	s.routines[ra.ID] = *ra
	return nil
}

func (s *MemStore) DeleteRoutine(_ context.Context, ownerID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteRoutine"); err != nil {
		return err
	}
	existing, ok := s.routines[id]
	if !ok || existing.OwnerID != ownerID {
		return ErrRoutineNotFound
	}
	delete(s.routines, id)
	return nil
}

func (s *MemStore) DeleteAllRoutines(_ context.Context, ownerID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteAllRoutines"); err != nil {
		return 0, err
	}
	var deleted int64
	for id, ra := range s.routines {
		if ra.OwnerID == ownerID {
			delete(s.routines, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemStore) ListRoutines(_ context.Context, ownerID int) ([]RoutineAssignment, error) {
	return s.listRoutines("ListRoutines", func(ra RoutineAssignment) bool {
		return ra.OwnerID == ownerID
	})
}

func (s *MemStore) ListRoutinesByWeekday(_ context.Context, ownerID int, weekday Weekday) ([]RoutineAssignment, error) {
	return s.listRoutines("ListRoutinesByWeekday", func(ra RoutineAssignment) bool {
		return ra.OwnerID == ownerID && ra.Weekday == weekday
	})
}

func (s *MemStore) ListRoutinesByBodyPart(_ context.Context, ownerID int, part BodyPart) ([]RoutineAssignment, error) {
	return s.listRoutines("ListRoutinesByBodyPart", func(ra RoutineAssignment) bool {
		return ra.OwnerID == ownerID && ra.BodyPart == part
	})
}

func (s *MemStore) listRoutines(op string, match func(RoutineAssignment) bool) ([]RoutineAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return nil, err
	}
	var routines []RoutineAssignment
	for _, ra := range s.routines {
		if match(ra) {
			routines = append(routines, ra)
		}
	}
	sort.Slice(routines, func(i, j int) bool {
		if routines[i].Weekday != routines[j].Weekday {
			return routines[i].Weekday < routines[j].Weekday
		}
		return routines[i].ID < routines[j].ID
	})
	return routines, nil
}

func (s *MemStore) AddDate(_ context.Context, da DateAssignment) (*DateAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddDate"); err != nil {
		return nil, err
	}
	s.nextID++
	da.ID = s.nextID
	da.Date = DateOf(da.Date)
	s.dates[da.ID] = da
	return &da, nil
}

func (s *MemStore) GetDate(_ context.Context, ownerID, id int) (*DateAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetDate"); err != nil {
		return nil, err
	}
	da, ok := s.dates[id]
	if !ok || da.OwnerID != ownerID {
		return nil, ErrDateAssignmentNotFound
	}
	return &da, nil
}

func (s *MemStore) UpdateDate(_ context.Context, da *DateAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateDate"); err != nil {
		return err
	}
	existing, ok := s.dates[da.ID]
	if !ok || existing.OwnerID != da.OwnerID {
		return ErrDateAssignmentNotFound
	}
	updated := *da
	updated.Date = DateOf(updated.Date)
	s.dates[da.ID] = updated
	return nil
}

func (s *MemStore) DeleteDate(_ context.Context, ownerID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteDate"); err != nil {
		return err
	}
	existing, ok := s.dates[id]
	if !ok || existing.OwnerID != ownerID {
		return ErrDateAssignmentNotFound
	}
	delete(s.dates, id)
	return nil
}

func (s *MemStore) DeleteDatesOn(_ context.Context, ownerID int, date time.Time) (int64, error) {
	return s.deleteDates("DeleteDatesOn", func(da DateAssignment) bool {
		return da.OwnerID == ownerID && SameDate(da.Date, date)
	})
}

func (s *MemStore) DeleteTombstonesOn(_ context.Context, ownerID int, date time.Time) (int64, error) {
	return s.deleteDates("DeleteTombstonesOn", func(da DateAssignment) bool {
		return da.OwnerID == ownerID && SameDate(da.Date, date) && da.IsTombstone()
	})
}

func (s *MemStore) DeleteAllDates(_ context.Context, ownerID int) (int64, error) {
	return s.deleteDates("DeleteAllDates", func(da DateAssignment) bool {
		return da.OwnerID == ownerID
	})
}

func (s *MemStore) deleteDates(op string, match func(DateAssignment) bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return 0, err
	}
	var deleted int64
	for id, da := range s.dates {
		if match(da) {
			delete(s.dates, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemStore) ListDatesOn(_ context.Context, ownerID int, date time.Time) ([]DateAssignment, error) {
	return s.listDates("ListDatesOn", func(da DateAssignment) bool {
		return da.OwnerID == ownerID && SameDate(da.Date, date)
	})
}

func (s *MemStore) ListDatesBetween(_ context.Context, ownerID int, from, to time.Time) ([]DateAssignment, error) {
	from, to = DateOf(from), DateOf(to)
	return s.listDates("ListDatesBetween", func(da DateAssignment) bool {
		return da.OwnerID == ownerID && !da.Date.Before(from) && !da.Date.After(to)
	})
}

func (s *MemStore) ListOverrides(_ context.Context, ownerID int) ([]DateAssignment, error) {
	return s.listDates("ListOverrides", func(da DateAssignment) bool {
		return da.OwnerID == ownerID && !da.IsTombstone()
	})
}

func (s *MemStore) ListDatesByBodyPart(_ context.Context, ownerID int, part BodyPart) ([]DateAssignment, error) {
	return s.listDates("ListDatesByBodyPart", func(da DateAssignment) bool {
		return da.OwnerID == ownerID && da.BodyPart == part
	})
}

func (s *MemStore) listDates(op string, match func(DateAssignment) bool) ([]DateAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return nil, err
	}
	var dates []DateAssignment
	for _, da := range s.dates {
		if match(da) {
			dates = append(dates, da)
		}
	}
	slices.SortFunc(dates, func(a, b DateAssignment) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return dates, nil
}

func (s *MemStore) GetOrCreatePeriod(_ context.Context, def ActivePeriod) (*ActivePeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetOrCreatePeriod"); err != nil {
		return nil, err
	}
	period, ok := s.periods[def.OwnerID]
	if !ok {
		period = ActivePeriod{OwnerID: def.OwnerID, Start: DateOf(def.Start), End: DateOf(def.End)}
		s.periods[def.OwnerID] = period
	}
	return &period, nil
}

func (s *MemStore) SavePeriod(_ context.Context, period ActivePeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SavePeriod"); err != nil {
		return err
	}
	period.Start = DateOf(period.Start)
	period.End = DateOf(period.End)
	s.periods[period.OwnerID] = period
	return nil
}
