package routine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutplan/internal/schedule"
	"github.com/2beens/workoutplan/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

var ErrSlotNotFound = errors.New("routine slot not found")

// DayPlan lists the pending slots of one weekday.
type DayPlan struct {
	Weekday schedule.Weekday `json:"weekday"`
	Slots   []Intent         `json:"slots"`
}

type PeriodView struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Pending bool      `json:"pending"`
}

// WeekPlan is the routine as it would look after a commit. Rows[k] holds the k-th slot of
// every weekday, Monday first, with nil where a weekday has fewer slots.
type WeekPlan struct {
	Days       []DayPlan   `json:"days"`
	Rows       [][]*Intent `json:"rows"`
	EmptyDays  int         `json:"emptyDays"`
	Period     PeriodView  `json:"period"`
	HasChanges bool        `json:"hasChanges"`
}

// Service stages routine edits in a session buffer and commits them. Buffers are passed in by
// the caller, which loads and saves them around each request.
type Service struct {
	store     schedule.TxStore
	committer *Committer
	metrics   *metrics.Manager
	now       func() time.Time
}

func NewService(store schedule.TxStore, metricsManager *metrics.Manager) *Service {
	return &Service{
		store:     store,
		committer: NewCommitter(store),
		metrics:   metricsManager,
		now:       time.Now,
	}
}

// track mirrors stored routine slots the buffer does not know about yet as existing intents.
func (s *Service) track(ctx context.Context, ownerID int, buf *Buffer) error {
	stored, err := s.store.ListRoutines(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list routines: %w", err)
	}
	for _, ra := range stored {
		if !buf.HasLiveEntity(ra.ID) {
			continue
		}
		buf.Add(Intent{
			Kind: KindExisting,
			Key:  Key{Weekday: ra.Weekday, Seq: ra.ID},
			Ref:  ra.ID,
			Slot: ra.Slot,
		})
	}
	return nil
}

func (s *Service) WeekPlan(ctx context.Context, ownerID int, buf *Buffer) (*WeekPlan, error) {
	if err := s.track(ctx, ownerID, buf); err != nil {
		return nil, err
	}

	plan := &WeekPlan{
		Days:       make([]DayPlan, 0, 7),
		HasChanges: buf.HasChanges(),
	}
	maxCount := 0
	for wd := schedule.Monday; wd <= schedule.Sunday; wd++ {
		slots := buf.ForWeekday(wd)
		plan.Days = append(plan.Days, DayPlan{Weekday: wd, Slots: slots})
		if len(slots) == 0 {
			plan.EmptyDays++
		}
		maxCount = max(maxCount, len(slots))
	}

	plan.Rows = make([][]*Intent, maxCount)
	for i := range maxCount {
		row := make([]*Intent, len(plan.Days))
		for d, day := range plan.Days {
			if i < len(day.Slots) {
				row[d] = &day.Slots[i]
			}
		}
		plan.Rows[i] = row
	}

	period, err := s.Period(ctx, ownerID, buf)
	if err != nil {
		return nil, err
	}
	plan.Period = *period

	return plan, nil
}

// Period returns the pending active period, or the stored one if none is pending.
func (s *Service) Period(ctx context.Context, ownerID int, buf *Buffer) (*PeriodView, error) {
	if p, ok := buf.Period(); ok {
		return &PeriodView{Start: p.Start, End: p.End, Pending: true}, nil
	}
	stored, err := s.store.GetOrCreatePeriod(ctx, schedule.DefaultActivePeriod(ownerID, s.now()))
	if err != nil {
		return nil, fmt.Errorf("get period: %w", err)
	}
	return &PeriodView{Start: stored.Start, End: stored.End}, nil
}

func siblings(buf *Buffer, weekday schedule.Weekday, skip func(Intent) bool) []schedule.Slot {
	var slots []schedule.Slot
	for _, intent := range buf.ForWeekday(weekday) {
		if skip != nil && skip(intent) {
			continue
		}
		slots = append(slots, intent.Slot)
	}
	return slots
}

// CreateSlot stages a new slot on the weekday. The returned key addresses it in later edits.
func (s *Service) CreateSlot(ctx context.Context, ownerID int, buf *Buffer, weekday schedule.Weekday, slot schedule.Slot) (Key, error) {
	if !weekday.Valid() {
		return Key{}, fmt.Errorf("%w: invalid weekday %d", schedule.ErrValidation, weekday)
	}
	if err := s.track(ctx, ownerID, buf); err != nil {
		return Key{}, err
	}

	slot = slot.Normalized()
	if err := schedule.ValidateSlot(slot, siblings(buf, weekday, nil)); err != nil {
		return Key{}, err
	}

	return buf.Add(Intent{
		Kind: KindCreate,
		Key:  Key{Weekday: weekday},
		Slot: slot,
	}), nil
}

// UpdateSlot changes a staged slot, possibly moving it to another weekday. Stored slots become
// updates, created ones stay creates.
func (s *Service) UpdateSlot(ctx context.Context, ownerID int, buf *Buffer, kind Kind, key Key, weekday schedule.Weekday, slot schedule.Slot) (Key, error) {
	if !weekday.Valid() {
		return Key{}, fmt.Errorf("%w: invalid weekday %d", schedule.ErrValidation, weekday)
	}
	if err := s.track(ctx, ownerID, buf); err != nil {
		return Key{}, err
	}

	current, ok := buf.Find(kind, key)
	if !ok {
		switch kind {
		case KindExisting:
			current, ok = buf.Find(KindUpdate, key)
		case KindUpdate:
			current, ok = buf.Find(KindExisting, key)
		}
	}
	if !ok || current.Kind == KindDelete {
		return Key{}, ErrSlotNotFound
	}

	slot = slot.Normalized()
	others := siblings(buf, weekday, func(i Intent) bool {
		return i.Kind == current.Kind && i.Key.Seq == current.Key.Seq
	})
	if err := schedule.ValidateSlot(slot, others); err != nil {
		return Key{}, err
	}

	if current.Kind == KindCreate {
		return buf.Add(Intent{
			Kind: KindCreate,
			Key:  Key{Weekday: weekday, Seq: current.Key.Seq},
			Slot: slot,
		}), nil
	}
	return buf.Add(Intent{
		Kind: KindUpdate,
		Key:  Key{Weekday: weekday, Seq: current.Ref},
		Ref:  current.Ref,
		Slot: slot,
	}), nil
}

func (s *Service) DeleteSlot(ctx context.Context, ownerID int, buf *Buffer, kind Kind, key Key) error {
	if err := s.track(ctx, ownerID, buf); err != nil {
		return err
	}
	if !buf.Delete(kind, key) {
		return ErrSlotNotFound
	}
	return nil
}

func (s *Service) DeleteAll(ctx context.Context, ownerID int, buf *Buffer) error {
	if err := s.track(ctx, ownerID, buf); err != nil {
		return err
	}
	buf.DeleteAll()
	return nil
}

func (s *Service) SetPeriod(buf *Buffer, start, end time.Time) error {
	if err := schedule.ValidatePeriod(start, end); err != nil {
		return err
	}
	buf.SetPeriod(start, end)
	return nil
}

// Confirm commits the buffer and empties it. A failed commit leaves the buffer as it was.
func (s *Service) Confirm(ctx context.Context, ownerID int, buf *Buffer, opts CommitOptions) (*CommitResult, error) {
	result, err := s.committer.Commit(ctx, ownerID, buf, opts)
	if err != nil {
		outcome := metrics.CommitOutcomeFailed
		if errors.Is(err, schedule.ErrValidation) {
			outcome = metrics.CommitOutcomeInvalid
		} else {
			log.Errorf("routine commit [%d]: %s", ownerID, err)
		}
		s.countCommit(outcome)
		return nil, err
	}

	buf.Reset()
	s.countCommit(metrics.CommitOutcomeOK)
	return result, nil
}

func (s *Service) countCommit(outcome string) {
	if s.metrics != nil {
		s.metrics.CounterRoutineCommits.WithLabelValues(outcome).Inc()
	}
}

// Discard drops every staged edit.
func (s *Service) Discard(buf *Buffer) {
	buf.Reset()
}
