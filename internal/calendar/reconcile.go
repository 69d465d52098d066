package calendar

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/2beens/workoutplan/internal/schedule"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type Source string

const (
	SourceRoutine Source = "routine"
	SourceDate    Source = "date"
)

// Entry is one body part scheduled on a date, with the assignment it comes from.
type Entry struct {
	Source Source `json:"source"`
	ID     int    `json:"id"`
	schedule.Slot
}

type DaySchedule struct {
	Date    time.Time        `json:"date"`
	Weekday schedule.Weekday `json:"weekday"`
	Entries []Entry          `json:"entries"`
}

func (d DaySchedule) Slots() []schedule.Slot {
	slots := make([]schedule.Slot, 0, len(d.Entries))
	for _, e := range d.Entries {
		slots = append(slots, e.Slot)
	}
	return slots
}

type scheduleReader interface {
	ListRoutines(ctx context.Context, ownerID int) ([]schedule.RoutineAssignment, error)
	ListDatesBetween(ctx context.Context, ownerID int, from, to time.Time) ([]schedule.DateAssignment, error)
	GetOrCreatePeriod(ctx context.Context, def schedule.ActivePeriod) (*schedule.ActivePeriod, error)
}

// Reconciler merges the weekly routine with dated assignments into per date schedules.
type Reconciler struct {
	store scheduleReader
	// ability to inject the clock (for tests)
	Now func() time.Time
}

func NewReconciler(store scheduleReader) *Reconciler {
	return &Reconciler{
		store: store,
		Now:   time.Now,
	}
}

func (r *Reconciler) today() time.Time {
	return schedule.DateOf(r.Now())
}

// Reconcile computes the schedule of one date from the routine slots of its weekday and
// the date's own assignments:
//   - without routine slots, or outside the active period, only dated slots count
//   - a date without assignments follows the routine
//   - a tombstone hides the routine, the dated slots stay
//   - otherwise dated and routine slots add up, dated first, equal slots once
func Reconcile(date time.Time, period schedule.ActivePeriod, routines []schedule.RoutineAssignment, dates []schedule.DateAssignment) []Entry {
	entries := make([]Entry, 0, len(dates)+len(routines))
	tombstone := false
	for _, da := range dates {
		if da.IsTombstone() {
			tombstone = true
			continue
		}
		entries = append(entries, Entry{Source: SourceDate, ID: da.ID, Slot: da.Slot})
	}

	if len(routines) == 0 || !period.Contains(date) || tombstone {
		return entries
	}

	for _, ra := range routines {
		duplicate := slices.ContainsFunc(entries, func(e Entry) bool {
			return e.Slot.Equal(ra.Slot)
		})
		if !duplicate {
			entries = append(entries, Entry{Source: SourceRoutine, ID: ra.ID, Slot: ra.Slot})
		}
	}
	return entries
}

func (r *Reconciler) period(ctx context.Context, ownerID int) (schedule.ActivePeriod, error) {
	period, err := r.store.GetOrCreatePeriod(ctx, schedule.DefaultActivePeriod(ownerID, r.today()))
	if err != nil {
		return schedule.ActivePeriod{}, fmt.Errorf("get period: %w", err)
	}
	return *period, nil
}

func (r *Reconciler) Day(ctx context.Context, ownerID int, date time.Time) ([]Entry, error) {
	days, err := r.Days(ctx, ownerID, []time.Time{date})
	if err != nil {
		return nil, err
	}
	return days[0].Entries, nil
}

// Days reconciles the given dates, in the given order, with one read per assignment kind.
func (r *Reconciler) Days(ctx context.Context, ownerID int, dates []time.Time) (_ []DaySchedule, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calendar.reconcile.days")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("dates", len(dates)))

	if len(dates) == 0 {
		return []DaySchedule{}, nil
	}

	from, to := schedule.DateOf(dates[0]), schedule.DateOf(dates[0])
	for _, d := range dates[1:] {
		d = schedule.DateOf(d)
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}

	period, err := r.period(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	routines, err := r.store.ListRoutines(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	byWeekday := make(map[schedule.Weekday][]schedule.RoutineAssignment)
	for _, ra := range routines {
		byWeekday[ra.Weekday] = append(byWeekday[ra.Weekday], ra)
	}

	assignments, err := r.store.ListDatesBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	byDate := make(map[time.Time][]schedule.DateAssignment)
	for _, da := range assignments {
		d := schedule.DateOf(da.Date)
		byDate[d] = append(byDate[d], da)
	}

	days := make([]DaySchedule, 0, len(dates))
	for _, d := range dates {
		d = schedule.DateOf(d)
		weekday := schedule.WeekdayOf(d)
		days = append(days, DaySchedule{
			Date:    d,
			Weekday: weekday,
			Entries: Reconcile(d, period, byWeekday[weekday], byDate[d]),
		})
	}
	return days, nil
}

type CellKind string

const (
	CellEntry        CellKind = "entry"
	CellEmpty        CellKind = "empty"
	CellContinuation CellKind = "continuation"
)

type Cell struct {
	Kind  CellKind `json:"kind"`
	Entry *Entry   `json:"entry,omitempty"`
}

// Transpose turns per day entry lists into rows: row k holds the k-th entry of every day.
// A day out of entries keeps continuation cells below its last entry; a day without entries
// stays empty.
func Transpose(days []DaySchedule) [][]Cell {
	rows := 0
	for _, d := range days {
		rows = max(rows, len(d.Entries))
	}

	cells := make([][]Cell, rows)
	for k := range rows {
		row := make([]Cell, len(days))
		for i, d := range days {
			switch {
			case k < len(d.Entries):
				entry := d.Entries[k]
				row[i] = Cell{Kind: CellEntry, Entry: &entry}
			case len(d.Entries) > 0:
				row[i] = Cell{Kind: CellContinuation}
			default:
				row[i] = Cell{Kind: CellEmpty}
			}
		}
		cells[k] = row
	}
	return cells
}

// WeekStart returns the Monday of the date's week.
func WeekStart(date time.Time) time.Time {
	d := schedule.DateOf(date)
	return d.AddDate(0, 0, -int(schedule.WeekdayOf(d)))
}

type WeekView struct {
	Start        time.Time     `json:"start"`
	Days         []DaySchedule `json:"days"`
	Rows         [][]Cell      `json:"rows"`
	PreviousWeek time.Time     `json:"previousWeek"`
	NextWeek     time.Time     `json:"nextWeek"`
	Today        *DaySchedule  `json:"today,omitempty"`
	// TodayWeekday is today's ISO weekday (1 = Monday) if the week contains today, 0 otherwise.
	TodayWeekday int `json:"todayWeekday"`
}

func (r *Reconciler) Week(ctx context.Context, ownerID int, anyDate time.Time) (*WeekView, error) {
	start := WeekStart(anyDate)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	days, err := r.Days(ctx, ownerID, dates)
	if err != nil {
		return nil, err
	}

	view := &WeekView{
		Start:        start,
		Days:         days,
		Rows:         Transpose(days),
		PreviousWeek: start.AddDate(0, 0, -7),
		NextWeek:     start.AddDate(0, 0, 7),
	}
	today := r.today()
	for i := range days {
		if days[i].Date.Equal(today) {
			view.Today = &days[i]
			view.TodayWeekday = int(days[i].Weekday) + 1
		}
	}
	return view, nil
}

type MonthView struct {
	Year          int             `json:"year"`
	Month         time.Month      `json:"month"`
	Weeks         [][]DaySchedule `json:"weeks"`
	PreviousMonth time.Time       `json:"previousMonth"`
	NextMonth     time.Time       `json:"nextMonth"`
	Today         time.Time       `json:"today"`
}

// MonthDates returns the Monday first weeks covering the month, including the neighbouring
// months' days that fill the first and last week.
func MonthDates(year int, month time.Month) [][]time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	var weeks [][]time.Time
	for start := WeekStart(first); !start.After(last); start = start.AddDate(0, 0, 7) {
		week := make([]time.Time, 7)
		for i := range week {
			week[i] = start.AddDate(0, 0, i)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

func (r *Reconciler) Month(ctx context.Context, ownerID int, year int, month time.Month) (*MonthView, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: invalid month %d", schedule.ErrValidation, month)
	}

	weeks := MonthDates(year, month)
	dates := make([]time.Time, 0, len(weeks)*7)
	for _, w := range weeks {
		dates = append(dates, w...)
	}

	days, err := r.Days(ctx, ownerID, dates)
	if err != nil {
		return nil, err
	}

	view := &MonthView{
		Year:          year,
		Month:         month,
		Weeks:         make([][]DaySchedule, 0, len(weeks)),
		PreviousMonth: time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC),
		NextMonth:     time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC),
		Today:         r.today(),
	}
	for i := 0; i < len(days); i += 7 {
		view.Weeks = append(view.Weeks, days[i:i+7])
	}
	return view, nil
}

type TodayView struct {
	DaySchedule
	// ISOWeekday counts from 1 = Monday.
	ISOWeekday int `json:"isoWeekday"`
}

func (r *Reconciler) Today(ctx context.Context, ownerID int) (*TodayView, error) {
	days, err := r.Days(ctx, ownerID, []time.Time{r.today()})
	if err != nil {
		return nil, err
	}
	return &TodayView{
		DaySchedule: days[0],
		ISOWeekday:  int(days[0].Weekday) + 1,
	}, nil
}
