package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxSlotsPerDay is the limit of trained body parts on one weekday or date.
	MaxSlotsPerDay  = 5
	MaxDetailLength = 50
	DateLayout      = "2006-01-02"
)

// Weekday counts from Monday, unlike time.Weekday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if w := Weekday(n); w.Valid() {
			return w, nil
		}
		return 0, fmt.Errorf("weekday out of range: %d", n)
	}
	for i, name := range weekdayNames {
		if name == s || name[:3] == s {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return "weekday(" + strconv.Itoa(int(w)) + ")"
	}
	return weekdayNames[w]
}

type BodyPart string

const (
	Chest     BodyPart = "chest"
	Back      BodyPart = "back"
	Shoulders BodyPart = "shoulders"
	Arms      BodyPart = "arms"
	Legs      BodyPart = "legs"
	Abs       BodyPart = "abs"
	FullBody  BodyPart = "full_body"
	UpperBody BodyPart = "upper_body"
)

var BodyParts = []BodyPart{Chest, Back, Shoulders, Arms, Legs, Abs, FullBody, UpperBody}

func (b BodyPart) Valid() bool {
	for _, p := range BodyParts {
		if p == b {
			return true
		}
	}
	return false
}

// Slot is a trained body part with an optional sub-part, e.g. chest / upper.
type Slot struct {
	BodyPart BodyPart `json:"bodyPart"`
	Detail   string   `json:"detail"`
}

func (s Slot) Equal(other Slot) bool {
	return s.BodyPart == other.BodyPart && s.Detail == other.Detail
}

func (s Slot) Normalized() Slot {
	return Slot{
		BodyPart: BodyPart(strings.ToLower(strings.TrimSpace(string(s.BodyPart)))),
		Detail:   strings.TrimSpace(s.Detail),
	}
}

func (s Slot) String() string {
	if s.Detail == "" {
		return string(s.BodyPart)
	}
	return string(s.BodyPart) + "/" + s.Detail
}

// RoutineAssignment is a recurring weekly slot.
type RoutineAssignment struct {
	ID      int     `json:"id"`
	OwnerID int     `json:"ownerId"`
	Weekday Weekday `json:"weekday"`
	Slot
}

// DateAssignment overrides the schedule of one calendar date. An empty body part
// makes it a tombstone: the date is cleared of routine slots.
type DateAssignment struct {
	ID      int       `json:"id"`
	OwnerID int       `json:"ownerId"`
	Date    time.Time `json:"date"`
	Slot
}

func (d DateAssignment) IsTombstone() bool {
	return d.BodyPart == ""
}

func Tombstone(ownerID int, date time.Time) DateAssignment {
	return DateAssignment{
		OwnerID: ownerID,
		Date:    DateOf(date),
	}
}

// ActivePeriod bounds the dates on which routine assignments apply, both ends inclusive.
type ActivePeriod struct {
	OwnerID int       `json:"ownerId"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

func DefaultActivePeriod(ownerID int, today time.Time) ActivePeriod {
	start := DateOf(today)
	return ActivePeriod{
		OwnerID: ownerID,
		Start:   start,
		End:     start.AddDate(0, 3, 0),
	}
}

func (p ActivePeriod) Contains(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(p.Start)) && !d.After(DateOf(p.End))
}

// DateOf drops the clock part of t, keeping its calendar date, as UTC midnight.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
