package workoutlog

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/2beens/workoutplan/internal/schedule"
)

const (
	MaxNameLength    = 30
	MaxRemarksLength = 200
	MaxSets          = 10
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")

	ErrMissingName    = fmt.Errorf("%w: exercise name is required", schedule.ErrValidation)
	ErrNameTooLong    = fmt.Errorf("%w: exercise name is longer than %d characters", schedule.ErrValidation, MaxNameLength)
	ErrRemarksTooLong = fmt.Errorf("%w: remarks are longer than %d characters", schedule.ErrValidation, MaxRemarksLength)
	ErrTooManySets    = fmt.Errorf("%w: more than %d sets", schedule.ErrValidation, MaxSets)
	ErrInvalidSet     = fmt.Errorf("%w: weight and reps must not be negative", schedule.ErrValidation)
)

type Set struct {
	WeightKg float64 `json:"weightKg"`
	Reps     int     `json:"reps"`
}

// Exercise is one exercise done for a scheduled slot on a date.
type Exercise struct {
	ID      int       `json:"id"`
	OwnerID int       `json:"ownerId"`
	Date    time.Time `json:"date"`
	schedule.Slot
	Name      string    `json:"name"`
	Sets      []Set     `json:"sets"`
	Remarks   string    `json:"remarks"`
	CreatedAt time.Time `json:"createdAt"`
}

// Normalize trims the free text fields and drops the clock part of the date.
func (e *Exercise) Normalize() {
	e.Slot = e.Slot.Normalized()
	e.Name = strings.TrimSpace(e.Name)
	e.Remarks = strings.TrimSpace(e.Remarks)
	e.Date = schedule.DateOf(e.Date)
	if e.Sets == nil {
		e.Sets = []Set{}
	}
}

func (e *Exercise) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", schedule.ErrValidation)
	}
	if err := schedule.ValidateSlot(e.Slot, nil); err != nil {
		return err
	}
	if e.Name == "" {
		return ErrMissingName
	}
	if utf8.RuneCountInString(e.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(e.Remarks) > MaxRemarksLength {
		return ErrRemarksTooLong
	}
	if len(e.Sets) > MaxSets {
		return ErrTooManySets
	}
	for _, s := range e.Sets {
		if s.WeightKg < 0 || s.Reps < 0 {
			return ErrInvalidSet
		}
	}
	return nil
}
