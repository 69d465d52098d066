package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrRoutineNotFound        = errors.New("routine assignment not found")
	ErrDateAssignmentNotFound = errors.New("date assignment not found")
	ErrUnknownOwner           = errors.New("owner does not exist")

	// ErrValidation is wrapped by every rejected edit.
	ErrValidation      = errors.New("validation failed")
	ErrMissingBodyPart = fmt.Errorf("%w: body part is required", ErrValidation)
	ErrUnknownBodyPart = fmt.Errorf("%w: unknown body part", ErrValidation)
	ErrDetailTooLong   = fmt.Errorf("%w: detail longer than %d characters", ErrValidation, MaxDetailLength)
	ErrDuplicateSlot   = fmt.Errorf("%w: body part already scheduled", ErrValidation)
	ErrTooManySlots    = fmt.Errorf("%w: more than %d body parts on one day", ErrValidation, MaxSlotsPerDay)
	ErrInvalidPeriod   = fmt.Errorf("%w: invalid active period", ErrValidation)
)

// Store persists routine and date assignments and the active period. Every method is scoped
// to an owner, there is no business validation here.
type Store interface {
	AddRoutine(ctx context.Context, ra RoutineAssignment) (*RoutineAssignment, error)
	GetRoutine(ctx context.Context, ownerID, id int) (*RoutineAssignment, error)
	UpdateRoutine(ctx context.Context, ra *RoutineAssignment) error
	DeleteRoutine(ctx context.Context, ownerID, id int) error
	DeleteAllRoutines(ctx context.Context, ownerID int) (int64, error)
	ListRoutines(ctx context.Context, ownerID int) ([]RoutineAssignment, error)
	ListRoutinesByWeekday(ctx context.Context, ownerID int, weekday Weekday) ([]RoutineAssignment, error)
	ListRoutinesByBodyPart(ctx context.Context, ownerID int, part BodyPart) ([]RoutineAssignment, error)

	AddDate(ctx context.Context, da DateAssignment) (*DateAssignment, error)
	GetDate(ctx context.Context, ownerID, id int) (*DateAssignment, error)
	UpdateDate(ctx context.Context, da *DateAssignment) error
	DeleteDate(ctx context.Context, ownerID, id int) error
	// DeleteDatesOn removes every assignment of the date, tombstones included.
	DeleteDatesOn(ctx context.Context, ownerID int, date time.Time) (int64, error)
	DeleteTombstonesOn(ctx context.Context, ownerID int, date time.Time) (int64, error)
	DeleteAllDates(ctx context.Context, ownerID int) (int64, error)
	ListDatesOn(ctx context.Context, ownerID int, date time.Time) ([]DateAssignment, error)
	// ListDatesBetween lists assignments of [from, to], both inclusive.
	ListDatesBetween(ctx context.Context, ownerID int, from, to time.Time) ([]DateAssignment, error)
	// ListOverrides lists all non-tombstone date assignments.
	ListOverrides(ctx context.Context, ownerID int) ([]DateAssignment, error)
	ListDatesByBodyPart(ctx context.Context, ownerID int, part BodyPart) ([]DateAssignment, error)

	// GetOrCreatePeriod returns the owner's period, storing def first if there is none.
	GetOrCreatePeriod(ctx context.Context, def ActivePeriod) (*ActivePeriod, error)
	SavePeriod(ctx context.Context, period ActivePeriod) error
}

// TxStore runs fn against a transactional view of the store: fn's writes are committed
// when it returns nil and rolled back otherwise.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(store Store) error) error
}
