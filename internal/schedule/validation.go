package schedule

import (
	"fmt"
	"time"
	"unicode/utf8"
)

func ValidateSlot(slot Slot, siblings []Slot) error {
	if slot.BodyPart == "" {
		return ErrMissingBodyPart
	}
	if !slot.BodyPart.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownBodyPart, slot.BodyPart)
	}
	if utf8.RuneCountInString(slot.Detail) > MaxDetailLength {
		return ErrDetailTooLong
	}
	for _, s := range siblings {
		if s.Equal(slot) {
			return fmt.Errorf("%w: %s", ErrDuplicateSlot, slot)
		}
	}
	if len(siblings)+1 > MaxSlotsPerDay {
		return ErrTooManySlots
	}
	return nil
}

func ValidatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidPeriod)
	}
	if DateOf(start).After(DateOf(end)) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, start.Format(DateLayout), end.Format(DateLayout))
	}
	return nil
}
