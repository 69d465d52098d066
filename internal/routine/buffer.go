package routine

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/workoutplan/internal/schedule"
)

// Kind tells what an intent does with a routine slot once the buffer is committed.
type Kind int

const (
	// KindExisting mirrors a stored routine assignment that was not edited.
	KindExisting Kind = iota
	KindCreate
	KindUpdate
	KindDelete
	KindPeriodEdit
)

var kindNames = [...]string{"existing", "create", "update", "delete", "period"}

func (k Kind) String() string {
	if k < KindExisting || k > KindPeriodEdit {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown intent kind: %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Key addresses a slot inside the buffer. Seq is the stored routine assignment id for
// existing, updated and deleted slots, and a buffer local sequence for created ones.
type Key struct {
	Weekday schedule.Weekday `json:"weekday"`
	Seq     int              `json:"seq"`
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Intent is one staged change of the weekly routine.
type Intent struct {
	Kind Kind          `json:"kind"`
	Key  Key           `json:"key"`
	Ref  int           `json:"ref,omitempty"`
	Slot schedule.Slot `json:"slot"`
	// Period is only set on KindPeriodEdit intents.
	Period *Period `json:"period,omitempty"`
}

type intentID struct {
	kind Kind
	seq  int
}

type tracked struct {
	intent Intent
	order  int
}

// Buffer holds the routine edits of one session until they are confirmed or discarded.
// It is not safe for concurrent use; a request loads it, edits it and saves it back.
type Buffer struct {
	intents   map[intentID]*tracked
	period    *Period
	deleteAll bool
	nextSeq   int
	nextOrder int
	dirty     bool
}

func NewBuffer() *Buffer {
	return &Buffer{
		intents: make(map[intentID]*tracked),
		nextSeq: 1,
	}
}

// Add stores the intent under its key, replacing what was there. Create intents without a
// sequence get the next free one. Update and Delete intents replace the existing or updated
// intent of the same stored slot, keeping its position.
func (b *Buffer) Add(intent Intent) Key {
	b.dirty = true

	switch intent.Kind {
	case KindPeriodEdit:
		if intent.Period != nil {
			p := *intent.Period
			b.period = &p
		}
		return intent.Key
	case KindCreate:
		if intent.Key.Seq <= 0 {
			intent.Key.Seq = b.nextSeq
		}
		if intent.Key.Seq >= b.nextSeq {
			b.nextSeq = intent.Key.Seq + 1
		}
		intent.Ref = 0
	default:
		if intent.Ref == 0 {
			intent.Ref = intent.Key.Seq
		}
		intent.Key.Seq = intent.Ref
	}

	order := -1
	if intent.Kind == KindUpdate || intent.Kind == KindDelete {
		for _, kind := range []Kind{KindExisting, KindUpdate, KindDelete} {
			id := intentID{kind: kind, seq: intent.Ref}
			if t, ok := b.intents[id]; ok {
				if order < 0 || t.order < order {
					order = t.order
				}
				delete(b.intents, id)
			}
		}
	}

	id := intentID{kind: intent.Kind, seq: intent.Key.Seq}
	if t, ok := b.intents[id]; ok {
		order = t.order
	}
	if order < 0 {
		order = b.nextOrder
		b.nextOrder++
	}
	b.intents[id] = &tracked{intent: intent, order: order}

	return intent.Key
}

func (b *Buffer) sorted(match func(Intent) bool) []Intent {
	var ts []*tracked
	for _, t := range b.intents {
		if match(t.intent) {
			ts = append(ts, t)
		}
	}
	slices.SortFunc(ts, func(x, y *tracked) int {
		return x.order - y.order
	})
	intents := make([]Intent, 0, len(ts))
	for _, t := range ts {
		intents = append(intents, t.intent)
	}
	return intents
}

// ForWeekday returns the existing, created and updated slots of the weekday in the order they
// entered the buffer.
func (b *Buffer) ForWeekday(weekday schedule.Weekday) []Intent {
	return b.sorted(func(i Intent) bool {
		return i.Kind != KindDelete && i.Key.Weekday == weekday
	})
}

// HasLiveEntity reports whether the stored routine assignment id is still untracked: no
// existing, updated or deleted intent refers to it and no delete-all is pending.
func (b *Buffer) HasLiveEntity(id int) bool {
	if b.deleteAll {
		return false
	}
	for _, kind := range []Kind{KindExisting, KindUpdate, KindDelete} {
		if _, ok := b.intents[intentID{kind: kind, seq: id}]; ok {
			return false
		}
	}
	return true
}

func (b *Buffer) Find(kind Kind, key Key) (Intent, bool) {
	t, ok := b.intents[intentID{kind: kind, seq: key.Seq}]
	if !ok || t.intent.Key.Weekday != key.Weekday {
		return Intent{}, false
	}
	return t.intent, true
}

// Delete removes the slot addressed by kind and key. A created slot is dropped, an existing or
// updated one turns into a delete of the stored assignment. It reports whether a slot was found.
// The kind is required since created slots number their Seq on their own, so a created slot and
// a stored assignment can share one.
func (b *Buffer) Delete(kind Kind, key Key) bool {
	switch kind {
	case KindCreate:
		id := intentID{kind: KindCreate, seq: key.Seq}
		t, ok := b.intents[id]
		if !ok || t.intent.Key.Weekday != key.Weekday {
			return false
		}
		delete(b.intents, id)
		b.dirty = true
		return true
	case KindExisting, KindUpdate:
		for _, k := range []Kind{KindExisting, KindUpdate} {
			t, ok := b.intents[intentID{kind: k, seq: key.Seq}]
			if !ok || t.intent.Key.Weekday != key.Weekday {
				continue
			}
			b.Add(Intent{
				Kind: KindDelete,
				Key:  t.intent.Key,
				Ref:  t.intent.Ref,
				Slot: t.intent.Slot,
			})
			return true
		}
	}
	return false
}

// DeleteAll drops every created slot and turns existing and updated slots into deletes. The
// commit then removes all stored routine assignments of the owner.
func (b *Buffer) DeleteAll() {
	for id, t := range b.intents {
		switch t.intent.Kind {
		case KindCreate:
			delete(b.intents, id)
		case KindExisting, KindUpdate:
			delete(b.intents, id)
			t.intent.Kind = KindDelete
			b.intents[intentID{kind: KindDelete, seq: t.intent.Ref}] = t
		}
	}
	b.deleteAll = true
	b.dirty = true
}

// SetPeriod stages a new active period, replacing any staged before.
func (b *Buffer) SetPeriod(start, end time.Time) {
	b.Add(Intent{
		Kind:   KindPeriodEdit,
		Period: &Period{Start: schedule.DateOf(start), End: schedule.DateOf(end)},
	})
}

func (b *Buffer) Period() (Period, bool) {
	if b.period == nil {
		return Period{}, false
	}
	return *b.period, true
}

func (b *Buffer) ofKind(kind Kind) []Intent {
	return b.sorted(func(i Intent) bool {
		return i.Kind == kind
	})
}

// Existing, Creates, Updates and Deletes list the intents of one kind in buffer order.
func (b *Buffer) Existing() []Intent { return b.ofKind(KindExisting) }
func (b *Buffer) Creates() []Intent  { return b.ofKind(KindCreate) }
func (b *Buffer) Updates() []Intent  { return b.ofKind(KindUpdate) }
func (b *Buffer) Deletes() []Intent  { return b.ofKind(KindDelete) }

func (b *Buffer) DeletesAll() bool {
	return b.deleteAll
}

func (b *Buffer) Dirty() bool {
	return b.dirty
}

func (b *Buffer) MarkClean() {
	b.dirty = false
}

// Empty reports whether the buffer holds nothing at all, mirrored stored slots included.
func (b *Buffer) Empty() bool {
	return len(b.intents) == 0 && b.period == nil && !b.deleteAll
}

// HasChanges reports whether a commit would write anything.
func (b *Buffer) HasChanges() bool {
	if b.period != nil || b.deleteAll {
		return true
	}
	for _, t := range b.intents {
		if t.intent.Kind != KindExisting {
			return true
		}
	}
	return false
}

func (b *Buffer) Reset() {
	b.intents = make(map[intentID]*tracked)
	b.period = nil
	b.deleteAll = false
	b.nextSeq = 1
	b.nextOrder = 0
	b.dirty = true
}

// Record is the flat, serializable form of one buffer entry.
type Record struct {
	BodyPart schedule.BodyPart `json:"bodyPart,omitempty"`
	Detail   string            `json:"detail,omitempty"`
	Weekday  schedule.Weekday  `json:"weekday"`
	ID       int               `json:"id,omitempty"`
	Order    int               `json:"order"`
	Start    string            `json:"start,omitempty"`
	End      string            `json:"end,omitempty"`
	Seq      int               `json:"seq,omitempty"`
}

const (
	prefixExisting = "ex"
	prefixCreate   = "create"
	prefixUpdate   = "update"
	prefixDelete   = "delete"
	keyDeleteAll   = "delete:all"
	keyPeriod      = "term"
	keySeq         = "seq"
)

// Flatten turns the buffer into a key -> record mapping. Keys are ex:<weekday>:<id>,
// create:<weekday>:<seq>, update:<weekday>:<id>, delete:<id>, delete:all, term and seq.
func (b *Buffer) Flatten() map[string]Record {
	flat := make(map[string]Record, len(b.intents)+3)
	for _, t := range b.intents {
		i := t.intent
		rec := Record{
			BodyPart: i.Slot.BodyPart,
			Detail:   i.Slot.Detail,
			Weekday:  i.Key.Weekday,
			ID:       i.Ref,
			Order:    t.order,
		}
		switch i.Kind {
		case KindExisting:
			flat[fmt.Sprintf("%s:%d:%d", prefixExisting, i.Key.Weekday, i.Ref)] = rec
		case KindCreate:
			flat[fmt.Sprintf("%s:%d:%d", prefixCreate, i.Key.Weekday, i.Key.Seq)] = rec
		case KindUpdate:
			flat[fmt.Sprintf("%s:%d:%d", prefixUpdate, i.Key.Weekday, i.Ref)] = rec
		case KindDelete:
			flat[fmt.Sprintf("%s:%d", prefixDelete, i.Ref)] = rec
		}
	}
	if b.deleteAll {
		flat[keyDeleteAll] = Record{}
	}
	if b.period != nil {
		flat[keyPeriod] = Record{
			Start: b.period.Start.Format(schedule.DateLayout),
			End:   b.period.End.Format(schedule.DateLayout),
		}
	}
	flat[keySeq] = Record{Seq: b.nextSeq}
	return flat
}

// Unflatten rebuilds a clean buffer from Flatten's output.
func Unflatten(flat map[string]Record) (*Buffer, error) {
	b := NewBuffer()
	maxOrder := -1
	for key, rec := range flat {
		switch key {
		case keyDeleteAll:
			b.deleteAll = true
			continue
		case keySeq:
			b.nextSeq = max(b.nextSeq, rec.Seq)
			continue
		case keyPeriod:
			start, err := schedule.ParseDate(rec.Start)
			if err != nil {
				return nil, fmt.Errorf("buffer period: %w", err)
			}
			end, err := schedule.ParseDate(rec.End)
			if err != nil {
				return nil, fmt.Errorf("buffer period: %w", err)
			}
			b.period = &Period{Start: start, End: end}
			continue
		}

		intent, err := parseRecord(key, rec)
		if err != nil {
			return nil, err
		}
		b.intents[intentID{kind: intent.Kind, seq: intent.Key.Seq}] = &tracked{intent: intent, order: rec.Order}
		if rec.Order > maxOrder {
			maxOrder = rec.Order
		}
		if intent.Kind == KindCreate && intent.Key.Seq >= b.nextSeq {
			b.nextSeq = intent.Key.Seq + 1
		}
	}
	b.nextOrder = maxOrder + 1
	return b, nil
}

func parseRecord(key string, rec Record) (Intent, error) {
	prefix, rest, _ := strings.Cut(key, ":")
	parts := strings.Split(rest, ":")

	var kind Kind
	switch prefix {
	case prefixExisting:
		kind = KindExisting
	case prefixCreate:
		kind = KindCreate
	case prefixUpdate:
		kind = KindUpdate
	case prefixDelete:
		id, err := strconv.Atoi(rest)
		if err != nil || id <= 0 {
			return Intent{}, fmt.Errorf("invalid buffer key %q", key)
		}
		return Intent{
			Kind: KindDelete,
			Key:  Key{Weekday: rec.Weekday, Seq: id},
			Ref:  id,
			Slot: schedule.Slot{BodyPart: rec.BodyPart, Detail: rec.Detail},
		}, nil
	default:
		return Intent{}, fmt.Errorf("invalid buffer key %q", key)
	}

	if len(parts) != 2 {
		return Intent{}, fmt.Errorf("invalid buffer key %q", key)
	}
	weekday, err := schedule.ParseWeekday(parts[0])
	if err != nil {
		return Intent{}, fmt.Errorf("invalid buffer key %q: %w", key, err)
	}
	seq, err := strconv.Atoi(parts[1])
	if err != nil || seq <= 0 {
		return Intent{}, fmt.Errorf("invalid buffer key %q", key)
	}

	intent := Intent{
		Kind: kind,
		Key:  Key{Weekday: weekday, Seq: seq},
		Slot: schedule.Slot{BodyPart: rec.BodyPart, Detail: rec.Detail},
	}
	if kind != KindCreate {
		intent.Ref = seq
	}
	return intent, nil
}

func (b *Buffer) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Flatten())
}

func (b *Buffer) UnmarshalJSON(data []byte) error {
	var flat map[string]Record
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	loaded, err := Unflatten(flat)
	if err != nil {
		return err
	}
	*b = *loaded
	return nil
}
