// Package idx mints and validates ULID identifiers. Every record the
// service persists (clients, tokens) is keyed by one.
package idx

import (
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a ULID in its canonical 26-character string form.
type ID string

// Zero is the empty ID placeholder.
const Zero ID = ""

// ErrInvalid reports a string that is not a well-formed ULID.
var ErrInvalid = errors.New("idx: invalid ulid")

// New mints an ID from the current time. IDs minted in sequence sort in
// creation order, which keeps listings stable without a separate sequence
// column. Safe for concurrent use.
func New() ID {
	return ID(ulid.Make().String())
}

// NewAt mints an ID carrying the given timestamp. Intended for tests and
// time-bounded cursors.
func NewAt(t time.Time) ID {
	u := ulid.MustNew(ulid.Timestamp(t.UTC()), ulid.DefaultEntropy())
	return ID(u.String())
}

// Parse validates s and returns it as an ID. Leading and trailing
// whitespace is ignored.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// MustParse is Parse for hard-coded IDs. It panics on malformed input.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// Time returns the millisecond timestamp embedded in the ID, or the zero
// time when the ID is malformed.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
