// Package ids generates the two identifier shapes the kernel needs:
// time-sortable 128-bit event ids, and opaque cryptographically random
// correlation/command ids (spec §4.2).
package ids

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventID is a 128-bit identifier whose high 48 bits encode a
// millisecond timestamp, guaranteeing monotonic sort order across
// most operation rates; an 80-bit random suffix disambiguates events
// minted within the same millisecond. This is the same construction
// ULID uses, laid out manually here so the timestamp field can be
// extracted without an external dependency.
type EventID [16]byte

// NewEventID mints an EventID for the given instant using a
// cryptographically random suffix. Weak RNGs are forbidden (spec §4.2)
// because the suffix also feeds procurement-adjacent audit ids.
func NewEventID(at time.Time) (EventID, error) {
	var id EventID
	ms := uint64(at.UnixMilli())
	if ms >= 1<<48 {
		return id, fmt.Errorf("ids: timestamp %s overflows 48-bit millisecond field", at)
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], ms)
	copy(id[0:6], buf[2:8])

	if _, err := rand.Read(id[6:16]); err != nil {
		return id, fmt.Errorf("ids: reading random suffix: %w", err)
	}
	return id, nil
}

// Time extracts the millisecond timestamp encoded in the id's high bits.
func (id EventID) Time() time.Time {
	var buf [8]byte
	copy(buf[2:8], id[0:6])
	ms := binary.BigEndian.Uint64(buf[:])
	return time.UnixMilli(int64(ms)).UTC()
}

// String renders the id as lowercase hex.
func (id EventID) String() string {
	return hex.EncodeToString(id[:])
}

// Compare orders two ids; because the timestamp occupies the high
// bits, byte-wise comparison is time-sortable.
func (id EventID) Compare(other EventID) int {
	for i := range id {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// ParseEventID decodes the hex form produced by String.
func ParseEventID(s string) (EventID, error) {
	var id EventID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("ids: decoding event id %q: %w", s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("ids: event id %q has %d bytes, want %d", s, len(b), len(id))
	}
	copy(id[:], b)
	return id, nil
}

// NewCorrelationID returns an opaque, cryptographically random
// identifier suitable for command ids and cross-request correlation.
func NewCorrelationID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("ids: generating correlation id: %w", err)
	}
	return u.String(), nil
}
