package util

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	entropyLock sync.Mutex
	entropy     = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewULID returns a new ulid.ULID
// NOTE: monotonic within the same millisecond, so IDs generated by
// this process sort in creation order
func NewULID() ulid.ULID {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyLock.Unlock()

	return id
}

// ParseULID parses a string representation, returning a zero ULID
// for an empty string
func ParseULID(s string) (ulid.ULID, error) {
	if s == "" {
		return ulid.ULID{}, nil
	}

	return ulid.ParseStrict(s)
}

// IsZeroULID tests whether a given ULID is unset
func IsZeroULID(id ulid.ULID) bool {
	return id == ulid.ULID{}
}
