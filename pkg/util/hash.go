package util

import (
	"strconv"

	"github.com/cespare/xxhash"
)

// HashKey produces a `xxhash` hash from a given byte slice
// NOTE: https://github.com/cespare/xxhash for more details
func HashKey(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

// HashStrings produces a single `xxhash` digest of the given strings,
// each one length-prefixed so that ("ab", "c") and ("a", "bc") differ
func HashStrings(parts ...string) uint64 {
	d := xxhash.New()

	for _, p := range parts {
		d.Write([]byte(strconv.Itoa(len(p))))
		d.Write([]byte{':'})
		d.Write([]byte(p))
	}

	return d.Sum64()
}
