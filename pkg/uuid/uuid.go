// Package uuid provides deterministic, name-derived UUIDs.
// The vector sync job keys Qdrant points by a UUID derived from the source
// table and row, so re-running a sync overwrites points instead of
// duplicating them.
package uuid

import (
	"crypto/sha256"
	"fmt"
)

// UUID represents a 128-bit identifier.
type UUID [16]byte

// FromName derives a UUID from the SHA-256 of name. The same name always
// yields the same UUID. Version and variant bits are set so the result is
// a well-formed RFC 4122 identifier (version 8: custom/name-based).
func FromName(name string) UUID {
	sum := sha256.Sum256([]byte(name))

	var uuid UUID
	copy(uuid[:], sum[:16])

	// Version 1000 in bits 48-51, variant 10 in bits 64-65.
	uuid[6] = 0x80 | (uuid[6] & 0x0f)
	uuid[8] = 0x80 | (uuid[8] & 0x3f)

	return uuid
}

// String returns the UUID in standard form: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		u[0:4],
		u[4:6],
		u[6:8],
		u[8:10],
		u[10:16],
	)
}
