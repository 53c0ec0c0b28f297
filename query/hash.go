package query

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// SaltedHash derives a query hash from a caller salt and an id, so callers
// that number their own sites from zero do not collide in one engine.
func SaltedHash(salt string, id uint64) int {
	d := xxhash.New()
	_, _ = d.WriteString(salt)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	_, _ = d.Write(buf[:])
	return int(d.Sum64() >> 1)
}
