package session

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Session IDs are ULIDs: 48 bits of millisecond timestamp followed by 80
// random bits, Crockford base32 encoded into 26 characters. IDs minted in the
// same millisecond carry an increasing sequence in their first random bytes.

var (
	idMu    sync.Mutex
	lastMs  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewID returns a fresh session ID.
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(now time.Time) string {
	idMu.Lock()
	ms := uint64(now.UnixMilli())
	if ms == lastMs {
		lastSeq++
	} else {
		lastMs = ms
		lastSeq = 0
	}
	seq := lastSeq
	idMu.Unlock()

	var b [16]byte
	for i := range 6 {
		b[i] = byte(ms >> (40 - 8*i))
	}
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeID(b)
}

// encodeID writes the 128 bits five at a time, most significant first. The
// first character holds only the top three bits.
func encodeID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])
	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
