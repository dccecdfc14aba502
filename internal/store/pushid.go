package store

import (
	"crypto/rand"
	"sync"
	"time"
)

// pushChars is ordered so generated ids sort lexicographically by the
// timestamp they encode, ASCII order.
const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

var pushMu sync.Mutex
var lastPushMillis int64
var lastRandPart [12]byte

// PushKey generates a 20-character child id: 8 characters encoding the
// current unix-millis timestamp followed by 12 random characters. Keys
// generated in the same millisecond increment the random suffix so ordering
// is preserved even then.
func PushKey() string {
	pushMu.Lock()
	defer pushMu.Unlock()

	now := time.Now().UnixMilli()
	var id [20]byte

	ms := now
	for i := 7; i >= 0; i-- {
		id[i] = pushChars[ms%64]
		ms /= 64
	}

	if now == lastPushMillis {
		for i := 11; i >= 0; i-- {
			lastRandPart[i]++
			if lastRandPart[i] < 64 {
				break
			}
			lastRandPart[i] = 0
		}
	} else {
		var buf [12]byte
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand never fails on supported platforms; fall back to
			// the timestamp-derived suffix rather than panic.
			for i := range buf {
				buf[i] = byte(now >> (i % 8))
			}
		}
		for i := range lastRandPart {
			lastRandPart[i] = buf[i] % 64
		}
	}
	lastPushMillis = now

	for i := 0; i < 12; i++ {
		id[8+i] = pushChars[lastRandPart[i]]
	}
	return string(id[:])
}
