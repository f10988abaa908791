// Package buffers pools the byte buffers JSON responses are encoded into,
// in three capacity tiers so a tiny health-check reply does not pin an
// oversized buffer and a large list does not grow a small one.
package buffers

import (
	"bytes"
	"sync"
)

type tier struct {
	capacity int
	pool     sync.Pool
}

// tiers is ordered smallest first; ReleaseJSONBuffer files a buffer under
// the first tier whose capacity holds it.
var tiers = [3]*tier{
	newTier(512),
	newTier(8 << 10),
	newTier(64 << 10),
}

func newTier(capacity int) *tier {
	t := &tier{capacity: capacity}
	t.pool.New = func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, capacity))
	}
	return t
}

// AcquireJSONBuffer returns a pooled buffer sized for sizeHint. A zero or
// unknown hint gets the medium (8KB) tier.
func AcquireJSONBuffer(sizeHint int) *bytes.Buffer {
	if sizeHint == 0 {
		return tiers[1].pool.Get().(*bytes.Buffer)
	}
	for _, t := range tiers {
		if sizeHint <= t.capacity {
			return t.pool.Get().(*bytes.Buffer)
		}
	}
	return tiers[len(tiers)-1].pool.Get().(*bytes.Buffer)
}

// ReleaseJSONBuffer resets buf and returns it to the tier its capacity
// fits; a buffer that outgrew every tier still lands in the largest.
func ReleaseJSONBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	for _, t := range tiers {
		if buf.Cap() <= t.capacity {
			t.pool.Put(buf)
			return
		}
	}
	tiers[len(tiers)-1].pool.Put(buf)
}

// AcquireSmallJSONBuffer returns a 512B buffer, for replies known to be
// tiny ({"ok":true} and friends).
func AcquireSmallJSONBuffer() *bytes.Buffer {
	return tiers[0].pool.Get().(*bytes.Buffer)
}

// AcquireMediumJSONBuffer returns an 8KB buffer, the default for typical
// API responses.
func AcquireMediumJSONBuffer() *bytes.Buffer {
	return tiers[1].pool.Get().(*bytes.Buffer)
}

// AcquireLargeJSONBuffer returns a 64KB buffer for large payloads
// (pagination results, long lists).
func AcquireLargeJSONBuffer() *bytes.Buffer {
	return tiers[2].pool.Get().(*bytes.Buffer)
}
