package buffers

import (
	"testing"
)

func TestAcquireSelectsTierBySizeHint(t *testing.T) {
	tests := []struct {
		hint    int
		wantCap int
	}{
		{0, 8 << 10},       // unknown → medium
		{100, 512},         // tiny → small
		{512, 512},         // boundary stays small
		{4096, 8 << 10},    // typical → medium
		{32 << 10, 64 << 10}, // big → large
		{1 << 20, 64 << 10},  // beyond every tier → large, will grow
	}
	for _, tt := range tests {
		buf := AcquireJSONBuffer(tt.hint)
		if buf.Cap() != tt.wantCap {
			t.Errorf("AcquireJSONBuffer(%d) cap = %d, want %d", tt.hint, buf.Cap(), tt.wantCap)
		}
		ReleaseJSONBuffer(buf)
	}
}

func TestReleaseResetsBuffer(t *testing.T) {
	buf := AcquireSmallJSONBuffer()
	buf.WriteString(`{"k":"v"}`)
	ReleaseJSONBuffer(buf)

	again := AcquireSmallJSONBuffer()
	defer ReleaseJSONBuffer(again)
	if again.Len() != 0 {
		t.Errorf("reacquired buffer has %d stale bytes", again.Len())
	}
}

func TestReleaseNilIsNoOp(t *testing.T) {
	ReleaseJSONBuffer(nil)
}

func BenchmarkAcquireReleaseMedium(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := AcquireMediumJSONBuffer()
		buf.WriteString(`{"user":"alice","active":true}`)
		ReleaseJSONBuffer(buf)
	}
}
