package core

import "unsafe"

// Zero-copy string/byte conversions. Both directions alias the source's
// backing memory: the result must never be modified and must not outlive
// the source. Used on read-only hot paths (router map keys, method/path
// views of the request) where a real conversion would allocate per
// request.

func bytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

func stringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
