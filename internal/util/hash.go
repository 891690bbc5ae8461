// Package util contains internal helpers (hashing, power-of-two sizing,
// cache-line padding).
package util

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

// Fnv64a hashes b with 64-bit FNV-1a.
func Fnv64a(b []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

// Fnv64aUint64 hashes the 8 little-endian bytes of u without allocating.
// Used for pointer-identity keys, where the raw value has poor low-bit
// entropy (descriptors are aligned) and needs mixing before masking.
func Fnv64aUint64(u uint64) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= uint64(byte(u))
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
