// Package hashing provides the stable identity hashes used for rollout
// bucketing and conditional-read fingerprints.
package hashing

import (
	"fmt"
	"hash/fnv"
)

// Bucket maps an identifier to an integer in [0,100). The algorithm is
// FNV-1a (32-bit) followed by mod 100 and must never change: bucket
// assignment is the service's sticky-rollout contract with its callers, and
// all deployments have to agree bit-for-bit. The conformance vectors in the
// tests pin the exact values.
func Bucket(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % 100)
}

// Fingerprint returns a short stable content hash of a serialized record,
// rendered as 8 lower-case hex digits. It backs ETag-style conditional
// reads; collisions are benign (the caller just receives a full response).
func Fingerprint(data []byte) string {
	h := fnv.New32a()
	h.Write(data)
	return fmt.Sprintf("%08x", h.Sum32())
}
