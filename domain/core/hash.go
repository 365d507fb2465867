package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Fingerprint identifies a reproducible run: same seed, same data,
// same model configuration, same fingerprint.
type Fingerprint Hash

// NewFingerprint builds a run fingerprint from a seed, a dataset hash,
// and an arbitrary set of labeled configuration values. Labels are
// sorted so field order never changes the result.
func NewFingerprint(seed int64, datasetHash Hash, config map[string]string) Fingerprint {
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := make([]byte, 8, 8+len(datasetHash))
	binary.BigEndian.PutUint64(buf, uint64(seed))
	buf = append(buf, datasetHash...)
	for _, k := range keys {
		buf = append(buf, k...)
		buf = append(buf, 0)
		buf = append(buf, config[k]...)
		buf = append(buf, 0)
	}
	return Fingerprint(NewHash(buf))
}

func (f Fingerprint) String() string { return string(f) }
