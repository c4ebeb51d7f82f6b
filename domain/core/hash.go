package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
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

// Short returns the first 12 hex characters, enough to tell runs apart in logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeColumnsHash fingerprints named numeric columns in order.
// Values are hashed by their IEEE-754 bits so that identical tables hash identically.
func ComputeColumnsHash(keys []VariableKey, columns [][]float64) Hash {
	h := sha256.New()
	var buf [8]byte
	for i, key := range keys {
		h.Write([]byte(key))
		h.Write([]byte{0})
		if i >= len(columns) {
			continue
		}
		for _, v := range columns[i] {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
