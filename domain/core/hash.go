package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
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

// DatasetHash fingerprints the identity of an audited dataset
type DatasetHash Hash

func (h DatasetHash) String() string { return Hash(h).String() }

// ComputeDatasetHash fingerprints a dataset from its name, shape and row
// identifiers. Two loads of the same file produce the same hash, which lets
// stored audit runs be traced back to the exact data they saw.
func ComputeDatasetHash(name string, rows, cols int, ids []string) DatasetHash {
	var data strings.Builder
	data.WriteString(name)
	data.WriteString(fmt.Sprintf("|%dx%d|", rows, cols))
	for _, id := range ids {
		data.WriteString(id)
		data.WriteByte(0)
	}
	return DatasetHash(NewHash([]byte(data.String())))
}
