package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strconv"
)

//go:generate go tool mockgen -destination=./mocks/provider_mock.go -package=mocks . Provider

// NewSeed generates a high-entropy seed using crypto/rand. The battle core
// never calls it; hosts use it to start a fresh, unscripted battle.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// DeriveSeed derives a stable child seed from a root seed and a label so a
// host can give every battle (or every turn) its own reproducible stream.
func DeriveSeed(root int64, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(strconv.FormatInt(root, 10)))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}
