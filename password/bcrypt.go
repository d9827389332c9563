package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	minCost      = bcrypt.MinCost
	maxCost      = 31
	minPassBytes = 8
)

// ErrPolicy is an exported constant or variable used by the authentication engine.
var ErrPolicy = errors.New("password policy violation")

// Config defines a public type used by brixauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cost      int
	MinLength int
}

// Hasher wraps bcrypt with a fixed cost factor.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	config Config
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Cost < minCost || cfg.Cost > maxCost {
		return nil, errors.New("invalid bcrypt cost")
	}
	if cfg.MinLength < minPassBytes {
		cfg.MinLength = minPassBytes
	}
	return &Hasher{config: cfg}, nil
}

// Hash describes the hash operation and its observable behavior.
//
// Hash may return an error when input validation, dependency calls, or security checks fail.
// Hash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Hash(plaintext string) (string, error) {
	// Raw string bytes exactly as provided; no Unicode normalization.
	if len(plaintext) < h.config.MinLength {
		return "", fmt.Errorf("%w: below minimum length", ErrPolicy)
	}
	if len(plaintext) > 72 {
		// bcrypt truncates beyond 72 bytes; reject instead of silently truncating.
		return "", fmt.Errorf("%w: exceeds 72 bytes", ErrPolicy)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.config.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Verify(plaintext, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// Cost reports the cost factor embedded in encodedHash, or an error when
// the hash is not a bcrypt hash.
func Cost(encodedHash string) (int, error) {
	return bcrypt.Cost([]byte(encodedHash))
}
