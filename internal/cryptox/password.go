package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

const (
	argon2idPrefix = "$argon2id$"
	// maxArgon2Memory bounds the KiB a stored hash may ask for (4 GiB).
	maxArgon2Memory = 4 * 1024 * 1024
	// maxArgon2Time bounds the passes a stored hash may ask for.
	maxArgon2Time = 64
	// bcryptMaxInput is the longest password bcrypt accepts.
	bcryptMaxInput = 72
)

// Hasher produces and checks one-way password hashes. The returned string is
// self-describing: algorithm, cost parameters and salt are embedded in it, so
// a hash keeps verifying after the configured algorithm or cost changes.
type Hasher interface {
	Hash(password []byte) (string, error)
	Verify(hash string, password []byte) bool
}

// NewHasher returns the Hasher for the named algorithm.
func NewHasher(algorithm string, bcryptCost int) (Hasher, error) {
	switch algorithm {
	case "", AlgorithmBcrypt:
		return BcryptHasher{Cost: bcryptCost}, nil
	case AlgorithmArgon2id:
		return DefaultArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}
}

// VerifyPassword checks password against a stored hash of any supported
// algorithm. Malformed hashes never match.
func VerifyPassword(hash string, password []byte) bool {
	if strings.HasPrefix(hash, argon2idPrefix) {
		return Argon2Hasher{}.Verify(hash, password)
	}
	return BcryptHasher{}.Verify(hash, password)
}

// BcryptHasher hashes with bcrypt. A zero Cost means bcrypt.DefaultCost.
//
// Passwords longer than bcrypt's 72-byte limit are first reduced to the
// base64 SHA-256 digest, so every password is hashable and the stored
// string keeps the plain $2a$ format.
type BcryptHasher struct {
	Cost int
}

func bcryptInput(password []byte) []byte {
	if len(password) <= bcryptMaxInput {
		return password
	}
	sum := sha256.Sum256(password)
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (h BcryptHasher) Hash(password []byte) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword(bcryptInput(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(hash string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

// Argon2Hasher hashes with argon2id and encodes the result in PHC form:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultArgon2Hasher uses the same parameters as the vault master key derivation
// of earlier releases: one pass over 64 MiB with four lanes.
func DefaultArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
}

func (h Argon2Hasher) Hash(password []byte) (string, error) {
	salt := make([]byte, h.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2id salt: %w", err)
	}
	sum := argon2.IDKey(password, salt, h.Time, h.Memory, h.Threads, h.KeyLen)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2.Version, h.Memory, h.Time, h.Threads,
		enc.EncodeToString(salt), enc.EncodeToString(sum)), nil
}

// Verify ignores the receiver's parameters and uses the ones embedded in hash.
func (Argon2Hasher) Verify(hash string, password []byte) bool {
	parts := strings.Split(hash, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, sum
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if time == 0 || time > maxArgon2Time || threads == 0 || memory == 0 || memory > maxArgon2Memory {
		return false
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := enc.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey(password, salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
