package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHash         = errors.New("invalid hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	ErrMismatch            = errors.New("password does not match")
)

// Params defines the parameters for Argon2id hashing
type Params struct {
	Memory      uint32 `yaml:"memory"`
	Iterations  uint32 `yaml:"iterations"`
	Parallelism uint8  `yaml:"parallelism"`
	SaltLength  uint32 `yaml:"salt_length"`
	KeyLength   uint32 `yaml:"key_length"`
}

// DefaultParams returns secure default parameters for Argon2id
// Based on OWASP recommendations (2023)
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes and verifies passwords with one Argon2id configuration.
// It is built once at startup and handed to the components that need it.
type Hasher struct {
	params Params
}

// NewHasher creates a hasher. Zero fields fall back to DefaultParams.
func NewHasher(params Params) *Hasher {
	def := DefaultParams()
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = def.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = def.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}
	return &Hasher{params: params}
}

// Params returns the hasher's effective parameters.
func (h *Hasher) Params() Params {
	return h.params
}

// Hash generates an Argon2id hash of the password in PHC form:
// $argon2id$v=19$m=65536,t=3,p=2$salt$hash
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify returns nil when the password matches the encoded hash and ErrMismatch
// when it does not. The parameters stored in the hash win over the hasher's own,
// so hashes written under older settings keep verifying.
func (h *Hasher) Verify(password, encodedHash string) error {
	params, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return err
	}

	candidate := argon2.IDKey(
		[]byte(password),
		salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		params.KeyLength,
	)

	if subtle.ConstantTimeCompare(key, candidate) != 1 {
		return ErrMismatch
	}
	return nil
}

// decodeHash parses an encoded hash string
func decodeHash(encodedHash string) (Params, []byte, []byte, error) {
	var params Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return params, nil, nil, ErrInvalidHash
	}

	if parts[1] != "argon2id" {
		return params, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return params, nil, nil, ErrIncompatibleVersion
	}

	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.Memory,
		&params.Iterations,
		&params.Parallelism,
	); err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	params.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}
