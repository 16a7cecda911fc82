package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	AlgorithmPBKDF2 = "pbkdf2"
	AlgorithmBcrypt = "bcrypt"

	DefaultIterations = 600000

	saltChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	saltLength = 16
)

// PasswordHasher produces and checks salted password hashes.
//
// PBKDF2 hashes are encoded as "pbkdf2:<digest>:<iterations>$<salt>$<hex>",
// the format Werkzeug writes, so accounts created by Flask deployments keep
// working. Verify also accepts bcrypt hashes regardless of Algorithm.
type PasswordHasher struct {
	Algorithm  string
	Iterations int
}

// NewPasswordHasher returns a hasher for the given algorithm. Zero iterations
// means DefaultIterations.
func NewPasswordHasher(algorithm string, iterations int) *PasswordHasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if algorithm == "" {
		algorithm = AlgorithmPBKDF2
	}
	return &PasswordHasher{Algorithm: algorithm, Iterations: iterations}
}

// Hash returns a new salted hash of password. Each call uses a fresh salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.Algorithm == AlgorithmBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(hashed), nil
	}

	salt, err := generateSalt(saltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	digest := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.Iterations, salt, hex.EncodeToString(digest)), nil
}

// Verify reports whether password matches stored. Malformed hashes never match.
func (h *PasswordHasher) Verify(password, stored string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	method, salt, want, ok := splitPBKDF2(stored)
	if !ok {
		return false
	}
	got, ok := method.derive(password, salt)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(got)), []byte(want)) == 1
}

type pbkdf2Method struct {
	newHash    func() hash.Hash
	size       int
	iterations int
}

func (m pbkdf2Method) derive(password, salt string) ([]byte, bool) {
	if m.newHash == nil || m.iterations <= 0 {
		return nil, false
	}
	return pbkdf2.Key([]byte(password), []byte(salt), m.iterations, m.size, m.newHash), true
}

// splitPBKDF2 parses "pbkdf2:<digest>[:<iterations>]$<salt>$<hex>".
func splitPBKDF2(stored string) (pbkdf2Method, string, string, bool) {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return pbkdf2Method{}, "", "", false
	}

	spec := strings.Split(parts[0], ":")
	if len(spec) < 2 || len(spec) > 3 || spec[0] != "pbkdf2" {
		return pbkdf2Method{}, "", "", false
	}

	m := pbkdf2Method{iterations: DefaultIterations}
	switch spec[1] {
	case "sha256":
		m.newHash, m.size = sha256.New, sha256.Size
	case "sha512":
		m.newHash, m.size = sha512.New, sha512.Size
	default:
		return pbkdf2Method{}, "", "", false
	}
	if len(spec) == 3 {
		n, err := strconv.Atoi(spec[2])
		if err != nil {
			return pbkdf2Method{}, "", "", false
		}
		m.iterations = n
	}
	return m, parts[1], parts[2], true
}

func generateSalt(n int) (string, error) {
	// 248 is the largest multiple of len(saltChars) below 256; higher bytes are
	// rejected so every character is equally likely.
	const limit = 256 - 256%len(saltChars)
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, saltChars[int(b)%len(saltChars)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
