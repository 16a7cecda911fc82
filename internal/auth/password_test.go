package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testHasher() *PasswordHasher {
	return NewPasswordHasher(AlgorithmPBKDF2, 1000)
}

func TestHashVerify(t *testing.T) {
	h := testHasher()
	hashed, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hashed, "pbkdf2:sha256:1000$") {
		t.Fatalf("unexpected hash format %q", hashed)
	}
	if strings.Contains(hashed, "correct horse") {
		t.Fatal("hash contains the plaintext")
	}
	if !h.Verify("correct horse", hashed) {
		t.Fatal("Verify rejected the correct password")
	}
	for _, wrong := range []string{"", "correct horse ", "Correct horse", "battery staple"} {
		if h.Verify(wrong, hashed) {
			t.Errorf("Verify accepted %q", wrong)
		}
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := testHasher()
	a, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are identical")
	}
	if !h.Verify("p1", a) || !h.Verify("p1", b) {
		t.Fatal("both hashes should verify")
	}
}

func TestVerifyKnownPBKDF2Vector(t *testing.T) {
	// Published PBKDF2-HMAC-SHA256 vector: "password", "salt", 1 iteration, 32 bytes.
	stored := "pbkdf2:sha256:1$salt$120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b"
	h := testHasher()
	if !h.Verify("password", stored) {
		t.Fatal("known vector did not verify")
	}
	if h.Verify("passwore", stored) {
		t.Fatal("wrong password verified against known vector")
	}
}

func TestVerifyIterationsFromHash(t *testing.T) {
	stored, err := NewPasswordHasher(AlgorithmPBKDF2, 500).Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	// A hasher configured differently still honors the stored iteration count.
	if !NewPasswordHasher(AlgorithmPBKDF2, 2000).Verify("pw", stored) {
		t.Fatal("Verify should use the iterations encoded in the hash")
	}
}

func TestVerifyBcrypt(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	h := testHasher()
	if !h.Verify("pw", string(hashed)) {
		t.Fatal("bcrypt hash did not verify")
	}
	if h.Verify("nope", string(hashed)) {
		t.Fatal("bcrypt hash verified a wrong password")
	}
}

func TestBcryptAlgorithm(t *testing.T) {
	h := &PasswordHasher{Algorithm: AlgorithmBcrypt}
	hashed, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hashed, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hashed)
	}
	if !h.Verify("pw", hashed) {
		t.Fatal("Verify rejected bcrypt hash")
	}
}

func TestVerifyMalformed(t *testing.T) {
	h := testHasher()
	for _, stored := range []string{
		"",
		"plaintext",
		"pbkdf2:sha256:1000$salt",
		"pbkdf2:md5:1000$salt$abcd",
		"pbkdf2:sha256:x$salt$abcd",
		"pbkdf2:sha256:0$salt$abcd",
		"scrypt:32768:8:1$salt$abcd",
		"$2a$invalid",
	} {
		if h.Verify("pw", stored) {
			t.Errorf("Verify accepted malformed hash %q", stored)
		}
	}
}
