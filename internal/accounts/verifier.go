package accounts

import "golang.org/x/crypto/bcrypt"

// Verifier abstracts how passwords are stored and checked so the exact-match
// scheme inherited from the source system can later be swapped for a real
// hash without touching the ledger or the query engine.
type Verifier interface {
	// Hash returns the representation persisted on the user record.
	Hash(password string) (string, error)
	// Verify checks a login attempt against the stored representation.
	Verify(stored, password string) bool
}

// PlaintextVerifier stores the password as entered and matches it exactly.
// Deliberately insecure, kept for behavioral fidelity with the source system.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Hash(password string) (string, error) { return password, nil }

func (PlaintextVerifier) Verify(stored, password string) bool { return stored == password }

// BcryptVerifier stores a bcrypt hash instead of the raw password.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Hash(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (v BcryptVerifier) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// VerifierForScheme maps a configured scheme name to an implementation,
// defaulting to plaintext.
func VerifierForScheme(scheme string) Verifier {
	if scheme == "bcrypt" {
		return BcryptVerifier{}
	}
	return PlaintextVerifier{}
}
