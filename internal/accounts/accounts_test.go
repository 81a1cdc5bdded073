package accounts

import (
	"context"
	"errors"
	"testing"

	"piggybank/internal/core"
	"piggybank/internal/storage"
)

func newTestStore() *Store {
	return New(storage.NewMemory(), PlaintextVerifier{}, nil)
}

func TestSignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	u, err := s.SignUp(ctx, "test@example.com", "TestUser", "password")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if u.ID == "" || u.Email != "test@example.com" || u.Username != "TestUser" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if len(u.Transactions) != 0 {
		t.Fatal("new user should start with an empty ledger")
	}

	// Sign-up establishes the session
	cur, err := s.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("current session: %v", err)
	}
	if cur.Email != u.Email {
		t.Fatalf("session email = %s, want %s", cur.Email, u.Email)
	}

	if err := s.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := s.CurrentSession(ctx); !errors.Is(err, core.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	// Same credentials sign back in
	back, err := s.SignIn(ctx, "test@example.com", "password")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if back.ID != u.ID {
		t.Fatal("sign in should resolve the same record")
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.SignUp(ctx, "test@example.com", "TestUser", "password"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	_, err := s.SignUp(ctx, "test@example.com", "SomeoneElse", "different")
	if !errors.Is(err, core.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.SignUp(ctx, "test@example.com", "TestUser", "password"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := s.SignIn(ctx, "test@example.com", "passw0rd"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.SignIn(ctx, "other@example.com", "password"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpValidationReportsAllFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.SignUp(ctx, "not-an-email", "ab", "123")
	var verr core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"email", "username", "password"} {
		if _, ok := verr[field]; !ok {
			t.Fatalf("expected %s violation, got %v", field, verr)
		}
	}
}

func TestSignInValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.SignIn(ctx, "", "")
	var verr core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr) != 2 {
		t.Fatalf("expected both fields reported, got %v", verr)
	}
}

func TestStaleSessionIsCleared(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := New(kv, PlaintextVerifier{}, nil)

	// Session snapshot pointing at a user that is not in the collection
	if err := kv.Set(ctx, storage.SessionKey, []byte(`{"email":"ghost@example.com"}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CurrentSession(ctx); !errors.Is(err, core.ErrNoSession) {
		t.Fatalf("expected ErrNoSession for stale session, got %v", err)
	}
	if _, found, _ := kv.Get(ctx, storage.SessionKey); found {
		t.Fatal("stale session should be cleared from the store")
	}
}

func TestCorruptUserCollectionTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	if err := kv.Set(ctx, storage.UsersKey, []byte("{definitely not json")); err != nil {
		t.Fatal(err)
	}
	s := New(kv, PlaintextVerifier{}, nil)

	// Corrupt collection behaves as empty, so sign-up succeeds
	if _, err := s.SignUp(ctx, "test@example.com", "TestUser", "password"); err != nil {
		t.Fatalf("sign up over corrupt collection: %v", err)
	}
}

func TestBcryptVerifier(t *testing.T) {
	v := BcryptVerifier{}
	stored, err := v.Hash("password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if stored == "password" {
		t.Fatal("bcrypt should not store the raw password")
	}
	if !v.Verify(stored, "password") {
		t.Fatal("correct password should verify")
	}
	if v.Verify(stored, "passw0rd") {
		t.Fatal("wrong password should not verify")
	}
}
