// Package accounts manages user records and the single persisted session
// pointer on top of the key-value store.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"piggybank/internal/core"
	"piggybank/internal/log"
	"piggybank/internal/storage"
)

// Basic local@domain.tld shape; anything fancier is out of scope.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

const (
	minPasswordLen = 6
	minUsernameLen = 3
)

// Store owns the user collection and the session pointer. A single mutex
// serializes the read-modify-write cycles against the key-value store.
type Store struct {
	mu     sync.Mutex
	kv     storage.Store
	verify Verifier
	logger *log.Logger
}

func New(kv storage.Store, verifier Verifier, logger *log.Logger) *Store {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentAccounts)
	}
	return &Store{kv: kv, verify: verifier, logger: logger}
}

// SignUp creates a user with an empty ledger and makes it the current session.
func (s *Store) SignUp(ctx context.Context, email, username, password string) (*core.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if verr := validateSignUp(email, username, password); len(verr) > 0 {
		return nil, verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.loadUsers(ctx)
	for _, u := range users {
		if u.Email == email {
			return nil, core.ErrDuplicateEmail
		}
	}

	stored, err := s.verify.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
		Password: stored,
	}
	users = append(users, user)

	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}
	if err := s.setSession(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User signed up",
		log.FieldOperation, log.OpSignUp,
		log.FieldUserID, user.ID,
		log.FieldUserEmail, user.Email)
	return &user, nil
}

// SignIn matches email and password exactly (through the Verifier) and makes
// the matched user the current session.
func (s *Store) SignIn(ctx context.Context, email, password string) (*core.User, error) {
	email = strings.TrimSpace(email)

	if verr := validateSignIn(email, password); len(verr) > 0 {
		return nil, verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.loadUsers(ctx) {
		if u.Email == email && s.verify.Verify(u.Password, password) {
			if err := s.setSession(ctx, u); err != nil {
				return nil, err
			}
			s.logger.InfoContext(ctx, "User signed in",
				log.FieldOperation, log.OpSignIn,
				log.FieldUserID, u.ID,
				log.FieldUserEmail, u.Email)
			return &u, nil
		}
	}
	return nil, core.ErrInvalidCredentials
}

// SignOut clears the session pointer. The user record is kept.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, storage.SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.InfoContext(ctx, "Session cleared", log.FieldOperation, log.OpSignOut)
	return nil
}

// CurrentSession resolves the persisted session pointer. A session whose email
// no longer exists in the user collection is treated as invalid and cleared.
func (s *Store) CurrentSession(ctx context.Context) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, found, err := s.kv.Get(ctx, storage.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !found {
		return nil, core.ErrNoSession
	}

	var snapshot core.User
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		s.logger.WarnContext(ctx, "Discarding corrupt session blob", log.FieldError, err)
		_ = s.kv.Delete(ctx, storage.SessionKey)
		return nil, core.ErrNoSession
	}

	// The snapshot is denormalized; the user collection stays authoritative.
	for _, u := range s.loadUsers(ctx) {
		if u.Email == snapshot.Email {
			return &u, nil
		}
	}

	s.logger.WarnContext(ctx, "Session references unknown user, clearing",
		log.FieldUserEmail, snapshot.Email)
	_ = s.kv.Delete(ctx, storage.SessionKey)
	return nil, core.ErrNoSession
}

// SaveUser writes an updated user record through to the collection and, when
// it belongs to the current session, refreshes the session snapshot too.
// This is the ledger's write-through path.
func (s *Store) SaveUser(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.loadUsers(ctx)
	replaced := false
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = *user
			replaced = true
			break
		}
	}
	if !replaced {
		return fmt.Errorf("save user %s: record not found", user.ID)
	}

	if err := s.saveUsers(ctx, users); err != nil {
		return err
	}

	if blob, found, err := s.kv.Get(ctx, storage.SessionKey); err == nil && found {
		var snapshot core.User
		if json.Unmarshal(blob, &snapshot) == nil && snapshot.Email == user.Email {
			return s.setSession(ctx, *user)
		}
	}
	return nil
}

// loadUsers reads the user collection, treating malformed or missing data as
// an empty collection.
func (s *Store) loadUsers(ctx context.Context) []core.User {
	blob, found, err := s.kv.Get(ctx, storage.UsersKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read user collection", log.FieldError, err)
		return nil
	}
	if !found {
		return nil
	}
	var users []core.User
	if err := json.Unmarshal(blob, &users); err != nil {
		s.logger.WarnContext(ctx, "Discarding corrupt user collection", log.FieldError, err)
		return nil
	}
	return users
}

func (s *Store) saveUsers(ctx context.Context, users []core.User) error {
	blob, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode user collection: %w", err)
	}
	if err := s.kv.Set(ctx, storage.UsersKey, blob); err != nil {
		return fmt.Errorf("persist user collection: %w", err)
	}
	return nil
}

func (s *Store) setSession(ctx context.Context, user core.User) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, storage.SessionKey, blob); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// validateSignUp checks every field independently so all violations are
// reported together.
func validateSignUp(email, username, password string) core.ValidationError {
	verr := core.ValidationError{}
	checkEmail(verr, email)
	checkPassword(verr, password)
	if username == "" {
		verr["username"] = "must not be empty"
	} else if len(username) < minUsernameLen {
		verr["username"] = fmt.Sprintf("must be at least %d characters", minUsernameLen)
	}
	if len(verr) == 0 {
		return nil
	}
	return verr
}

func validateSignIn(email, password string) core.ValidationError {
	verr := core.ValidationError{}
	checkEmail(verr, email)
	checkPassword(verr, password)
	if len(verr) == 0 {
		return nil
	}
	return verr
}

func checkEmail(verr core.ValidationError, email string) {
	if email == "" {
		verr["email"] = "must not be empty"
	} else if !emailPattern.MatchString(email) {
		verr["email"] = "must look like local@domain.tld"
	}
}

func checkPassword(verr core.ValidationError, password string) {
	if password == "" {
		verr["password"] = "must not be empty"
	} else if len(password) < minPasswordLen {
		verr["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLen)
	}
}
