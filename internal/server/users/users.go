// Package users is the account store of the vault service: a JSON file of
// user records with bcrypt-hashed passwords and security answers. The file is
// small and rewritten whole on every change, guarded by one lock.
package users

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyExists      = errors.New("user id already exists")
	ErrNotFound           = errors.New("user id not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongAnswer        = errors.New("incorrect security answer")
)

// record is the persisted form of one account. The security question is kept
// in clear so it can be shown during recovery; the answer is hashed like a
// password.
type record struct {
	PasswordHash       string `json:"password_hash"`
	SecurityQuestion   string `json:"security_question"`
	SecurityAnswerHash string `json:"security_answer_hash"`
}

// Store holds accounts in a single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Create registers a new account with hashed credentials.
func (s *Store) Create(userID, password, securityQuestion, securityAnswer string) error {
	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	ansHash, err := bcrypt.GenerateFromPassword([]byte(securityAnswer), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[userID]; ok {
		return ErrAlreadyExists
	}
	users[userID] = record{
		PasswordHash:       string(pwHash),
		SecurityQuestion:   securityQuestion,
		SecurityAnswerHash: string(ansHash),
	}
	return s.save(users)
}

// Authenticate verifies the password of an existing account. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *Store) Authenticate(userID, password string) error {
	s.mu.Lock()
	users, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	rec, ok := users[userID]
	if !ok {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// SecurityQuestion returns the account's recovery question.
func (s *Store) SecurityQuestion(userID string) (string, error) {
	s.mu.Lock()
	users, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	rec, ok := users[userID]
	if !ok {
		return "", ErrNotFound
	}
	return rec.SecurityQuestion, nil
}

// CheckAnswer verifies the recovery answer.
func (s *Store) CheckAnswer(userID, answer string) error {
	s.mu.Lock()
	users, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	rec, ok := users[userID]
	if !ok {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.SecurityAnswerHash), []byte(answer)) != nil {
		return ErrWrongAnswer
	}
	return nil
}

// SetPassword replaces the account's password after a granted recovery.
func (s *Store) SetPassword(userID, newPassword string) error {
	pwHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	rec, ok := users[userID]
	if !ok {
		return ErrNotFound
	}
	rec.PasswordHash = string(pwHash)
	users[userID] = rec
	return s.save(users)
}

// Exists reports whether the account is registered.
func (s *Store) Exists(userID string) bool {
	s.mu.Lock()
	users, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return false
	}
	_, ok := users[userID]
	return ok
}

func (s *Store) load() (map[string]record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]record{}, nil
		}
		return nil, err
	}
	users := map[string]record{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) save(users map[string]record) error {
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
