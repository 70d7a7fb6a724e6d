package console

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"
)

// Storage keys. The expiry is stored as epoch milliseconds.
const (
	storageKeyToken  = "token"
	storageKeyExpire = "tokenExpireTime"
)

// TokenStorage persists the bearer token and its expiry across console
// restarts. Implementations must be safe for concurrent use.
type TokenStorage interface {
	// Load returns the stored token and expiry. A zero token means
	// nothing is stored.
	Load() (token string, expiresAt time.Time, err error)
	Save(token string, expiresAt time.Time) error
	Clear() error
}

// MemoryStorage keeps the token in process memory only.
type MemoryStorage struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewMemoryStorage builds an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.expiresAt, nil
}

func (s *MemoryStorage) Save(token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
	return nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
	return nil
}

// FileStorage persists the token as a small JSON document on disk using
// the same keys the browser console kept in localStorage.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage builds a FileStorage at the given path. The file is
// created on first save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Load() (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", time.Time{}, nil
		}
		return "", time.Time{}, err
	}
	var doc map[string]string
	if err := json.Unmarshal(raw, &doc); err != nil {
		// A corrupt file is treated as no session rather than a hard
		// failure, the next save rewrites it.
		return "", time.Time{}, nil
	}
	token := doc[storageKeyToken]
	if token == "" {
		return "", time.Time{}, nil
	}
	millis, err := strconv.ParseInt(doc[storageKeyExpire], 10, 64)
	if err != nil {
		return "", time.Time{}, nil
	}
	return token, time.UnixMilli(millis), nil
}

func (s *FileStorage) Save(token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := map[string]string{
		storageKeyToken:  token,
		storageKeyExpire: strconv.FormatInt(expiresAt.UnixMilli(), 10),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
