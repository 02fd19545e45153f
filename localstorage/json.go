package localstorage

import (
	"context"
	"encoding/json"
	"os"
	"sync"
)

// JSONStorage behaves exactly like FileStorage (whole-file snapshot on
// every Set, reload on Load) but uses encoding/json instead of
// encoding/gob, trading a little size and type-fidelity for a file that's
// human-inspectable and diffable — useful while developing a new
// connection's buffering behavior.
type JSONStorage struct {
	path string
	mu   sync.Mutex
	m    map[string]json.RawMessage
}

// NewJSONStorage constructs a JSONStorage backed by the file at path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path, m: make(map[string]json.RawMessage)}
}

// Load reads the snapshot file if present; a missing file is not an error.
func (s *JSONStorage) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	m := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
	}
	s.m = m
	return nil
}

// Get unmarshals the value stored under key into a generic `any` and
// returns it, or returns def if key is absent.
func (s *JSONStorage) Get(ctx context.Context, key string, def any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.m[key]
	if !ok {
		return def, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Set marshals value and stores it under key, then rewrites the whole-file
// snapshot before returning.
func (s *JSONStorage) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = raw
	return s.flushLocked()
}

func (s *JSONStorage) flushLocked() error {
	data, err := json.MarshalIndent(s.m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
