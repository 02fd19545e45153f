package localstorage

import (
	"bytes"
	"context"
	"encoding/gob"
	"os"
	"sync"

	"github.com/alephcore/engine/record"
)

func init() {
	// Register the concrete types that flow through Storage values as `any`
	// so gob can encode/decode them inside the snapshot map.
	gob.Register(record.Record{})
	gob.Register([]record.Record{})
	gob.Register(map[string]record.Record{})
	gob.Register(map[string][]record.Record{})
}

// FileStorage is a Storage whose entire map is snapshotted to an opaque
// binary file (via encoding/gob) on every Set, and reloaded wholesale by
// Load. Suitable for small buffers like StoreAndForward's per-connection
// state, where whole-file rewrite cost is negligible.
type FileStorage struct {
	path string
	mu   sync.Mutex
	m    map[string]any
}

// NewFileStorage constructs a FileStorage backed by the file at path. Call
// Load before first use to recover any prior snapshot.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path, m: make(map[string]any)}
}

// Load reads the snapshot file if present; a missing file is not an error
// (first run).
func (s *FileStorage) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	m := make(map[string]any)
	if len(data) > 0 {
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
			return err
		}
	}
	s.m = m
	return nil
}

// Get returns the value stored under key, or def if absent.
func (s *FileStorage) Get(ctx context.Context, key string, def any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[key]; ok {
		return v, nil
	}
	return def, nil
}

// Set stores value under key and rewrites the whole-file snapshot before
// returning, so a crash immediately after Set never loses the write.
func (s *FileStorage) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return s.flushLocked()
}

func (s *FileStorage) flushLocked() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.m); err != nil {
		return err
	}
	return os.WriteFile(s.path, buf.Bytes(), 0o600)
}
