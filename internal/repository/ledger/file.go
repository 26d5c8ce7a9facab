package ledger

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/aid-escrow/internal/config"
)

// FileStore persists the whole ledger to a single JSON file on disk.
// The file is a protojson-encoded Struct mapping each key to its base64 value.
// Every write rewrites the file through a temporary file and a rename, so a
// crash never leaves a half-written ledger behind.
type FileStore struct {
	// path is the filesystem location of the ledger file.
	path string
	// records mirrors the file contents.
	records map[string][]byte
	// mu protects records and the file.
	mu sync.RWMutex
}

// OpenFileStore loads the ledger at path, starting empty if the file is missing.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    filepath.Clean(path),
		records: make(map[string][]byte),
	}

	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}

		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var snapshot structpb.Struct
	if err = protojson.Unmarshal(contents, &snapshot); err != nil {
		return nil, fmt.Errorf("decode ledger file: %w", err)
	}

	for key, value := range snapshot.GetFields() {
		decoded, decodeErr := base64.StdEncoding.DecodeString(value.GetStringValue())
		if decodeErr != nil {
			return nil, fmt.Errorf("decode ledger key %q: %w", key, decodeErr)
		}

		s.records[key] = decoded
	}

	return s, nil
}

// Get returns a copy of the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneBytes(value), nil
}

// Has reports whether key is present.
func (s *FileStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[key]

	return ok, nil
}

// Set stores value under key and flushes the ledger to disk.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetBatch(ctx, []Write{{Key: key, Value: value}})
}

// SetBatch applies all writes and flushes the ledger once.
// On a failed flush the in-memory view is rolled back.
func (s *FileStore) SetBatch(_ context.Context, writes []Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string][]byte, len(writes))
	for _, w := range writes {
		if _, seen := previous[w.Key]; !seen {
			previous[w.Key] = s.records[w.Key]
		}

		s.records[w.Key] = cloneBytes(w.Value)
	}

	if err := s.flush(); err != nil {
		for key, value := range previous {
			if value == nil {
				delete(s.records, key)
				continue
			}

			s.records[key] = value
		}

		return err
	}

	return nil
}

// flush writes the current records to disk. Callers hold mu.
func (s *FileStore) flush() error {
	fields := make(map[string]*structpb.Value, len(s.records))
	for key, value := range s.records {
		fields[key] = structpb.NewStringValue(base64.StdEncoding.EncodeToString(value))
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(&structpb.Struct{Fields: fields})
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}

	if err = os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}

	return nil
}
