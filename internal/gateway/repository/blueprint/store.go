// Package blueprint stores uploaded plan images/documents so a synthesis
// request can reference a previously uploaded file instead of re-sending
// bytes.
package blueprint

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("blueprint: not found")

// File is one stored blueprint with its media type.
type File struct {
	MIMEType string
	Data     []byte
}

// Store is the blueprint persistence boundary.
type Store interface {
	Put(ctx context.Context, userID, id string, f File) error
	Get(ctx context.Context, userID, id string) (File, error)
	Delete(ctx context.Context, userID, id string) error
}

// MemoryStore keeps blueprints in process memory for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]File
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]File)}
}

func key(userID, id string) string { return userID + "/" + id }

func (s *MemoryStore) Put(_ context.Context, userID, id string, f File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := File{MIMEType: f.MIMEType, Data: append([]byte(nil), f.Data...)}
	s.files[key(userID, id)] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID, id string) (File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[key(userID, id)]
	if !ok {
		return File{}, ErrNotFound
	}
	return File{MIMEType: f.MIMEType, Data: append([]byte(nil), f.Data...)}, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[key(userID, id)]; !ok {
		return ErrNotFound
	}
	delete(s.files, key(userID, id))
	return nil
}
