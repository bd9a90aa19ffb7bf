package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
)

// ErrNotFound indicates nothing has been saved yet.
var ErrNotFound = errors.New("settings not found")

// Store loads and saves the Record.
type Store interface {
	Load() (*Record, error)
	Save(*Record) error
}

// FileStore keeps the Record in a file.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load implements Store.
func (s *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := &Record{}
	if err := proto.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return rec, nil
}

// Save implements Store. The file is replaced atomically.
func (s *FileStore) Save(rec *Record) error {
	data, err := proto.Marshal(rec)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".settings-")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), s.Path); err != nil {
		return err
	}
	glog.V(2).Infof("settings saved: %v", rec)
	return nil
}

// MemoryStore keeps the Record in memory.
type MemoryStore struct {
	lock  sync.Mutex
	data  []byte
	saved bool
	Saves int
}

// Load implements Store.
func (s *MemoryStore) Load() (*Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.saved {
		return nil, ErrNotFound
	}
	rec := &Record{}
	if err := proto.Unmarshal(s.data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Save implements Store.
func (s *MemoryStore) Save(rec *Record) error {
	data, err := proto.Marshal(rec)
	if err != nil {
		return err
	}
	s.lock.Lock()
	s.data, s.saved = data, true
	s.Saves++
	s.lock.Unlock()
	return nil
}
