// Package storage is the persistence port behind the session and entity
// caches. Values are JSON documents addressed by a short key.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	KeyAuth       = "auth"
	KeyPosts      = "posts"
	KeyTombstones = "tombstones"
	KeySettings   = "settings"
	// KeyOwner holds the id of the user the cache snapshots belong to.
	KeyOwner = "owner"
)

type Storage interface {
	// Load decodes the value stored under key into v. found is false when
	// nothing is stored.
	Load(key string, v interface{}) (found bool, err error)
	Save(key string, v interface{}) error
	Remove(key string) error
}

// Clear removes every key, reporting all failures together.
func Clear(s Storage, keys ...string) error {
	var result *multierror.Error
	for _, key := range keys {
		if err := s.Remove(key); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// FileStorage keeps one <key>.json file per key under Dir.
type FileStorage struct {
	Dir string

	mu sync.Mutex
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{Dir: dir}
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s *FileStorage) Load(key string, v interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bytes, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "error reading %s", key)
	}

	err = json.Unmarshal(bytes, v)
	if err != nil {
		return false, errors.Wrapf(err, "error unmarshalling %s", key)
	}

	return true, nil
}

func (s *FileStorage) Save(key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bytes, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "error marshalling %s", key)
	}

	err = os.MkdirAll(s.Dir, 0700)
	if err != nil {
		return errors.Wrap(err, "error creating storage dir")
	}

	// write to a temp file first so a crash never leaves half a document
	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "error creating temp file for %s", key)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(bytes)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "error writing %s", key)
	}

	err = os.Chmod(tmpPath, 0600)
	if err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "error setting permissions on %s", key)
	}

	err = os.Rename(tmpPath, s.path(key))
	if err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "error renaming %s", key)
	}

	return nil
}

func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "error removing %s", key)
	}
	return nil
}

// MemStorage is an in-process Storage. Values round-trip through JSON so
// callers never share memory with what was saved.
type MemStorage struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{docs: map[string][]byte{}}
}

func (s *MemStorage) Load(key string, v interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bytes, ok := s.docs[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(bytes, v); err != nil {
		return false, errors.Wrapf(err, "error unmarshalling %s", key)
	}
	return true, nil
}

func (s *MemStorage) Save(key string, v interface{}) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "error marshalling %s", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = bytes
	return nil
}

func (s *MemStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

func (s *MemStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[key]
	return ok
}
