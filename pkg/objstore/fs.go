package objstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/parthk/blockvault/pkg/errors"
)

// metaSuffix is appended to an object's path to form its sidecar file.
const metaSuffix = ".meta.json"

// FSStore keeps objects as files under a root directory, with a JSON
// sidecar per object holding its metadata. Intended for development and
// tests; production deployments use [S3Store].
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at dir, creating it if
// needed.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "object store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create object store directory")
	}
	return &FSStore{root: dir}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Put stores data under key, creating intermediate directories.
func (s *FSStore) Put(_ context.Context, key string, data []byte, meta ObjectMeta) error {
	if err := validateKey(key); err != nil {
		return err
	}
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create directory for %s", key)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write object %s", key)
	}

	sidecar, err := json.Marshal(meta)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode metadata for %s", key)
	}
	if err := os.WriteFile(path+metaSuffix, sidecar, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write metadata for %s", key)
	}
	return nil
}

// Get retrieves an object and its sidecar metadata.
func (s *FSStore) Get(_ context.Context, key string) ([]byte, ObjectMeta, error) {
	if err := validateKey(key); err != nil {
		return nil, ObjectMeta{}, err
	}
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ObjectMeta{}, errors.New(errors.ErrCodeBlockNotFound, "object %s not found", key)
	}
	if err != nil {
		return nil, ObjectMeta{}, errors.Wrap(errors.ErrCodeInternal, err, "read object %s", key)
	}

	meta, err := s.readMeta(key)
	if err != nil {
		return nil, ObjectMeta{}, err
	}
	return data, meta, nil
}

// Head reports whether key exists.
func (s *FSStore) Head(_ context.Context, key string) (bool, ObjectMeta, error) {
	if err := validateKey(key); err != nil {
		return false, ObjectMeta{}, err
	}
	if _, err := os.Stat(s.path(key)); os.IsNotExist(err) {
		return false, ObjectMeta{}, nil
	} else if err != nil {
		return false, ObjectMeta{}, errors.Wrap(errors.ErrCodeInternal, err, "stat object %s", key)
	}
	meta, err := s.readMeta(key)
	if err != nil {
		return false, ObjectMeta{}, err
	}
	return true, meta, nil
}

// Delete removes an object and its sidecar. Missing keys are ignored.
func (s *FSStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	path := s.path(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete object %s", key)
	}
	if err := os.Remove(path + metaSuffix); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete metadata for %s", key)
	}
	return nil
}

// URL returns the object's absolute file path.
func (s *FSStore) URL(key string) string {
	return s.path(key)
}

func (s *FSStore) readMeta(key string) (ObjectMeta, error) {
	var meta ObjectMeta
	sidecar, err := os.ReadFile(s.path(key) + metaSuffix)
	if os.IsNotExist(err) {
		// Objects written by other tools may lack a sidecar.
		return meta, nil
	}
	if err != nil {
		return meta, errors.Wrap(errors.ErrCodeInternal, err, "read metadata for %s", key)
	}
	if err := json.Unmarshal(sidecar, &meta); err != nil {
		return meta, errors.Wrap(errors.ErrCodeInternal, err, "decode metadata for %s", key)
	}
	return meta, nil
}

var _ BlockStore = (*FSStore)(nil)
