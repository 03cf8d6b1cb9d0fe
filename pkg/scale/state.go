package scale

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StateStore persists the replica snapshot for a namespace so a scale up
// can restore counts in a later invocation.
type StateStore interface {
	// Save replaces any prior snapshot for the namespace.
	Save(namespace string, snapshot Snapshot) error
	// Load returns ErrSnapshotNotFound when no snapshot exists for the
	// namespace. Other errors mean the snapshot exists but could not be
	// read or decoded.
	Load(namespace string) (Snapshot, error)
}

// FileStore keeps one JSON file per namespace, mapping deployment name to
// replica count, overwritten wholesale on save.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Save(namespace string, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never leaves a partial
	// snapshot observable at the final path.
	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".original-replicas-%s-*", namespace))
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), s.path(namespace))
}

func (s *FileStore) Load(namespace string) (Snapshot, error) {
	data, err := os.ReadFile(s.path(namespace))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w for namespace %q", ErrSnapshotNotFound, namespace)
	} else if err != nil {
		return nil, err
	}

	snapshot := make(Snapshot)
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot for namespace %q: %w", namespace, err)
	}
	return snapshot, nil
}

func (s *FileStore) path(namespace string) string {
	return filepath.Join(s.dir, fmt.Sprintf("original-replicas-%s.json", namespace))
}
