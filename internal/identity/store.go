package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// currentKey is the single key under which the signed-in identity lives.
const currentKey = "current"

// Store persists the signed-in identity on disk so a session survives
// process restart. Absence of a stored identity means signed out.
type Store struct {
	d *diskv.Diskv
}

// NewStore creates a Store rooted at basePath.
func NewStore(basePath string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 64 * 1024,
	})}
}

// Load reads the persisted identity. The second return is false when no
// identity is stored.
func (s *Store) Load() (Identity, bool, error) {
	data, err := s.d.Read(currentKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Identity{}, false, nil
		}
		return Identity{}, false, fmt.Errorf("read identity: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, false, fmt.Errorf("unmarshal identity: %w", err)
	}
	return id, true, nil
}

// Save writes the identity, replacing any previous one.
func (s *Store) Save(id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := s.d.Write(currentKey, data); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// Clear removes the persisted identity. Clearing an empty store is not an
// error.
func (s *Store) Clear() error {
	err := s.d.Erase(currentKey)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
