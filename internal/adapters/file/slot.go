// Package file keeps durable slots in a small JSON document in the user's
// config directory, one document per profile.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/batch-seat-reservations/internal/seatstore"
)

const appDir = "batch-seats"

type document struct {
	Slots map[string]string `json:"slots"`
}

type Slot struct {
	path string
	key  string
	mu   sync.Mutex
}

var _ seatstore.Slot = &Slot{}

// NewSlot stores key in the document at path. An empty path resolves to
// storage.json under the user config dir.
func NewSlot(path, key string) (*Slot, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Slot{path: path, key: key}, nil
}

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve config dir")
	}
	return filepath.Join(dir, appDir, "storage.json"), nil
}

func (s *Slot) Get(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Slots[s.key]
	return v, ok, nil
}

func (s *Slot) Set(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Slots[s.key] = value
	return s.save(doc)
}

func (s *Slot) load() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return document{Slots: map[string]string{}}, nil
		}
		return document{}, errors.Wrap(err, "read slot file")
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, errors.Wrap(err, "invalid slot file format")
	}
	if doc.Slots == nil {
		doc.Slots = map[string]string{}
	}
	return doc, nil
}

// save writes through a temp file so a crash never leaves half a document.
func (s *Slot) save(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create slot dir")
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write slot file")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replace slot file")
}
