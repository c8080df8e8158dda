package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type filePrefs struct {
	SoundEnabled *bool     `json:"sound_enabled,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FileStore keeps preferences in a JSON file. The file is read once and
// replaced through a temp file and rename on every change.
type FileStore struct {
	path string

	mu    sync.Mutex
	sound bool
}

// NewFileStore opens the store at path. A missing file means defaults.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, sound: true}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	var p filePrefs
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode prefs %s: %w", path, err)
	}
	if p.SoundEnabled != nil {
		s.sound = *p.SoundEnabled
	}
	return s, nil
}

func (s *FileStore) SoundEnabled(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sound, nil
}

func (s *FileStore) SetSoundEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(enabled); err != nil {
		return err
	}
	s.sound = enabled
	return nil
}

func (s *FileStore) ToggleSound(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := !s.sound
	if err := s.saveLocked(next); err != nil {
		return s.sound, err
	}
	s.sound = next
	return next, nil
}

func (s *FileStore) saveLocked(enabled bool) error {
	data, err := json.MarshalIndent(filePrefs{SoundEnabled: &enabled, UpdatedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create prefs dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}
