package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	dataExt = ".save.json"
	metaExt = ".meta.json"
)

// FileStore keeps each slot as a save file plus a metadata sidecar in one
// directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// OpenFile creates the directory if needed and returns a store rooted there.
func OpenFile(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("save directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	return &FileStore{dir: filepath.Clean(dir), now: time.Now}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Put(ctx context.Context, slot Slot, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateName(slot.Name); err != nil {
		return err
	}
	if slot.SavedAt.IsZero() {
		slot.SavedAt = s.now()
	}
	slot.SavedAt = slot.SavedAt.UTC()
	meta, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("marshal slot metadata: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dir, slot.Name+dataExt), data); err != nil {
		return fmt.Errorf("write save %s: %w", slot.Name, err)
	}
	if err := writeAtomic(filepath.Join(s.dir, slot.Name+metaExt), meta); err != nil {
		return fmt.Errorf("write save metadata %s: %w", slot.Name, err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, name string) (Slot, []byte, error) {
	if err := ctx.Err(); err != nil {
		return Slot{}, nil, err
	}
	if err := ValidateName(name); err != nil {
		return Slot{}, nil, err
	}
	slot, err := s.readMeta(name)
	if err != nil {
		return Slot{}, nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+dataExt))
	if errors.Is(err, fs.ErrNotExist) {
		return Slot{}, nil, ErrNotFound
	}
	if err != nil {
		return Slot{}, nil, fmt.Errorf("read save %s: %w", name, err)
	}
	return slot, data, nil
}

func (s *FileStore) List(ctx context.Context, campaignID string) ([]Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read save directory: %w", err)
	}
	var out []Slot
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), metaExt)
		if e.IsDir() || !ok {
			continue
		}
		slot, err := s.readMeta(name)
		if err != nil {
			return nil, err
		}
		if campaignID == "" || slot.CampaignID == campaignID {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name+metaExt))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete save %s: %w", name, err)
	}
	if err := os.Remove(filepath.Join(s.dir, name+dataExt)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete save %s: %w", name, err)
	}
	return nil
}

// Close is a no-op; files are closed after each operation.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) readMeta(name string) (Slot, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name+metaExt))
	if errors.Is(err, fs.ErrNotExist) {
		return Slot{}, ErrNotFound
	}
	if err != nil {
		return Slot{}, fmt.Errorf("read save metadata %s: %w", name, err)
	}
	var slot Slot
	if err := json.Unmarshal(raw, &slot); err != nil {
		return Slot{}, fmt.Errorf("decode save metadata %s: %w", name, err)
	}
	return slot, nil
}

// writeAtomic writes through a temp file and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// sortSlots orders newest first, breaking ties by name.
func sortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].SavedAt.Equal(slots[j].SavedAt) {
			return slots[i].SavedAt.After(slots[j].SavedAt)
		}
		return slots[i].Name < slots[j].Name
	})
}
