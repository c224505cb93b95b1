// Package storage persists save slots: the serialized campaign plus enough
// metadata to list saves without decoding them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrNotFound    = errors.New("save slot not found")
	ErrInvalidName = errors.New("invalid save slot name")
)

// Slot describes one stored save.
type Slot struct {
	Name       string    `json:"name"`
	CampaignID string    `json:"campaignId"`
	Round      int64     `json:"round"`
	SavedAt    time.Time `json:"savedAt"`
}

// Store is a save-slot backend.
type Store interface {
	// Put writes data under slot.Name, replacing any existing slot.
	Put(ctx context.Context, slot Slot, data []byte) error
	// Get returns the slot and its data, or ErrNotFound.
	Get(ctx context.Context, name string) (Slot, []byte, error)
	// List returns the slots for a campaign, newest first. An empty
	// campaignID lists every slot.
	List(ctx context.Context, campaignID string) ([]Slot, error)
	// Delete removes a slot, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
	Close() error
}

var slotName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateName checks that a slot name is safe to use as a file name.
func ValidateName(name string) error {
	if !slotName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
