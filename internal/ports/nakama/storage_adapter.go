package nakama

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// storageModule is the subset of runtime.NakamaModule the store needs.
type storageModule interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
	StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error
}

// NakamaMatchStore implements ports.MatchStore on Nakama user storage.
type NakamaMatchStore struct {
	nk         storageModule
	collection string
	key        string
}

// NewNakamaMatchStore creates a store writing one object per user.
func NewNakamaMatchStore(nk storageModule, collection, key string) *NakamaMatchStore {
	return &NakamaMatchStore{nk: nk, collection: collection, key: key}
}

// Save replaces the user's snapshot. The object is private to the server.
func (s *NakamaMatchStore) Save(ctx context.Context, userID string, snapshot []byte) error {
	_, err := s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      s.collection,
		Key:             s.key,
		UserID:          userID,
		Value:           string(snapshot),
		PermissionRead:  0,
		PermissionWrite: 0,
	}})
	if err != nil {
		return fmt.Errorf("failed to write snapshot for user %s: %w", userID, err)
	}
	return nil
}

// Load returns the user's snapshot or nil if none exists.
func (s *NakamaMatchStore) Load(ctx context.Context, userID string) ([]byte, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: s.collection,
		Key:        s.key,
		UserID:     userID,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot for user %s: %w", userID, err)
	}
	if len(objects) == 0 {
		return nil, nil
	}
	return []byte(objects[0].GetValue()), nil
}

// Clear deletes the user's snapshot.
func (s *NakamaMatchStore) Clear(ctx context.Context, userID string) error {
	err := s.nk.StorageDelete(ctx, []*runtime.StorageDelete{{
		Collection: s.collection,
		Key:        s.key,
		UserID:     userID,
	}})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot for user %s: %w", userID, err)
	}
	return nil
}

// HasSaved reports whether a snapshot object exists.
func (s *NakamaMatchStore) HasSaved(ctx context.Context, userID string) (bool, error) {
	data, err := s.Load(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(data) > 0, nil
}
