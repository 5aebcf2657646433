package persistance

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/leadpilot/filter-engine/pkg/facet"
)

// Adapter mirrors a facet store to session-scoped storage. Save runs on
// every Apply, Load once when a panel opens, Delete on clear-all. A broken
// or missing snapshot never fails restoration, the caller gets nil and
// starts from an empty store.
type Adapter struct {
	storage Storage
	log     *zap.Logger
}

func NewAdapter(storage Storage, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{storage: storage, log: log}
}

func (a *Adapter) Save(ctx context.Context, key string, store *facet.Store) error {
	data, err := MarshalSnapshot(store)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := a.storage.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// Load restores the snapshot under key. Returns (nil, nil) when nothing is
// stored or the stored blob is unreadable.
func (a *Adapter) Load(ctx context.Context, key string, schema facet.Schema) (*facet.Store, error) {
	data, err := a.storage.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	store, err := UnmarshalSnapshot(data, schema)
	if err != nil {
		a.log.Warn("discarding malformed snapshot", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return store, nil
}

func (a *Adapter) Delete(ctx context.Context, key string) error {
	if err := a.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}
