package asset

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/internal/database"
)

type memoryRepository struct {
	mu      sync.Mutex
	assets  map[uuid.UUID]Asset
	content map[uuid.UUID][]byte
}

// NewMemoryRepository keeps assets in process memory. Used by unit tests and for
// running without persistent storage.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		assets:  map[uuid.UUID]Asset{},
		content: map[uuid.UUID][]byte{},
	}
}

func (r *memoryRepository) Put(_ context.Context, asset Asset, body io.ReadSeeker) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.assets {
		if bytes.Equal(existing.Hash, asset.Hash) {
			return existing, nil
		}
	}

	_, _ = body.Seek(0, 0)

	content, errRead := io.ReadAll(body)
	if errRead != nil {
		return Asset{}, errRead
	}

	r.assets[asset.AssetID] = asset
	r.content[asset.AssetID] = content

	return asset, nil
}

func (r *memoryRepository) GetByID(_ context.Context, assetID uuid.UUID) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, found := r.assets[assetID]
	if !found {
		return Asset{}, database.ErrNoResult
	}

	return asset, nil
}

func (r *memoryRepository) Open(_ context.Context, asset Asset) (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, found := r.content[asset.AssetID]
	if !found {
		return nil, database.ErrNoResult
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

func (r *memoryRepository) Delete(_ context.Context, assetID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, found := r.assets[assetID]
	if !found {
		return 0, database.ErrNoResult
	}

	delete(r.assets, assetID)
	delete(r.content, assetID)

	return asset.Size, nil
}
