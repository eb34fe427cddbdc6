package batch

import (
	"context"
	"fmt"

	"craftpress/internal/asset"
	"craftpress/internal/config"
	"craftpress/internal/tracker"
)

// Discover scans the backlog directory and returns the assets that still need
// work. Already-processed identities are filtered out unless force is set.
func Discover(ctx context.Context, cfg *config.Config, store tracker.Store, dir string, force bool) ([]asset.Asset, error) {
	if dir == "" {
		dir = cfg.Paths.FilesDir
	}
	assets, err := asset.Scan(dir, cfg.Pipeline.AcceptedExtensions)
	if err != nil {
		return nil, fmt.Errorf("scan backlog directory: %w", err)
	}
	if force {
		return assets, nil
	}

	pending := assets[:0]
	for _, item := range assets {
		processed, err := store.IsProcessed(ctx, item.Identity)
		if err != nil {
			return nil, fmt.Errorf("check processed state for %s: %w", item.Identity, err)
		}
		if !processed {
			pending = append(pending, item)
		}
	}
	return pending, nil
}
