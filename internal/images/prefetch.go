package images

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel requests in Prefetch.
const DefaultConcurrency = 8

// Prefetch measures every distinct URL with at most concurrency requests
// in flight. Images that fail to load are logged and left out of the
// result; only a canceled ctx is returned as an error.
func (f *Fetcher) Prefetch(ctx context.Context, urls []string, concurrency int) (map[string]Meta, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu    sync.Mutex
		metas = make(map[string]Meta, len(urls))
		seen  = make(map[string]struct{}, len(urls))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, url := range urls {
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}

		g.Go(func() error {
			meta, err := f.FetchMeta(ctx, url)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Warn("Skipping image", "url", url, "err", err)
				return nil
			}
			mu.Lock()
			metas[url] = meta
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return metas, err
	}

	slog.Debug("Prefetched image metadata", "requested", len(seen), "measured", len(metas))

	return metas, nil
}
