package service

import (
	"context"
	"strings"
	"sync"

	"github.com/apex/log"
	"golang.org/x/sync/semaphore"

	"menu-translation-service/imagesearch"
)

// Searcher finds representative image URLs for a dish.
type Searcher interface {
	SearchImages(ctx context.Context, dishName, language string) ([]string, error)
}

// EnrichmentService is the Stage 2 pipeline: given the dish names from a
// Stage 1 response, look each one up through the shared cache, fanning
// misses out to the image search API under a concurrency cap.
type EnrichmentService struct {
	cache         *imagesearch.Cache
	searcher      Searcher
	maxConcurrent int64
}

// NewEnrichmentService wires the Stage 2 pipeline around a shared cache.
func NewEnrichmentService(cache *imagesearch.Cache, searcher Searcher, maxConcurrent int) *EnrichmentService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &EnrichmentService{
		cache:         cache,
		searcher:      searcher,
		maxConcurrent: int64(maxConcurrent),
	}
}

// FetchImages resolves image URLs for each named dish. A dish whose search
// fails or finds nothing maps to an empty list, never to a missing key; one
// bad dish cannot fail the batch. With wantImages false it returns an empty
// map without touching cache or upstream.
func (s *EnrichmentService) FetchImages(ctx context.Context, dishNames []string, language string, wantImages bool) map[string][]string {
	images := make(map[string][]string)
	if !wantImages {
		return images
	}

	sem := semaphore.NewWeighted(s.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, name := range dishNames {
		name := name
		if strings.TrimSpace(name) == "" {
			continue
		}
		mu.Lock()
		if _, seen := images[name]; seen {
			mu.Unlock()
			continue
		}
		images[name] = []string{}
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			key := imagesearch.Key(name, language)
			urls, err := s.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]string, error) {
				return s.searcher.SearchImages(ctx, name, language)
			})
			if err != nil {
				log.Warnf("Image search failed for %q: %v", name, err)
				return
			}
			if urls == nil {
				urls = []string{}
			}
			mu.Lock()
			images[name] = urls
			mu.Unlock()
		}()
	}

	wg.Wait()
	return images
}
