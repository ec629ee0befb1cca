package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-translation-service/imagesearch"
)

type fakeSearcher struct {
	calls   atomic.Int32
	results map[string][]string
	err     error
}

func (f *fakeSearcher) SearchImages(ctx context.Context, dishName, language string) ([]string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[dishName], nil
}

func TestFetchImages(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]string{
		"Paella":   {"https://img.example/paella.jpg"},
		"Gazpacho": {"https://img.example/gazpacho.jpg"},
	}}
	svc := NewEnrichmentService(imagesearch.NewCache(0), searcher, 4)

	images := svc.FetchImages(context.Background(), []string{"Paella", "Gazpacho"}, "Spanish", true)

	require.Len(t, images, 2)
	assert.Equal(t, []string{"https://img.example/paella.jpg"}, images["Paella"])
	assert.Equal(t, []string{"https://img.example/gazpacho.jpg"}, images["Gazpacho"])
	assert.Equal(t, int32(2), searcher.calls.Load())
}

func TestFetchImagesOptOut(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := NewEnrichmentService(imagesearch.NewCache(0), searcher, 4)

	images := svc.FetchImages(context.Background(), []string{"Paella", "Gazpacho"}, "Spanish", false)

	assert.Empty(t, images)
	assert.NotNil(t, images, "opt-out returns an empty map, not nil")
	assert.Equal(t, int32(0), searcher.calls.Load(), "opt-out must not touch upstream")
}

func TestFetchImagesWarmCacheIsIdempotent(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]string{
		"Paella": {"https://img.example/paella.jpg"},
	}}
	svc := NewEnrichmentService(imagesearch.NewCache(0), searcher, 4)

	first := svc.FetchImages(context.Background(), []string{"Paella"}, "Spanish", true)
	second := svc.FetchImages(context.Background(), []string{"Paella"}, "Spanish", true)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), searcher.calls.Load(), "warm cache issues no new upstream calls")
}

func TestFetchImagesSharedKeyAcrossCasing(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]string{
		"Paella": {"https://img.example/paella.jpg"},
	}}
	svc := NewEnrichmentService(imagesearch.NewCache(0), searcher, 4)

	svc.FetchImages(context.Background(), []string{"Paella"}, "Spanish", true)
	images := svc.FetchImages(context.Background(), []string{"  paella "}, "Spanish", true)

	assert.Equal(t, int32(1), searcher.calls.Load(), "case and whitespace map to the same cache key")
	assert.Equal(t, []string{"https://img.example/paella.jpg"}, images["  paella "])
}

func TestFetchImagesPerDishFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("brave is down")}
	svc := NewEnrichmentService(imagesearch.NewCache(0), searcher, 4)

	images := svc.FetchImages(context.Background(), []string{"Paella", "Gazpacho"}, "Spanish", true)

	// The batch still succeeds; failed dishes map to empty lists, not
	// missing keys.
	require.Len(t, images, 2)
	assert.NotNil(t, images["Paella"])
	assert.Empty(t, images["Paella"])
	assert.NotNil(t, images["Gazpacho"])
	assert.Empty(t, images["Gazpacho"])
}

func TestFetchImagesSkipsBlankAndDuplicateNames(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]string{
		"Paella": {"https://img.example/paella.jpg"},
	}}
	svc := NewEnrichmentService(imagesearch.NewCache(0), searcher, 4)

	images := svc.FetchImages(context.Background(), []string{"Paella", "", "Paella", "  "}, "Spanish", true)

	require.Len(t, images, 1)
	assert.Equal(t, int32(1), searcher.calls.Load())
}

func TestFetchImagesBoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	block := make(chan struct{})
	searcher := &blockingSearcher{inFlight: &inFlight, peak: &peak, block: block}
	svc := NewEnrichmentService(imagesearch.NewCache(0), searcher, 2)

	done := make(chan map[string][]string)
	go func() {
		done <- svc.FetchImages(context.Background(),
			[]string{"a", "b", "c", "d", "e"}, "English", true)
	}()

	// Let the workers saturate the semaphore before releasing them.
	for i := 0; i < 100 && peak.Load() < 2; i++ {
		time.Sleep(time.Millisecond)
	}
	close(block)
	images := <-done

	assert.Len(t, images, 5)
	assert.LessOrEqual(t, peak.Load(), int32(2), "fan-out must respect the concurrency cap")
}

type blockingSearcher struct {
	inFlight *atomic.Int32
	peak     *atomic.Int32
	block    chan struct{}
}

func (b *blockingSearcher) SearchImages(ctx context.Context, dishName, language string) ([]string, error) {
	current := b.inFlight.Add(1)
	for {
		observed := b.peak.Load()
		if current <= observed || b.peak.CompareAndSwap(observed, current) {
			break
		}
	}
	<-b.block
	b.inFlight.Add(-1)
	return []string{"https://img.example/" + dishName + ".jpg"}, nil
}
