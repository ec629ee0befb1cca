package imagesearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-translation-service/models"
)

func TestSearchImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/res/v1/images/search", r.URL.Path)
		assert.Equal(t, "secret-token", r.Header.Get("X-Subscription-Token"))
		assert.Contains(t, r.URL.Query().Get("q"), "Paella")
		assert.Contains(t, r.URL.Query().Get("q"), "Spanish")

		fmt.Fprint(w, `{"results":[
			{"thumbnail":{"src":"https://img.example/1.jpg"},"properties":{"url":"https://full.example/1.jpg"}},
			{"thumbnail":{"src":""},"properties":{"url":"https://full.example/2.jpg"}},
			{"thumbnail":{"src":"https://img.example/3.jpg"},"properties":{"url":""}},
			{"thumbnail":{"src":"https://img.example/4.jpg"},"properties":{"url":""}}
		]}`)
	}))
	defer server.Close()

	client := NewClient("secret-token", server.URL, 3, 5*time.Second)
	urls, err := client.SearchImages(context.Background(), "Paella", "Spanish")
	require.NoError(t, err)

	// Thumbnail preferred, page URL as fallback, capped at the configured count.
	assert.Equal(t, []string{
		"https://img.example/1.jpg",
		"https://full.example/2.jpg",
		"https://img.example/3.jpg",
	}, urls)
}

func TestSearchImagesNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()

	client := NewClient("secret-token", server.URL, 3, 5*time.Second)
	urls, err := client.SearchImages(context.Background(), "Mystery Dish", "English")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestSearchImagesRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("secret-token", server.URL, 3, 5*time.Second)
	_, err := client.SearchImages(context.Background(), "Paella", "Spanish")

	var upstream *models.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "brave", upstream.Service)
}

func TestSearchImagesMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>definitely not json</html>`)
	}))
	defer server.Close()

	client := NewClient("secret-token", server.URL, 3, 5*time.Second)
	_, err := client.SearchImages(context.Background(), "Paella", "Spanish")

	var malformed *models.MalformedResponseError
	require.True(t, errors.As(err, &malformed))
}
