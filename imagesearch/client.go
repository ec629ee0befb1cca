package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"menu-translation-service/models"
)

const imageSearchPath = "/res/v1/images/search"

type searchResponse struct {
	Results []struct {
		Title      string `json:"title"`
		Properties struct {
			URL string `json:"url"`
		} `json:"properties"`
		Thumbnail struct {
			Src string `json:"src"`
		} `json:"thumbnail"`
	} `json:"results"`
}

// Client queries the Brave image search API for dish photos.
type Client struct {
	apiKey     string
	baseURL    string
	count      int
	httpClient *http.Client
}

// NewClient creates a Brave image search client. count caps how many URLs
// a single search returns.
func NewClient(apiKey, baseURL string, count int, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		count:      count,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchImages returns image URLs for a dish. The language joins the query
// so "tortilla" on a Spanish menu finds the omelette, not the flatbread.
func (c *Client) SearchImages(ctx context.Context, dishName, language string) ([]string, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s %s food dish", dishName, language))
	query.Set("count", strconv.Itoa(c.count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+imageSearchPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.UpstreamError{Service: "brave", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.UpstreamError{Service: "brave", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &models.UpstreamError{
			Service: "brave",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 256)),
		}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &models.MalformedResponseError{Service: "brave", Payload: string(body), Err: err}
	}

	urls := make([]string, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		if result.Thumbnail.Src != "" {
			urls = append(urls, result.Thumbnail.Src)
		} else if result.Properties.URL != "" {
			urls = append(urls, result.Properties.URL)
		}
		if len(urls) >= c.count {
			break
		}
	}
	return urls, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
