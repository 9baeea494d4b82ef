package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultSerpAPIBase = "https://serpapi.com/search.json"

// SerpAPISource queries the SerpApi google_shopping engine scoped to a
// location string. The top-ranked result is taken as the best match; the
// provider's relevance ordering is trusted without a secondary heuristic.
type SerpAPISource struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewSerpAPISource(apiKey string) *SerpAPISource {
	return &SerpAPISource{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultSerpAPIBase,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the source at a different endpoint. Used by tests.
func (s *SerpAPISource) WithBaseURL(u string) *SerpAPISource {
	s.baseURL = strings.TrimSpace(u)
	return s
}

type serpShoppingResult struct {
	Title          string  `json:"title"`
	ExtractedPrice float64 `json:"extracted_price"`
	Source         string  `json:"source"`
	Link           string  `json:"link"`
}

type serpResponse struct {
	ShoppingResults []serpShoppingResult `json:"shopping_results"`
	Error           string               `json:"error"`
}

// LookupPrice issues one shopping search. Zero results is (nil, nil);
// missing credentials, network failure and non-2xx responses wrap
// ErrUnavailable.
func (s *SerpAPISource) LookupPrice(ctx context.Context, material, location string) (*PriceRecord, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: api key is not configured", ErrUnavailable)
	}

	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", material)
	params.Set("location", location)
	params.Set("hl", "en")
	params.Set("gl", "us")
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var body serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, body.Error)
	}
	if len(body.ShoppingResults) == 0 {
		return nil, nil
	}

	best := body.ShoppingResults[0]
	return &PriceRecord{
		Material: material,
		Name:     best.Title,
		Price:    best.ExtractedPrice,
		Retailer: best.Source,
		Link:     best.Link,
	}, nil
}
