package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gavin100305/Auraflix-sub000/internal/models"
)

// ErrUpstreamUnavailable flags any recommender failure: network error, timeout
// or non-2xx status. Callers degrade to the stored payload instead of failing
// the request that triggered the fetch.
var ErrUpstreamUnavailable = errors.New("recommendation service unavailable")

// RecommenderClient talks to the external recommendation and analytics APIs.
type RecommenderClient interface {
	// FetchSuggestions sends the business profile and returns the
	// suggestion field of the response verbatim, with no shape assumptions.
	FetchSuggestions(ctx context.Context, profile models.BusinessProfile) (json.RawMessage, error)
	// FetchInfluencerByRank proxies the analytics dataset lookup.
	FetchInfluencerByRank(ctx context.Context, rank int) (*models.RankedInfluencer, error)
}

type recommenderClient struct {
	suggestionURL string
	analyticsURL  string
	httpClient    *http.Client
}

// NewRecommenderClient creates a client with a bounded per-request timeout.
// No retries: a failed call means "no suggestions now, try again next login".
func NewRecommenderClient(suggestionURL, analyticsURL string, timeout time.Duration) RecommenderClient {
	return &recommenderClient{
		suggestionURL: suggestionURL,
		analyticsURL:  analyticsURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// suggestionResponse mirrors the upstream envelope. The field itself is kept
// raw because the upstream does not commit to a shape.
type suggestionResponse struct {
	SuggestedInfluencers json.RawMessage `json:"suggested_influencers"`
	Suggestions          json.RawMessage `json:"suggestions"`
}

func (c *recommenderClient) FetchSuggestions(ctx context.Context, profile models.BusinessProfile) (json.RawMessage, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal business profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.suggestionURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	var decoded suggestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUpstreamUnavailable, err)
	}

	if len(decoded.SuggestedInfluencers) > 0 {
		return decoded.SuggestedInfluencers, nil
	}
	return decoded.Suggestions, nil
}

func (c *recommenderClient) FetchInfluencerByRank(ctx context.Context, rank int) (*models.RankedInfluencer, error) {
	url := fmt.Sprintf("%s/data/rank/%d", c.analyticsURL, rank)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("influencer with rank %d not found", rank)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var influencer models.RankedInfluencer
	if err := json.NewDecoder(resp.Body).Decode(&influencer); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUpstreamUnavailable, err)
	}
	return &influencer, nil
}
