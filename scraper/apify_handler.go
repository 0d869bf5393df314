package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"leadpipe/config"
)

const (
	apifyAPIBase     = "https://api.apify.com/v2"
	apifyPollTimeout = 15 * time.Minute
	apifyPollDelay   = 10 * time.Second
)

// ApifyHandler runs a hosted Apify actor and parses its dataset through the
// actor-specific adapter.
type ApifyHandler struct {
	cfg     *config.SourceConfig
	client  *http.Client
	apiKey  string
	adapter ApifyAdapter
}

func NewApifyHandler(cfg *config.SourceConfig, apifyCfg config.ApifyConfig, client *http.Client) *ApifyHandler {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	adapter, err := GetApifyAdapter(cfg.ApifyActor)
	if err != nil {
		logrus.WithError(err).Warn("Unknown apify actor, using foreclosure adapter")
		adapter = &ForeclosureAdapter{}
	}

	return &ApifyHandler{
		cfg:     cfg,
		apiKey:  apifyCfg.APIKey,
		client:  client,
		adapter: adapter,
	}
}

func (h *ApifyHandler) ID() string {
	return h.cfg.ID
}

func (h *ApifyHandler) Scrape(ctx context.Context) (*ScrapeResult, error) {
	if h.apiKey == "" {
		return nil, fmt.Errorf("APIFY_API_KEY not set")
	}

	runID, err := h.startRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("start apify run: %w", err)
	}

	datasetID, err := h.waitForRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("apify run: %w", err)
	}

	return h.fetchDataset(ctx, datasetID)
}

func (h *ApifyHandler) startRun(ctx context.Context) (string, error) {
	input := h.adapter.BuildInput(h.cfg)
	body, _ := json.Marshal(input)

	url := fmt.Sprintf("%s/acts/%s/runs?token=%s", apifyAPIBase, h.adapter.ActorID(), h.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("apify start run failed %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Data.ID, nil
}

func (h *ApifyHandler) waitForRun(ctx context.Context, runID string) (string, error) {
	url := fmt.Sprintf("%s/actor-runs/%s?token=%s", apifyAPIBase, runID, h.apiKey)
	deadline := time.Now().Add(apifyPollTimeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return "", err
		}

		resp, err := h.client.Do(req)
		if err != nil {
			time.Sleep(apifyPollDelay)
			continue
		}

		var result struct {
			Data struct {
				Status           string `json:"status"`
				DefaultDatasetID string `json:"defaultDatasetId"`
			} `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()

		switch result.Data.Status {
		case "SUCCEEDED":
			return result.Data.DefaultDatasetID, nil
		case "FAILED", "ABORTED", "TIMED-OUT":
			return "", fmt.Errorf("run %s: %s", runID, result.Data.Status)
		}

		time.Sleep(apifyPollDelay)
	}

	return "", fmt.Errorf("timeout waiting for run %s", runID)
}

func (h *ApifyHandler) fetchDataset(ctx context.Context, datasetID string) (*ScrapeResult, error) {
	url := fmt.Sprintf("%s/datasets/%s/items?token=%s&format=json", apifyAPIBase, datasetID, h.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("dataset fetch failed %d: %s", resp.StatusCode, string(respBody))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	result := &ScrapeResult{Raw: raw}
	for _, item := range items {
		listing, err := h.adapter.ParseListing(item)
		if err != nil {
			logrus.WithError(err).Warn("Failed to parse apify listing")
			continue
		}
		listing.Source = h.cfg.ID
		if listing.County == "" {
			listing.County = h.cfg.County
		}
		result.Listings = append(result.Listings, listing)

		if h.cfg.MaxListings > 0 && len(result.Listings) >= h.cfg.MaxListings {
			break
		}
	}

	return result, nil
}
