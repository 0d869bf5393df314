package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadpipe/config"
	"leadpipe/models"
)

const openAIBase = "https://api.openai.com/v1"

// AnalysisService asks an LLM for a short deal assessment of a property and
// its event history. Purely advisory; nothing downstream depends on it.
type AnalysisService struct {
	apiKey string
	model  string
	client *http.Client
}

func NewAnalysisService(cfg config.OpenAIConfig, client *http.Client) *AnalysisService {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &AnalysisService{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: client,
	}
}

// Analysis is the model's structured verdict on a lead.
type Analysis struct {
	Summary string `json:"summary"`
	Rating  string `json:"rating"` // hot | warm | cold
}

func (s *AnalysisService) AnalyzeProperty(ctx context.Context, property *models.Property, events []*models.DistressEvent) (*Analysis, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	prompt := buildAnalysisPrompt(property, events)

	reqBody := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a real estate investment analyst. Respond with JSON: {\"summary\": \"...\", \"rating\": \"hot|warm|cold\"}."},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openAIBase+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai error %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	return &analysis, nil
}

func buildAnalysisPrompt(property *models.Property, events []*models.DistressEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Property: %s, %s, %s (%s)\n", property.FullAddress, property.City, property.State, property.PropertyType)
	if property.DistanceToNashville != nil {
		fmt.Fprintf(&b, "Distance to Nashville: %.1f miles\n", *property.DistanceToNashville)
	}
	if property.DistanceToMtJuliet != nil {
		fmt.Fprintf(&b, "Distance to Mt. Juliet: %.1f miles\n", *property.DistanceToMtJuliet)
	}
	fmt.Fprintf(&b, "Distress events (%d):\n", len(events))
	for _, e := range events {
		fmt.Fprintf(&b, "- %s sale %s via %s (%s), firm: %s\n", e.EventType, e.EventDate, e.Source, e.Status, e.Firm)
	}
	b.WriteString("Assess this foreclosure lead for a wholesale investor.")
	return b.String()
}
