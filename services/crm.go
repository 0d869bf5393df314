package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadpipe/config"
	"leadpipe/models"
	"leadpipe/storage"
)

// CRMClient pushes enriched leads into GoHighLevel as contacts tagged by
// pipeline stage.
type CRMClient struct {
	baseURL    string
	apiKey     string
	locationID string
	client     *http.Client
}

func NewCRMClient(cfg config.CRMConfig, client *http.Client) *CRMClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &CRMClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		locationID: cfg.LocationID,
		client:     client,
	}
}

// UpsertLead sends one lead with its best contact to the CRM. The upsert
// endpoint dedups on phone/email, so re-pushes are safe.
func (c *CRMClient) UpsertLead(ctx context.Context, lead *storage.Lead, contacts []*models.Contact) error {
	payload := map[string]any{
		"locationId": c.locationID,
		"address1":   lead.Property.FullAddress,
		"city":       lead.Property.City,
		"state":      lead.Property.State,
		"tags":       []string{"foreclosure", "stage:" + lead.Pipeline.Stage},
		"source":     "leadpipe",
	}

	if best := bestContact(contacts); best != nil {
		payload["firstName"] = best.NameFirst
		payload["lastName"] = best.NameLast
		if len(best.Phones) > 0 {
			payload["phone"] = best.Phones[0].Number
		}
		if len(best.Emails) > 0 {
			payload["email"] = best.Emails[0].Email
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/contacts/upsert", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Version", "2021-07-28")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("crm error %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// bestContact prefers a named contact with a phone number.
func bestContact(contacts []*models.Contact) *models.Contact {
	var fallback *models.Contact
	for _, c := range contacts {
		if len(c.Phones) == 0 && len(c.Emails) == 0 {
			continue
		}
		if c.NameFirst != "" || c.NameLast != "" {
			return c
		}
		if fallback == nil {
			fallback = c
		}
	}
	return fallback
}
