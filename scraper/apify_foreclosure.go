package scraper

import (
	"encoding/json"
	"strings"

	"leadpipe/config"
	"leadpipe/models"
)

// ForeclosureAdapter handles the epctex foreclosure scraper actor.
type ForeclosureAdapter struct{}

func (a *ForeclosureAdapter) ActorID() string {
	return "epctex~foreclosure-scraper"
}

func (a *ForeclosureAdapter) BuildInput(cfg *config.SourceConfig) map[string]interface{} {
	input := map[string]interface{}{
		"search":   cfg.County + " County, TN",
		"mode":     "foreclosure",
		"maxItems": cfg.MaxListings,
		"proxy": map[string]interface{}{
			"useApifyProxy": true,
		},
	}
	if url, ok := cfg.Endpoints["search"]; ok {
		input["startUrls"] = []map[string]string{{"url": url}}
	}
	return input
}

type foreclosureItem struct {
	Address   string   `json:"address"`
	City      string   `json:"city"`
	County    string   `json:"county"`
	SaleDate  string   `json:"saleDate"`
	SaleTime  string   `json:"saleTime"`
	Trustee   string   `json:"trustee"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (a *ForeclosureAdapter) ParseListing(data json.RawMessage) (*models.LegacyListing, error) {
	var item foreclosureItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}

	address := strings.TrimSpace(item.Address)
	if address == "" {
		return nil, errEmptyAddress
	}

	return &models.LegacyListing{
		Address:  address,
		City:     strings.TrimSpace(item.City),
		County:   strings.TrimSpace(item.County),
		SaleDate: strings.TrimSpace(item.SaleDate),
		SaleTime: strings.TrimSpace(item.SaleTime),
		Firm:     strings.TrimSpace(item.Trustee),
		Lat:      item.Latitude,
		Lon:      item.Longitude,
	}, nil
}
